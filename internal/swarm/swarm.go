package swarm

import (
	"context"
	"io"
)

// File is one named file inside a swarm handle.
type File struct {
	Name string
	Size int64
}

// Stats is a point-in-time snapshot of a handle's swarm activity.
type Stats struct {
	TotalPeers       int
	ActivePeers      int
	ConnectedSeeders int
	BytesCompleted   int64
	BytesMissing     int64
}

// Handle is a live peer-to-peer session for a single magnet URI. A
// handle returned by the registry has its metadata populated; file
// reads may still stall until enough swarm data arrives.
type Handle interface {
	Magnet() string
	Name() string
	Files() []File
	Ready() bool
	Stats() Stats
	// Open returns an independent reader for the named file. Every
	// stream request opens its own reader so concurrent range reads
	// never share seek state.
	Open(name string) (io.ReadSeekCloser, error)
	Drop()
}

// Engine adds magnet URIs to an underlying swarm client and yields
// handles once their metadata is available or ctx expires.
type Engine interface {
	Add(ctx context.Context, magnetURI string) (Handle, error)
	Close()
}
