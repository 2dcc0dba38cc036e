package domain

import "time"

type JobKind string

const (
	JobKindTorrentSearch JobKind = "torrent-search"
	JobKindStreamPrepare JobKind = "stream-prepare"
	JobKindTrackExport   JobKind = "track-export"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether a status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job tracks one background operation accepted in async mode.
type Job struct {
	ID          string
	Kind        JobKind
	Params      map[string]string
	Status      JobStatus
	Progress    int
	Result      any
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
