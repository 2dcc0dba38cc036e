package domain

import "errors"

// Sentinel errors shared across the pipeline. The HTTP layer maps these
// to status codes with errors.Is.
var (
	ErrTorrentNotFound   = errors.New("torrent not registered")
	ErrFileNotFound      = errors.New("file not found in torrent")
	ErrNoAudioFiles      = errors.New("torrent contains no audio files")
	ErrFileCountMismatch = errors.New("audio file count does not match expectation")
	ErrNoPeers           = errors.New("no active peers, torrent may be dead")
	ErrJobNotFound       = errors.New("job not found")
	ErrNoCandidates      = errors.New("no acceptable torrent candidates")
	ErrArtistNotCached   = errors.New("no pre-loaded torrents for artist")
)
