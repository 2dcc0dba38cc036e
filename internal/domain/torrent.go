package domain

import "time"

// Target describes what a torrent search is trying to find.
type Target struct {
	TrackTitle string
	ArtistName string
	AlbumTitle string
}

// TorrentCandidate is one raw indexer result, pre-scoring.
type TorrentCandidate struct {
	Title       string
	Size        int64
	Seeders     int
	Leechers    int
	PublishDate time.Time
	Indexer     string
	// DownloadRef is either a magnet URI already or an indexer download
	// link that still needs resolution.
	DownloadRef string
}

// RankedTorrent annotates a candidate with its computed score and the
// signals the score was derived from.
type RankedTorrent struct {
	TorrentCandidate
	Score      int
	TitleMatch float64
	AgeDays    int
}

// PreloadedTorrent is a ranked torrent after magnet resolution during
// album pre-loading.
type PreloadedTorrent struct {
	RankedTorrent
	MagnetURI string
	Resolved  bool
	Warming   bool
}

// AlbumTorrents pairs one album with its pre-loaded torrents. An empty
// Torrents slice means discovery or resolution failed for that album.
type AlbumTorrents struct {
	AlbumID    string
	AlbumTitle string
	Torrents   []PreloadedTorrent
}

// ArtistTorrentCache is the per-artist result of the album pre-loader.
type ArtistTorrentCache struct {
	ArtistID    string
	ArtistName  string
	Albums      []AlbumTorrents
	PopulatedAt time.Time
}
