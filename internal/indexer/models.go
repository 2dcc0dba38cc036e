package indexer

import "time"

// Category constants for the aggregator's torznab category scheme.
const (
	CategoryAudio int = 3000
)

// searchResponse is the aggregator's JSON envelope.
type searchResponse struct {
	Results []searchResult `json:"Results"`
}

// searchResult mirrors one raw result row. Seeder and peer counts are
// pointers because indexers frequently omit them.
type searchResult struct {
	Tracker     string     `json:"Tracker"`
	Title       string     `json:"Title"`
	Link        string     `json:"Link"`
	MagnetURI   string     `json:"MagnetUri"`
	Size        int64      `json:"Size"`
	Seeders     *int       `json:"Seeders"`
	Peers       *int       `json:"Peers"`
	PublishDate *time.Time `json:"PublishDate"`
}
