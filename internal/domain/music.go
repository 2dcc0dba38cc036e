package domain

// Artist is a metadata-service artist, trimmed to the fields the
// aggregation pipeline consumes.
type Artist struct {
	ID       string
	Name     string
	Country  string
	LifeSpan LifeSpan
	Albums   []ReleaseGroup
}

type LifeSpan struct {
	Begin string
	End   string
	Ended bool
}

// ReleaseGroup is one album-level entry in an artist's discography.
type ReleaseGroup struct {
	ID               string
	Title            string
	PrimaryType      string
	FirstReleaseDate string
	CoverURL         string
}

// Release is a concrete edition of a release group.
type Release struct {
	ID         string
	Title      string
	Status     string
	Country    string
	Date       string
	TrackCount int
	Artists    []string
}

// Recording is a single track with its artist credit.
type Recording struct {
	ID       string
	Title    string
	Length   int
	Artists  []string
	Releases []Release
}

// CoverImage is one cover-art lookup result.
type CoverImage struct {
	Front     bool
	URL       string
	Thumbnail string
}
