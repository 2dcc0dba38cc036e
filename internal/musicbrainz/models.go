package musicbrainz

// Wire types for the MusicBrainz-compatible JSON web service. Only the
// fields the aggregation pipeline reads are declared.

type artistSearchResponse struct {
	Artists []artistJSON `json:"artists"`
}

type artistJSON struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Country       string             `json:"country"`
	LifeSpan      lifeSpanJSON       `json:"life-span"`
	ReleaseGroups []releaseGroupJSON `json:"release-groups"`
}

type lifeSpanJSON struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Ended bool   `json:"ended"`
}

type releaseGroupJSON struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	PrimaryType      string `json:"primary-type"`
	FirstReleaseDate string `json:"first-release-date"`
}

type releaseJSON struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Status       string             `json:"status"`
	Country      string             `json:"country"`
	Date         string             `json:"date"`
	TrackCount   int                `json:"track-count"`
	ArtistCredit []artistCreditJSON `json:"artist-credit"`
}

type artistCreditJSON struct {
	Name string `json:"name"`
}

type recordingSearchResponse struct {
	Recordings []recordingJSON `json:"recordings"`
}

type recordingJSON struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Length       int                `json:"length"`
	ArtistCredit []artistCreditJSON `json:"artist-credit"`
	Releases     []releaseJSON      `json:"releases"`
}

type coverArtResponse struct {
	Images []coverImageJSON `json:"images"`
}

type coverImageJSON struct {
	Front      bool                `json:"front"`
	Image      string              `json:"image"`
	Thumbnails coverThumbnailsJSON `json:"thumbnails"`
}

type coverThumbnailsJSON struct {
	Small string `json:"small"`
	Large string `json:"large"`
}
