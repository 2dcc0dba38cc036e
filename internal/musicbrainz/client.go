package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"tunestream/internal/domain"
)

// Client talks to a MusicBrainz-compatible metadata web service. All
// calls pass through a shared rate limiter, the service requires no
// more than one request per second sustained.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Logger    *logrus.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "tunestream/1.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     cfg.Logger,
	}
}

// SearchArtists runs a free-text artist search. Not retried: indexing
// quality makes a failed search equivalent to zero results.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]domain.Artist, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")

	var payload artistSearchResponse
	if err := c.get(ctx, "/artist", params, &payload); err != nil {
		return nil, err
	}

	artists := make([]domain.Artist, len(payload.Artists))
	for i, a := range payload.Artists {
		artists[i] = artistFromJSON(a)
	}
	return artists, nil
}

// ArtistDetail fetches one artist with its full release-group list.
// This lookup feeds the album pre-loader, so it is verified with
// retries.
func (c *Client) ArtistDetail(ctx context.Context, artistID string) (*domain.Artist, error) {
	params := url.Values{}
	params.Set("inc", "release-groups")
	params.Set("fmt", "json")

	var payload artistJSON
	err := retry.Do(
		func() error {
			return c.get(ctx, "/artist/"+url.PathEscape(artistID), params, &payload)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	artist := artistFromJSON(payload)
	return &artist, nil
}

// SearchRecordings runs a free-text recording (track) search.
func (c *Client) SearchRecordings(ctx context.Context, query string) ([]domain.Recording, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")

	var payload recordingSearchResponse
	if err := c.get(ctx, "/recording", params, &payload); err != nil {
		return nil, err
	}

	recordings := make([]domain.Recording, len(payload.Recordings))
	for i, r := range payload.Recordings {
		recordings[i] = recordingFromJSON(r)
	}
	return recordings, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata service returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode metadata response: %w", err)
	}
	return nil
}

func artistFromJSON(a artistJSON) domain.Artist {
	artist := domain.Artist{
		ID:      a.ID,
		Name:    a.Name,
		Country: a.Country,
		LifeSpan: domain.LifeSpan{
			Begin: a.LifeSpan.Begin,
			End:   a.LifeSpan.End,
			Ended: a.LifeSpan.Ended,
		},
	}
	for _, rg := range a.ReleaseGroups {
		artist.Albums = append(artist.Albums, domain.ReleaseGroup{
			ID:               rg.ID,
			Title:            rg.Title,
			PrimaryType:      rg.PrimaryType,
			FirstReleaseDate: rg.FirstReleaseDate,
		})
	}
	return artist
}

func recordingFromJSON(r recordingJSON) domain.Recording {
	rec := domain.Recording{
		ID:     r.ID,
		Title:  r.Title,
		Length: r.Length,
	}
	for _, credit := range r.ArtistCredit {
		rec.Artists = append(rec.Artists, credit.Name)
	}
	for _, rel := range r.Releases {
		rec.Releases = append(rec.Releases, releaseFromJSON(rel))
	}
	return rec
}

func releaseFromJSON(r releaseJSON) domain.Release {
	release := domain.Release{
		ID:         r.ID,
		Title:      r.Title,
		Status:     r.Status,
		Country:    r.Country,
		Date:       r.Date,
		TrackCount: r.TrackCount,
	}
	for _, credit := range r.ArtistCredit {
		release.Artists = append(release.Artists, credit.Name)
	}
	return release
}
