package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tunestream/internal/domain"
)

// Client queries a torznab aggregator (Jackett-compatible JSON API)
// across all configured indexers at once.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Search runs a free-text query, optionally restricted to a category.
// Pass 0 for no category filter.
func (c *Client) Search(ctx context.Context, query string, category int) ([]domain.TorrentCandidate, error) {
	endpoint := fmt.Sprintf("%s/api/v2.0/indexers/all/results", c.baseURL)

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("Query", query)
	if category > 0 {
		params.Set("Category[]", strconv.Itoa(category))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build indexer request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indexer search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer search returned status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode indexer response: %w", err)
	}

	candidates := make([]domain.TorrentCandidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		candidate := domain.TorrentCandidate{
			Title:   r.Title,
			Size:    r.Size,
			Indexer: r.Tracker,
		}
		if r.Seeders != nil && *r.Seeders > 0 {
			candidate.Seeders = *r.Seeders
		}
		if r.Peers != nil && *r.Peers > 0 {
			candidate.Leechers = *r.Peers
		}
		if r.PublishDate != nil {
			candidate.PublishDate = *r.PublishDate
		}
		// Prefer a magnet when the indexer hands one out directly.
		candidate.DownloadRef = r.MagnetURI
		if candidate.DownloadRef == "" {
			candidate.DownloadRef = r.Link
		}
		if candidate.DownloadRef == "" {
			continue
		}
		candidates = append(candidates, candidate)
	}

	c.logger.WithField("query", query).Debugf("indexer returned %d candidates", len(candidates))
	return candidates, nil
}
