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

	"tunestream/internal/domain"
)

// CoverArtClient looks up release-group cover images from a Cover Art
// Archive compatible service.
type CoverArtClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewCoverArtClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *CoverArtClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &CoverArtClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ReleaseGroupImages fetches cover images for a release group, retried
// with backoff. A 404 is an empty result, not an error.
func (c *CoverArtClient) ReleaseGroupImages(ctx context.Context, releaseGroupID string) ([]domain.CoverImage, error) {
	var payload coverArtResponse
	err := retry.Do(
		func() error {
			return c.fetch(ctx, releaseGroupID, &payload)
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

	images := make([]domain.CoverImage, len(payload.Images))
	for i, img := range payload.Images {
		images[i] = domain.CoverImage{
			Front:     img.Front,
			URL:       img.Image,
			Thumbnail: img.Thumbnails.Small,
		}
	}
	return images, nil
}

// FrontCoverURL returns the thumbnail of the front image, or empty when
// the release group has no usable art.
func (c *CoverArtClient) FrontCoverURL(ctx context.Context, releaseGroupID string) string {
	images, err := c.ReleaseGroupImages(ctx, releaseGroupID)
	if err != nil {
		c.logger.Debugf("cover art lookup for %s failed: %v", releaseGroupID, err)
		return ""
	}
	for _, img := range images {
		if img.Front {
			if img.Thumbnail != "" {
				return img.Thumbnail
			}
			return img.URL
		}
	}
	return ""
}

func (c *CoverArtClient) fetch(ctx context.Context, releaseGroupID string, out *coverArtResponse) error {
	endpoint := fmt.Sprintf("%s/release-group/%s", c.baseURL, url.PathEscape(releaseGroupID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build cover art request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cover art request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		*out = coverArtResponse{}
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cover art service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode cover art response: %w", err)
	}
	return nil
}
