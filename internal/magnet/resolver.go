package magnet

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

var magnetPattern = regexp.MustCompile(`magnet:\?[^\s"'<>]+`)

const maxResolveBodyBytes = 1 << 20

// Resolver turns indexer download references into magnet URIs. It is
// best-effort: any failure returns the input unchanged, and callers
// detect success by checking IsMagnet on the result.
type Resolver struct {
	client *http.Client
	logger *logrus.Logger
}

func NewResolver(timeout time.Duration, logger *logrus.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
			// Indexer download links commonly redirect straight to a
			// magnet URI; the redirect target is the answer.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// Resolve returns a magnet URI for ref if one can be discovered, or ref
// unchanged otherwise. It never returns an error.
func (r *Resolver) Resolve(ctx context.Context, ref string) string {
	if IsMagnet(ref) {
		return ref
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		r.logger.WithField("ref", ref).Debugf("resolve: bad reference: %v", err)
		return ref
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.WithField("ref", ref).Debugf("resolve: fetch failed: %v", err)
		return ref
	}
	defer resp.Body.Close()

	if location := resp.Header.Get("Location"); IsMagnet(location) {
		return location
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResolveBodyBytes))
	if err != nil {
		r.logger.WithField("ref", ref).Debugf("resolve: read body: %v", err)
		return ref
	}
	if match := magnetPattern.Find(body); match != nil {
		return string(match)
	}
	return ref
}
