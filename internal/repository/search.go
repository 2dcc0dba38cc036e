package repository

import (
	"context"

	"tunestream/internal/domain"
)

// SearchCacheRepository persists indexer search responses so repeated
// discovery for the same query (pre-loads, retries from the UI) skips
// the aggregator entirely while the entry is fresh.
type SearchCacheRepository interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, query string, category int) ([]domain.TorrentCandidate, bool, error)
	Put(ctx context.Context, query string, category int, candidates []domain.TorrentCandidate) error
	PurgeExpired(ctx context.Context) error
}
