package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tunestream/internal/domain"
	"tunestream/internal/repository"
)

const createSearchCacheTable = `
CREATE TABLE IF NOT EXISTS search_cache (
	query TEXT NOT NULL,
	category INTEGER NOT NULL DEFAULT 0,
	results TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (query, category)
);
`

type SearchCacheRepository struct {
	db  *sql.DB
	ttl time.Duration
}

func NewSearchCacheRepository(db *sql.DB, ttl time.Duration) repository.SearchCacheRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SearchCacheRepository{db: db, ttl: ttl}
}

func (r *SearchCacheRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSearchCacheTable); err != nil {
		return fmt.Errorf("create search cache table: %w", err)
	}
	return nil
}

func (r *SearchCacheRepository) Get(ctx context.Context, query string, category int) ([]domain.TorrentCandidate, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT results, created_at FROM search_cache WHERE query = ? AND category = ?`,
		normalizeQuery(query), category,
	)

	var (
		blob      string
		createdAt time.Time
	)
	if err := row.Scan(&blob, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read search cache: %w", err)
	}

	if time.Since(createdAt) > r.ttl {
		return nil, false, nil
	}

	var candidates []domain.TorrentCandidate
	if err := json.Unmarshal([]byte(blob), &candidates); err != nil {
		return nil, false, fmt.Errorf("decode cached results: %w", err)
	}
	return candidates, true, nil
}

func (r *SearchCacheRepository) Put(ctx context.Context, query string, category int, candidates []domain.TorrentCandidate) error {
	blob, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO search_cache (query, category, results, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(query, category) DO UPDATE SET results = excluded.results, created_at = excluded.created_at`,
		normalizeQuery(query), category, string(blob), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("write search cache: %w", err)
	}
	return nil
}

func (r *SearchCacheRepository) PurgeExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM search_cache WHERE created_at < ?`, time.Now().Add(-r.ttl),
	)
	if err != nil {
		return fmt.Errorf("purge search cache: %w", err)
	}
	return nil
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
