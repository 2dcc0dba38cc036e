package preload

import (
	"sync"
	"time"

	"tunestream/internal/domain"
)

// Store holds per-artist pre-load results. Implementations must
// publish whole entries, readers never observe partial writes.
type Store interface {
	Get(artistID string) (domain.ArtistTorrentCache, bool)
	Set(entry domain.ArtistTorrentCache)
	Delete(artistID string)
	Clear()
}

// MemoryStore is the in-process Store with TTL-based expiry. Entries
// are swept by a background janitor until Close is called.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]domain.ArtistTorrentCache

	done chan struct{}
	once sync.Once
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	s := &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]domain.ArtistTorrentCache),
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Get(artistID string) (domain.ArtistTorrentCache, bool) {
	s.mu.RLock()
	entry, ok := s.entries[artistID]
	s.mu.RUnlock()
	if !ok || time.Since(entry.PopulatedAt) > s.ttl {
		return domain.ArtistTorrentCache{}, false
	}
	return entry, true
}

func (s *MemoryStore) Set(entry domain.ArtistTorrentCache) {
	s.mu.Lock()
	s.entries[entry.ArtistID] = entry
	s.mu.Unlock()
}

func (s *MemoryStore) Delete(artistID string) {
	s.mu.Lock()
	delete(s.entries, artistID)
	s.mu.Unlock()
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]domain.ArtistTorrentCache)
	s.mu.Unlock()
}

func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(s.ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, entry := range s.entries {
				if entry.PopulatedAt.Before(cutoff) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ Store = (*MemoryStore)(nil)
