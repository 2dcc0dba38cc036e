package swarm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"tunestream/internal/domain"
	"tunestream/internal/magnet"
)

// registryKey canonicalizes a magnet URI to its infohash, so variants
// differing only in display-name or tracker params share one handle.
// Unparseable references fall back to the raw string.
func registryKey(magnetURI string) string {
	if link, err := magnet.Parse(magnetURI); err == nil {
		return link.InfoHash
	}
	return magnetURI
}

// RegistryConfig configures handle creation behaviour.
type RegistryConfig struct {
	// ReadyTimeout bounds how long a creation waits for torrent
	// metadata before giving up and tearing the handle down.
	ReadyTimeout time.Duration
	Logger       *logrus.Logger
}

// Registry is the process-wide map of magnet URI to live handle. At
// most one handle exists per magnet; concurrent creations for the same
// magnet collapse onto a single engine add.
type Registry struct {
	cfg    RegistryConfig
	engine Engine

	mu      sync.RWMutex
	handles map[string]Handle
	flight  singleflight.Group
}

func NewRegistry(engine Engine, cfg RegistryConfig) *Registry {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 45 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Registry{
		cfg:     cfg,
		engine:  engine,
		handles: make(map[string]Handle),
	}
}

// GetOrCreate returns the registered handle for magnetURI, creating it
// if necessary. Creation waits up to the configured ReadyTimeout for
// metadata; on timeout the partial handle is dropped and ErrNoPeers is
// returned.
func (r *Registry) GetOrCreate(ctx context.Context, magnetURI string) (Handle, error) {
	return r.getOrCreate(ctx, magnetURI, r.cfg.ReadyTimeout)
}

// GetOrCreateWithin behaves like GetOrCreate with an explicit readiness
// window, used by listing-only and warm-up operations.
func (r *Registry) GetOrCreateWithin(ctx context.Context, magnetURI string, timeout time.Duration) (Handle, error) {
	if timeout <= 0 {
		timeout = r.cfg.ReadyTimeout
	}
	return r.getOrCreate(ctx, magnetURI, timeout)
}

func (r *Registry) getOrCreate(ctx context.Context, magnetURI string, timeout time.Duration) (Handle, error) {
	if handle, ok := r.Get(magnetURI); ok {
		return handle, nil
	}

	key := registryKey(magnetURI)
	result, err, _ := r.flight.Do(key, func() (any, error) {
		// A concurrent caller may have finished registration between
		// the lookup above and acquiring the flight slot.
		if handle, ok := r.Get(magnetURI); ok {
			return handle, nil
		}

		addCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		handle, err := r.engine.Add(addCtx, magnetURI)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, domain.ErrNoPeers
			}
			return nil, err
		}

		r.mu.Lock()
		r.handles[key] = handle
		r.mu.Unlock()
		r.cfg.Logger.WithField("torrent", handle.Name()).Info("swarm handle registered")
		return handle, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Handle), nil
}

// Get looks up an existing handle without creating one.
func (r *Registry) Get(magnetURI string) (Handle, bool) {
	r.mu.RLock()
	handle, ok := r.handles[registryKey(magnetURI)]
	r.mu.RUnlock()
	return handle, ok
}

// Warm starts handle creation in the background and returns
// immediately. Used by the album pre-loader, which must not block on
// full readiness.
func (r *Registry) Warm(magnetURI string) {
	go func() {
		if _, err := r.getOrCreate(context.Background(), magnetURI, r.cfg.ReadyTimeout); err != nil {
			r.cfg.Logger.Debugf("warm-up for %s failed: %v", magnetURI, err)
		}
	}()
}

// Remove drops and unregisters the handle for magnetURI, if present.
func (r *Registry) Remove(magnetURI string) {
	key := registryKey(magnetURI)
	r.mu.Lock()
	handle, ok := r.handles[key]
	delete(r.handles, key)
	r.mu.Unlock()
	if ok {
		handle.Drop()
	}
}

// Snapshot returns the currently registered handles.
func (r *Registry) Snapshot() []Handle {
	r.mu.RLock()
	handles := make([]Handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.mu.RUnlock()
	return handles
}

// Clear drops every handle. Called on shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]Handle)
	r.mu.Unlock()
	for _, h := range handles {
		h.Drop()
	}
}
