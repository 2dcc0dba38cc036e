package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tunestream/internal/domain"
	"tunestream/internal/indexer"
	"tunestream/internal/jobs"
	"tunestream/internal/magnet"
	"tunestream/internal/rank"
	"tunestream/internal/repository"
	"tunestream/internal/selector"
	"tunestream/internal/swarm"
)

// StreamInfo is the result of preparing a stream: the resolved magnet,
// the selected file and the eligible audio listing around it.
type StreamInfo struct {
	MagnetURI    string
	FileName     string
	FileSize     int64
	TrackListing []swarm.File
}

// SwarmStatus is one registry entry in a snapshot.
type SwarmStatus struct {
	MagnetURI string
	Name      string
	Files     int
	Ready     bool
	Stats     swarm.Stats
}

// Discovery is the indexer surface the torrent service consumes.
type Discovery interface {
	Search(ctx context.Context, query string, category int) ([]domain.TorrentCandidate, error)
}

// Resolver is the magnet resolution surface.
type Resolver interface {
	Resolve(ctx context.Context, ref string) string
}

// TorrentService drives the torrent-to-playable-audio pipeline.
type TorrentService interface {
	ResolveMagnet(ctx context.Context, ref string) string
	FindBestTorrent(ctx context.Context, target domain.Target) (*domain.RankedTorrent, error)
	FindBestTorrentAsync(target domain.Target) string
	PrepareStream(ctx context.Context, ref, nameHint string, expectedCount int) (*StreamInfo, error)
	PrepareStreamAsync(ref, nameHint string, expectedCount int) string
	TrackListing(ctx context.Context, ref string) (string, []swarm.File, error)
	OpenStream(magnetURI, fileName string) (io.ReadSeekCloser, int64, error)
	ExportTrackAsync(magnetURI, fileName string) string
	JobStatus(id string) (domain.Job, error)
	SwarmSnapshot() []SwarmStatus
}

// TorrentServiceConfig carries the tunables of the pipeline.
type TorrentServiceConfig struct {
	// ProbeTimeout bounds the fire-and-forget warm-up registration of
	// the winning candidate after a search.
	ProbeTimeout time.Duration
	// ListingTimeout bounds read-only track-listing lookups.
	ListingTimeout time.Duration
	// MaxResolveAttempts caps how many ranked candidates are tried
	// for magnet resolution before giving up.
	MaxResolveAttempts int
	Ranking            rank.Config
	ExportBucket       string
	ExportKeyPrefix    string
	Logger             *logrus.Logger
}

type torrentService struct {
	cfg       TorrentServiceConfig
	discovery Discovery
	resolver  Resolver
	registry  *swarm.Registry
	jobs      *jobs.Orchestrator
	cache     repository.SearchCacheRepository
	exporter  TrackExporter
}

func NewTorrentService(
	discovery Discovery,
	resolver Resolver,
	registry *swarm.Registry,
	orchestrator *jobs.Orchestrator,
	cache repository.SearchCacheRepository,
	exporter TrackExporter,
	cfg TorrentServiceConfig,
) TorrentService {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	if cfg.ListingTimeout <= 0 {
		cfg.ListingTimeout = 30 * time.Second
	}
	if cfg.MaxResolveAttempts <= 0 {
		cfg.MaxResolveAttempts = 5
	}
	if cfg.Ranking == (rank.Config{}) {
		cfg.Ranking = rank.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &torrentService{
		cfg:       cfg,
		discovery: discovery,
		resolver:  resolver,
		registry:  registry,
		jobs:      orchestrator,
		cache:     cache,
		exporter:  exporter,
	}
}

func (s *torrentService) ResolveMagnet(ctx context.Context, ref string) string {
	return s.resolver.Resolve(ctx, ref)
}

func (s *torrentService) FindBestTorrent(ctx context.Context, target domain.Target) (*domain.RankedTorrent, error) {
	if strings.TrimSpace(target.TrackTitle) == "" || strings.TrimSpace(target.ArtistName) == "" {
		return nil, errors.New("track title and artist name are required")
	}

	candidates := s.discover(ctx, target)
	ranked := rank.RankAndFilter(candidates, target, s.cfg.Ranking)
	if len(ranked) == 0 {
		return nil, domain.ErrNoCandidates
	}

	// Resolve down the ranking until a reference yields a magnet; the
	// best-scored entry comes back even if nothing resolves, so the
	// caller still sees the discovery result.
	attempts := s.cfg.MaxResolveAttempts
	if attempts > len(ranked) {
		attempts = len(ranked)
	}
	for i := 0; i < attempts; i++ {
		resolved := s.resolver.Resolve(ctx, ranked[i].DownloadRef)
		if !magnet.IsMagnet(resolved) {
			continue
		}
		best := ranked[i]
		best.DownloadRef = resolved
		s.warm(resolved)
		return &best, nil
	}
	return &ranked[0], nil
}

func (s *torrentService) FindBestTorrentAsync(target domain.Target) string {
	params := map[string]string{
		"track":  target.TrackTitle,
		"artist": target.ArtistName,
		"album":  target.AlbumTitle,
	}
	return s.jobs.Accept(domain.JobKindTorrentSearch, params, func(ctx context.Context, progress func(int)) (any, error) {
		progress(10)
		best, err := s.FindBestTorrent(ctx, target)
		if err != nil {
			return nil, err
		}
		progress(90)
		return best, nil
	})
}

func (s *torrentService) PrepareStream(ctx context.Context, ref, nameHint string, expectedCount int) (*StreamInfo, error) {
	return s.prepareStream(ctx, ref, nameHint, expectedCount, nil)
}

func (s *torrentService) prepareStream(ctx context.Context, ref, nameHint string, expectedCount int, progress func(int)) (*StreamInfo, error) {
	if progress == nil {
		progress = func(int) {}
	}
	if strings.TrimSpace(ref) == "" {
		return nil, errors.New("magnet reference is required")
	}

	resolved := s.resolver.Resolve(ctx, ref)
	if !magnet.IsMagnet(resolved) {
		return nil, fmt.Errorf("could not resolve %q to a magnet link", ref)
	}
	progress(20)

	handle, err := s.registry.GetOrCreate(ctx, resolved)
	if err != nil {
		return nil, err
	}
	progress(60)

	audio := selector.FilterAudio(handle.Files())
	if len(audio) == 0 {
		return nil, domain.ErrNoAudioFiles
	}
	if err := selector.ValidateCount(audio, expectedCount); err != nil {
		return nil, err
	}

	file, err := selector.SelectFile(audio, selector.Hint{Name: nameHint})
	if err != nil {
		return nil, err
	}
	progress(90)

	return &StreamInfo{
		MagnetURI:    resolved,
		FileName:     file.Name,
		FileSize:     file.Size,
		TrackListing: audio,
	}, nil
}

func (s *torrentService) PrepareStreamAsync(ref, nameHint string, expectedCount int) string {
	params := map[string]string{"ref": ref, "hint": nameHint}
	return s.jobs.Accept(domain.JobKindStreamPrepare, params, func(ctx context.Context, progress func(int)) (any, error) {
		return s.prepareStream(ctx, ref, nameHint, expectedCount, progress)
	})
}

// TrackListing resolves ref and returns the torrent's audio files
// using the shorter listing readiness window.
func (s *torrentService) TrackListing(ctx context.Context, ref string) (string, []swarm.File, error) {
	resolved := s.resolver.Resolve(ctx, ref)
	if !magnet.IsMagnet(resolved) {
		return "", nil, fmt.Errorf("could not resolve %q to a magnet link", ref)
	}

	handle, err := s.registry.GetOrCreateWithin(ctx, resolved, s.cfg.ListingTimeout)
	if err != nil {
		return "", nil, err
	}

	audio := selector.FilterAudio(handle.Files())
	if len(audio) == 0 {
		return "", nil, domain.ErrNoAudioFiles
	}
	return resolved, audio, nil
}

// OpenStream looks up an already registered handle and opens the named
// file. No creation: streaming an unregistered magnet is a hard error.
func (s *torrentService) OpenStream(magnetURI, fileName string) (io.ReadSeekCloser, int64, error) {
	handle, ok := s.registry.Get(magnetURI)
	if !ok {
		return nil, 0, domain.ErrTorrentNotFound
	}

	for _, f := range handle.Files() {
		if f.Name == fileName {
			reader, err := handle.Open(f.Name)
			if err != nil {
				return nil, 0, err
			}
			return reader, f.Size, nil
		}
	}
	return nil, 0, domain.ErrFileNotFound
}

func (s *torrentService) ExportTrackAsync(magnetURI, fileName string) string {
	params := map[string]string{"magnet": magnetURI, "file": fileName}
	return s.jobs.Accept(domain.JobKindTrackExport, params, func(ctx context.Context, progress func(int)) (any, error) {
		if s.exporter == nil {
			return nil, errors.New("track export is not configured")
		}
		return s.exporter.Export(ctx, magnetURI, fileName, progress)
	})
}

func (s *torrentService) JobStatus(id string) (domain.Job, error) {
	return s.jobs.Status(id)
}

func (s *torrentService) SwarmSnapshot() []SwarmStatus {
	handles := s.registry.Snapshot()
	statuses := make([]SwarmStatus, len(handles))
	for i, h := range handles {
		statuses[i] = SwarmStatus{
			MagnetURI: h.Magnet(),
			Name:      h.Name(),
			Files:     len(h.Files()),
			Ready:     h.Ready(),
			Stats:     h.Stats(),
		}
	}
	return statuses
}

// discover aggregates indexer results across the query variants for a
// target, consulting the persistent search cache first. Indexer
// failures count as zero results from that query.
func (s *torrentService) discover(ctx context.Context, target domain.Target) []domain.TorrentCandidate {
	queries := []string{fmt.Sprintf("%s %s", target.ArtistName, target.TrackTitle)}
	if strings.TrimSpace(target.AlbumTitle) != "" {
		queries = append(queries, fmt.Sprintf("%s %s", target.ArtistName, target.AlbumTitle))
	}

	var all []domain.TorrentCandidate
	seen := make(map[string]struct{})
	for _, query := range queries {
		for _, c := range s.search(ctx, query) {
			if _, dup := seen[c.DownloadRef]; dup {
				continue
			}
			seen[c.DownloadRef] = struct{}{}
			all = append(all, c)
		}
	}
	return all
}

func (s *torrentService) search(ctx context.Context, query string) []domain.TorrentCandidate {
	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, query, indexer.CategoryAudio); err == nil && hit {
			return cached
		}
	}

	candidates, err := s.discovery.Search(ctx, query, indexer.CategoryAudio)
	if err != nil {
		s.cfg.Logger.Warnf("indexer query %q failed: %v", query, err)
		return nil
	}

	if s.cache != nil && len(candidates) > 0 {
		if err := s.cache.Put(ctx, query, indexer.CategoryAudio, candidates); err != nil {
			s.cfg.Logger.Warnf("cache search results: %v", err)
		}
	}
	return candidates
}

// warm fires a short-window registration for the winning magnet so a
// follow-up stream preparation finds a live handle. Fire-and-forget:
// the search response never waits on it, and a failure here only means
// the later prepare pays the full readiness wait.
func (s *torrentService) warm(magnetURI string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ProbeTimeout)
		defer cancel()
		if _, err := s.registry.GetOrCreateWithin(ctx, magnetURI, s.cfg.ProbeTimeout); err != nil {
			s.cfg.Logger.Debugf("warm-up for %s: %v", magnetURI, err)
		}
	}()
}

var _ TorrentService = (*torrentService)(nil)
