package preload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tunestream/internal/domain"
	"tunestream/internal/indexer"
	"tunestream/internal/magnet"
	"tunestream/internal/rank"
)

// Discovery is the slice of the indexer client the pre-loader needs.
type Discovery interface {
	Search(ctx context.Context, query string, category int) ([]domain.TorrentCandidate, error)
}

// Resolver turns download references into magnet URIs, best-effort.
type Resolver interface {
	Resolve(ctx context.Context, ref string) string
}

// Warmer fires swarm handle creation without blocking on readiness.
type Warmer interface {
	Warm(magnetURI string)
}

type Config struct {
	// TopN caps how many ranked torrents are resolved per album.
	TopN int
	// AlbumTimeout bounds discovery plus resolution for one album.
	AlbumTimeout time.Duration
	Logger       *logrus.Logger
}

// Preloader warms torrents for every album of an artist in the
// background, after the artist-detail response has already been sent.
// Results land in the Store for near-instant later retrieval.
type Preloader struct {
	cfg       Config
	discovery Discovery
	resolver  Resolver
	warmer    Warmer
	store     Store

	wg sync.WaitGroup
}

func NewPreloader(discovery Discovery, resolver Resolver, warmer Warmer, store Store, cfg Config) *Preloader {
	if cfg.TopN <= 0 {
		cfg.TopN = 20
	}
	if cfg.AlbumTimeout <= 0 {
		cfg.AlbumTimeout = 2 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Preloader{
		cfg:       cfg,
		discovery: discovery,
		resolver:  resolver,
		warmer:    warmer,
		store:     store,
	}
}

// PreloadArtist kicks off the whole-artist workflow and returns
// immediately. Each album is processed independently; individual
// failures degrade that album's entry rather than aborting the rest.
func (p *Preloader) PreloadArtist(artist domain.Artist) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.preload(artist)
	}()
}

// Wait blocks until all in-flight pre-loads finish. Test and shutdown
// hook, callers on the request path never wait.
func (p *Preloader) Wait() {
	p.wg.Wait()
}

func (p *Preloader) preload(artist domain.Artist) {
	logger := p.cfg.Logger.WithField("artist", artist.Name)
	started := time.Now()

	albums := make([]domain.AlbumTorrents, len(artist.Albums))
	var wg sync.WaitGroup
	for i, album := range artist.Albums {
		wg.Add(1)
		go func(i int, album domain.ReleaseGroup) {
			defer wg.Done()
			albums[i] = p.preloadAlbum(artist.Name, album)
		}(i, album)
	}
	wg.Wait()

	p.store.Set(domain.ArtistTorrentCache{
		ArtistID:    artist.ID,
		ArtistName:  artist.Name,
		Albums:      albums,
		PopulatedAt: time.Now(),
	})
	logger.Infof("pre-loaded torrents for %d albums in %s", len(albums), time.Since(started).Round(time.Millisecond))
}

func (p *Preloader) preloadAlbum(artistName string, album domain.ReleaseGroup) domain.AlbumTorrents {
	entry := domain.AlbumTorrents{AlbumID: album.ID, AlbumTitle: album.Title}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.AlbumTimeout)
	defer cancel()

	query := fmt.Sprintf("%s %s", artistName, album.Title)
	candidates, err := p.discovery.Search(ctx, query, indexer.CategoryAudio)
	if err != nil {
		p.cfg.Logger.Warnf("discovery for album %q failed: %v", album.Title, err)
		return entry
	}

	ranked := rank.RankLight(candidates, query, p.cfg.TopN)
	entry.Torrents = make([]domain.PreloadedTorrent, 0, len(ranked))
	for _, r := range ranked {
		item := domain.PreloadedTorrent{RankedTorrent: r}
		resolved := p.resolver.Resolve(ctx, r.DownloadRef)
		if magnet.IsMagnet(resolved) {
			item.MagnetURI = resolved
			item.Resolved = true
			item.Warming = true
			p.warmer.Warm(resolved)
		}
		entry.Torrents = append(entry.Torrents, item)
	}
	return entry
}
