package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"tunestream/internal/domain"
	"tunestream/internal/musicbrainz"
	"tunestream/internal/preload"
)

// MusicService serves metadata lookups and triggers the album
// pre-loader as a side effect of artist-detail responses.
type MusicService interface {
	SearchArtists(ctx context.Context, query string) ([]domain.Artist, error)
	ArtistDetail(ctx context.Context, artistID string) (*domain.Artist, error)
	SearchRecordings(ctx context.Context, query string) ([]domain.Recording, error)
	AlbumTorrents(artistID string) (domain.ArtistTorrentCache, error)
}

type musicService struct {
	metadata  *musicbrainz.Client
	coverArt  *musicbrainz.CoverArtClient
	preloader *preload.Preloader
	store     preload.Store
	logger    *logrus.Logger
}

func NewMusicService(
	metadata *musicbrainz.Client,
	coverArt *musicbrainz.CoverArtClient,
	preloader *preload.Preloader,
	store preload.Store,
	logger *logrus.Logger,
) MusicService {
	if logger == nil {
		logger = logrus.New()
	}
	return &musicService{
		metadata:  metadata,
		coverArt:  coverArt,
		preloader: preloader,
		store:     store,
		logger:    logger,
	}
}

func (s *musicService) SearchArtists(ctx context.Context, query string) ([]domain.Artist, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is required")
	}
	return s.metadata.SearchArtists(ctx, query)
}

// ArtistDetail fetches the artist with its discography, decorates the
// albums with front cover thumbnails, and fires the pre-loader. The
// pre-load never delays or fails the returned detail.
func (s *musicService) ArtistDetail(ctx context.Context, artistID string) (*domain.Artist, error) {
	if strings.TrimSpace(artistID) == "" {
		return nil, errors.New("artist id is required")
	}

	artist, err := s.metadata.ArtistDetail(ctx, artistID)
	if err != nil {
		return nil, err
	}

	if s.coverArt != nil {
		for i := range artist.Albums {
			artist.Albums[i].CoverURL = s.coverArt.FrontCoverURL(ctx, artist.Albums[i].ID)
		}
	}

	if s.preloader != nil {
		s.preloader.PreloadArtist(*artist)
	}
	return artist, nil
}

func (s *musicService) SearchRecordings(ctx context.Context, query string) ([]domain.Recording, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is required")
	}
	return s.metadata.SearchRecordings(ctx, query)
}

func (s *musicService) AlbumTorrents(artistID string) (domain.ArtistTorrentCache, error) {
	entry, ok := s.store.Get(artistID)
	if !ok {
		return domain.ArtistTorrentCache{}, domain.ErrArtistNotCached
	}
	return entry, nil
}

var _ MusicService = (*musicService)(nil)
