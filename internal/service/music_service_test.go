package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunestream/internal/domain"
	"tunestream/internal/musicbrainz"
	"tunestream/internal/preload"
)

const artistDetailBody = `{
  "id": "artist-1",
  "name": "Radiohead",
  "country": "GB",
  "release-groups": [
    {"id": "rg-1", "title": "OK Computer", "primary-type": "Album"}
  ]
}`

type silentWarmer struct{}

func (silentWarmer) Warm(string) {}

func TestArtistDetailFiresPreloader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(artistDetailBody))
	}))
	defer srv.Close()

	metadata := musicbrainz.NewClient(musicbrainz.Config{BaseURL: srv.URL, Timeout: time.Second})
	discovery := &fakeDiscovery{results: []domain.TorrentCandidate{
		{Title: "radiohead ok computer flac", Seeders: 12, DownloadRef: magnetGood},
	}}
	store := preload.NewMemoryStore(time.Hour)
	defer store.Close()
	preloader := preload.NewPreloader(discovery, fakeResolver{}, silentWarmer{}, store, preload.Config{})

	svc := NewMusicService(metadata, nil, preloader, store, nil)

	artist, err := svc.ArtistDetail(context.Background(), "artist-1")
	require.NoError(t, err)
	assert.Equal(t, "Radiohead", artist.Name)
	require.Len(t, artist.Albums, 1)

	// Detail returns before any pre-load completes; the cache fills in
	// shortly after.
	preloader.Wait()

	entry, err := svc.AlbumTorrents("artist-1")
	require.NoError(t, err)
	require.Len(t, entry.Albums, 1)
	assert.Equal(t, "OK Computer", entry.Albums[0].AlbumTitle)
	require.Len(t, entry.Albums[0].Torrents, 1)
	assert.True(t, entry.Albums[0].Torrents[0].Resolved)
}

func TestAlbumTorrentsMiss(t *testing.T) {
	store := preload.NewMemoryStore(time.Hour)
	defer store.Close()

	svc := NewMusicService(nil, nil, nil, store, nil)
	_, err := svc.AlbumTorrents("unknown")
	assert.ErrorIs(t, err, domain.ErrArtistNotCached)
}

func TestSearchArtistsRequiresQuery(t *testing.T) {
	svc := NewMusicService(nil, nil, nil, nil, nil)
	_, err := svc.SearchArtists(context.Background(), "   ")
	assert.Error(t, err)
}
