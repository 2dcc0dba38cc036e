package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunestream/internal/domain"
)

type stubMusicService struct {
	artists    []domain.Artist
	detail     *domain.Artist
	detailErr  error
	cacheEntry domain.ArtistTorrentCache
	cacheErr   error
}

func (s *stubMusicService) SearchArtists(ctx context.Context, query string) ([]domain.Artist, error) {
	if strings.TrimSpace(query) == "" {
		return nil, assert.AnError
	}
	return s.artists, nil
}

func (s *stubMusicService) ArtistDetail(ctx context.Context, artistID string) (*domain.Artist, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return s.detail, nil
}

func (s *stubMusicService) SearchRecordings(ctx context.Context, query string) ([]domain.Recording, error) {
	return nil, nil
}

func (s *stubMusicService) AlbumTorrents(artistID string) (domain.ArtistTorrentCache, error) {
	if s.cacheErr != nil {
		return domain.ArtistTorrentCache{}, s.cacheErr
	}
	return s.cacheEntry, nil
}

func newAPIRouter(music *stubMusicService, torrents *stubTorrentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(music, torrents).RegisterRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearchArtistsEndpoint(t *testing.T) {
	music := &stubMusicService{artists: []domain.Artist{{ID: "a1", Name: "Radiohead"}}}
	router := newAPIRouter(music, &stubTorrentService{})

	w := doRequest(router, http.MethodGet, "/api/artists?query=radiohead", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Radiohead")
}

func TestArtistTorrentsNotCached(t *testing.T) {
	music := &stubMusicService{cacheErr: domain.ErrArtistNotCached}
	router := newAPIRouter(music, &stubTorrentService{})

	w := doRequest(router, http.MethodGet, "/api/artists/a1/torrents", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindBestTorrentValidation(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodGet, "/api/torrents/search?track=Song", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFindBestTorrentAsyncAccepted(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodGet, "/api/torrents/search?track=Song&artist=Band&async=1", "")
	require.Equal(t, http.StatusAccepted, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "job-1", payload["jobId"])
}

func TestFindBestTorrentNoCandidatesIs503(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodGet, "/api/torrents/search?track=Song&artist=Band", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPrepareStreamAsyncAccepted(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodPost, "/api/stream/prepare?async=1", `{"reference":"magnet:?xt=urn:btih:aaa"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "job-2")
}

func TestPrepareStreamNoPeersIs503(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodPost, "/api/stream/prepare", `{"reference":"magnet:?xt=urn:btih:aaa"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPrepareStreamBadBody(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodPost, "/api/stream/prepare", `{"wrong":"field"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportAccepted(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodPost, "/api/export", `{"magnet":"magnet:?xt=urn:btih:aaa","file_name":"a.flac"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "job-3")
}

func TestJobStatusUnknownIs404(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodGet, "/api/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveMagnetEndpoint(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodPost, "/api/magnet/resolve", `{"reference":"magnet:?xt=urn:btih:aaa"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "magnet:?xt=urn:btih:aaa", payload["resolved"])
}

func TestHealthEndpoint(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newAPIRouter(&stubMusicService{}, &stubTorrentService{})

	w := doRequest(router, http.MethodOptions, "/api/artists", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Range")
}
