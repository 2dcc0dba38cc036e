package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coverArtFixture = `{
  "images": [
    {"front": false, "image": "http://img/back.jpg", "thumbnails": {"small": "http://img/back-small.jpg"}},
    {"front": true, "image": "http://img/front.jpg", "thumbnails": {"small": "http://img/front-small.jpg"}}
  ]
}`

func TestReleaseGroupImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/release-group/rg-1", req.URL.Path)
		w.Write([]byte(coverArtFixture))
	}))
	defer srv.Close()

	client := NewCoverArtClient(srv.URL, time.Second, nil)
	images, err := client.ReleaseGroupImages(context.Background(), "rg-1")
	require.NoError(t, err)

	require.Len(t, images, 2)
	assert.False(t, images[0].Front)
	assert.True(t, images[1].Front)
	assert.Equal(t, "http://img/front-small.jpg", images[1].Thumbnail)
}

func TestReleaseGroupImagesNotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewCoverArtClient(srv.URL, time.Second, nil)
	images, err := client.ReleaseGroupImages(context.Background(), "rg-missing")
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestFrontCoverURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(coverArtFixture))
	}))
	defer srv.Close()

	client := NewCoverArtClient(srv.URL, time.Second, nil)
	assert.Equal(t, "http://img/front-small.jpg", client.FrontCoverURL(context.Background(), "rg-1"))
}

func TestFrontCoverURLFailureIsEmpty(t *testing.T) {
	client := NewCoverArtClient("http://127.0.0.1:1", 100*time.Millisecond, nil)
	assert.Empty(t, client.FrontCoverURL(context.Background(), "rg-1"))
}
