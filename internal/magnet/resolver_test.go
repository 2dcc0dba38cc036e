package magnet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePassesMagnetThrough(t *testing.T) {
	r := NewResolver(time.Second, nil)
	uri := "magnet:?xt=urn:btih:" + testHash

	assert.Equal(t, uri, r.Resolve(context.Background(), uri))
}

func TestResolveViaRedirect(t *testing.T) {
	uri := "magnet:?xt=urn:btih:" + testHash + "&dn=album"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, uri, http.StatusFound)
	}))
	defer srv.Close()

	r := NewResolver(time.Second, nil)
	assert.Equal(t, uri, r.Resolve(context.Background(), srv.URL+"/download/42"))
}

func TestResolveViaBodyScan(t *testing.T) {
	uri := "magnet:?xt=urn:btih:" + testHash
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`<html><body><a href="` + uri + `">download</a></body></html>`))
	}))
	defer srv.Close()

	r := NewResolver(time.Second, nil)
	assert.Equal(t, uri, r.Resolve(context.Background(), srv.URL+"/release/42"))
}

func TestResolveFailureReturnsInputUnchanged(t *testing.T) {
	r := NewResolver(200*time.Millisecond, nil)

	// Unreachable host.
	ref := "http://127.0.0.1:1/download"
	assert.Equal(t, ref, r.Resolve(context.Background(), ref))

	// Reachable but magnet-free body.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("nothing to see here"))
	}))
	defer srv.Close()
	assert.Equal(t, srv.URL, r.Resolve(context.Background(), srv.URL))
}
