package httpcache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, ttl time.Duration, opts ...Option) *Transport {
	t.Helper()
	tr, err := New(filepath.Join(t.TempDir(), "cache.db"), ttl, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func get(t *testing.T, tr *Transport, url string) string {
	t.Helper()
	client := &http.Client{Transport: tr}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRoundTrip_CachesGET(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	tr := newTestTransport(t, time.Hour)
	assert.Equal(t, "payload", get(t, tr, srv.URL))
	assert.Equal(t, "payload", get(t, tr, srv.URL))
	assert.Equal(t, 1, hits)
}

func TestRoundTrip_ExpiryRefetches(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	now := time.Now()
	tr := newTestTransport(t, time.Minute, WithClock(func() time.Time { return now }))

	get(t, tr, srv.URL)
	now = now.Add(2 * time.Minute)
	get(t, tr, srv.URL)
	assert.Equal(t, 2, hits)
}

func TestRoundTrip_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := newTestTransport(t, time.Hour)
	client := &http.Client{Transport: tr}
	for i := 0; i < 2; i++ {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	}
	assert.Equal(t, 2, hits)
}

func TestRoundTrip_POSTPassesThrough(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	tr := newTestTransport(t, time.Hour)
	client := &http.Client{Transport: tr}
	for i := 0; i < 2; i++ {
		resp, err := client.Post(srv.URL, "text/plain", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	assert.Equal(t, 2, hits)
}

func TestPurge(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	now := time.Now()
	tr := newTestTransport(t, time.Minute, WithClock(func() time.Time { return now }))
	get(t, tr, srv.URL)

	now = now.Add(2 * time.Minute)
	n, err := tr.Purge()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
