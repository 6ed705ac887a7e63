package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SetsUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := NewClient(Options{UserAgent: "bookscout-test"})
	page, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "bookscout-test", gotUA)
	assert.Equal(t, 200, page.Status)
	assert.False(t, page.Redirected)
}

func TestGet_Detects302Redirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/product/42", http.StatusFound)
	})
	mux.HandleFunc("/product/42", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>product page</body></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Options{})
	page, err := c.Get(context.Background(), srv.URL+"/search")
	require.NoError(t, err)
	assert.True(t, page.Redirected)
	assert.Equal(t, srv.URL+"/product/42", page.FinalURL)
	assert.Contains(t, string(page.Body), "product page")
}

func TestGet_301IsNotProductRedirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Options{})
	page, err := c.Get(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.False(t, page.Redirected)
}

func TestPostForm(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "9782732486819", r.PostForm.Get("inputSearch"))
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := NewClient(Options{})
	page, err := c.PostForm(context.Background(), srv.URL, url.Values{"inputSearch": {"9782732486819"}})
	require.NoError(t, err)
	assert.Equal(t, 200, page.Status)
}

func TestGet_ErrorStatusStillReturnsPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		_, _ = w.Write([]byte("oops"))
	}))
	defer srv.Close()

	c := NewClient(Options{})
	page, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, page.ErrorStatus())
	assert.Equal(t, 500, page.Status)
}

func TestDecodeBody_Latin1(t *testing.T) {
	t.Parallel()

	// "é" in ISO-8859-1.
	body := []byte{0xe9}
	decoded, err := DecodeBody(body, `text/html; charset=ISO-8859-1`)
	require.NoError(t, err)
	assert.Equal(t, "é", string(decoded))
}

func TestDecodeBody_UTF8PassThrough(t *testing.T) {
	t.Parallel()

	body := []byte("déjà")
	decoded, err := DecodeBody(body, "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, body, decoded)

	decoded, err = DecodeBody(body, "")
	require.NoError(t, err)
	assert.Equal(t, body, decoded)
}
