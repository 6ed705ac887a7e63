// Package fetch is the one HTTP door for every source: a single GET or POST
// per search, fixed User-Agent, redirect tracking and charset-aware body
// decoding.
package fetch

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

const maxBodySize = 4 << 20

// Page is the outcome of one fetch.
type Page struct {
	Body     []byte
	Status   int
	FinalURL string
	// Redirected is set when the first hop of the redirect chain was a 302:
	// the site skipped its results list and sent us straight to a product
	// page, which must then be parsed with the product-page hooks.
	Redirected bool
}

// ErrorStatus reports whether the response status is a 4xx or 5xx.
func (p *Page) ErrorStatus() bool {
	return p.Status >= 400
}

// Options configures the fetch client.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Client issues the search requests. It is safe for concurrent use.
type Client struct {
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
}

// NewClient creates a fetch client with the given options.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &Client{
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		transport: transport,
	}
}

// Get fetches the URL, following redirects and remembering whether the
// first hop was a 302.
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	return c.do(req)
}

// PostForm sends a form-encoded POST, for the sources whose search endpoint
// does not accept GET.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Page, error) {
	req.Header.Set("User-Agent", c.userAgent)

	page := &Page{}
	client := &http.Client{
		Timeout:   c.timeout,
		Transport: c.transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) == 1 && req.Response != nil && req.Response.StatusCode == http.StatusFound {
				page.Redirected = true
			}
			if len(via) >= 10 {
				return eris.New("fetch: too many redirects")
			}
			return nil
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: %s %s", req.Method, req.URL)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}

	decoded, err := DecodeBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		zap.L().Debug("fetch: charset decode failed, keeping raw body",
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		decoded = body
	}

	page.Body = decoded
	page.Status = resp.StatusCode
	page.FinalURL = resp.Request.URL.String()
	if page.Redirected {
		zap.L().Info("fetch: redirected to product page",
			zap.String("url", req.URL.String()),
			zap.String("final_url", page.FinalURL),
		)
	}
	return page, nil
}

// DecodeBody converts a response body to UTF-8 using the charset declared in
// the Content-Type header. Missing or UTF-8 charsets return the body as is.
func DecodeBody(body []byte, contentType string) ([]byte, error) {
	if contentType == "" {
		return body, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: unsupported charset %q", charset)
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: decode %q body", charset)
	}
	return decoded, nil
}
