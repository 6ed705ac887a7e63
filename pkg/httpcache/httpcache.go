// Package httpcache is a SQLite-backed cache for GET responses, plugged in as
// an http.RoundTripper. Successful responses are replayed from disk until
// their TTL runs out, so repeated searches do not hammer the remote sites.
package httpcache

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const maxCachedBody = 4 << 20

const migration = `
CREATE TABLE IF NOT EXISTS responses (
	url        TEXT PRIMARY KEY,
	status     INTEGER NOT NULL,
	headers    TEXT NOT NULL,
	body       BLOB NOT NULL,
	fetched_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_expires_at ON responses(expires_at);
`

// Transport caches GET responses in a SQLite database. Other methods pass
// through untouched. It is safe for concurrent use.
type Transport struct {
	db   *sql.DB
	ttl  time.Duration
	base http.RoundTripper
	now  func() time.Time
}

// Option configures the transport.
type Option func(*Transport)

// WithBase sets the underlying round tripper for cache misses.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) { t.base = rt }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Transport) { t.now = now }
}

// New opens the cache database at the given path, creating it if needed.
func New(dsn string, ttl time.Duration, opts ...Option) (*Transport, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "httpcache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "httpcache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "httpcache: migrate")
	}

	t := &Transport{
		db:  db,
		ttl: ttl,
		base: &http.Transport{
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Close closes the cache database.
func (t *Transport) Close() error {
	return t.db.Close()
}

// RoundTrip serves GETs from the cache when a fresh entry exists, otherwise
// forwards to the base transport and stores successful responses. A cache
// write failure never fails the request.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	key := req.URL.String()
	if resp, ok := t.lookup(req, key); ok {
		return resp, nil
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCachedBody))
	_ = resp.Body.Close()
	if err != nil {
		return nil, eris.Wrap(err, "httpcache: read body")
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	t.store(req.Context(), key, resp, body)
	return resp, nil
}

func (t *Transport) lookup(req *http.Request, key string) (*http.Response, bool) {
	row := t.db.QueryRowContext(req.Context(),
		`SELECT status, headers, body FROM responses WHERE url = ? AND expires_at > ?`,
		key, t.now().UTC(),
	)

	var status int
	var headersJSON string
	var body []byte
	if err := row.Scan(&status, &headersJSON, &body); err != nil {
		return nil, false
	}

	headers := http.Header{}
	if err := json.Unmarshal([]byte(headersJSON), &headers); err != nil {
		return nil, false
	}

	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     headers,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
	}, true
}

func (t *Transport) store(ctx context.Context, key string, resp *http.Response, body []byte) {
	headersJSON, err := json.Marshal(resp.Header)
	if err != nil {
		return
	}
	now := t.now().UTC()
	_, _ = t.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (url, status, headers, body, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, resp.StatusCode, string(headersJSON), body, now, now.Add(t.ttl),
	)
}

// Purge removes expired entries and reports how many went away.
func (t *Transport) Purge() (int, error) {
	res, err := t.db.Exec(`DELETE FROM responses WHERE expires_at <= ?`, t.now().UTC())
	if err != nil {
		return 0, eris.Wrap(err, "httpcache: purge")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "httpcache: rows affected")
}
