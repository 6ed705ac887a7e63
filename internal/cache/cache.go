// Package cache memoizes search results per source and query for the
// lifetime of the process. Entries stay fresh for the calendar day they were
// stored on: a search repeated the same day returns the cached records
// without touching the network, the next day it fetches again.
package cache

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abelujo/bookscout/internal/model"
)

type entry struct {
	storedAt time.Time
	records  []model.Record
}

// Results is an in-memory result cache with an injected clock. Concurrent
// writers on the same key are last-write-wins, which is acceptable: both
// would store equivalent results.
type Results struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]entry
}

// New creates an empty result cache using the real clock.
func New() *Results {
	return NewWithClock(time.Now)
}

// NewWithClock creates a result cache with a custom clock, for tests.
func NewWithClock(now func() time.Time) *Results {
	return &Results{
		now:     now,
		entries: make(map[string]entry),
	}
}

// Key canonicalizes a (source, query tokens) pair into a cache key.
func Key(source string, tokens []string) string {
	return source + "\x00" + strings.Join(tokens, " ")
}

// Get returns the cached records for the key if they were stored today.
// The original implementation compared only the day of month, which kept an
// entry from the 14th of last month alive on the 14th of this one; freshness
// is the full calendar date here.
func (c *Results) Get(key string) ([]model.Record, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !sameDate(e.storedAt, c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	zap.L().Debug("cache: hit", zap.String("key", key), zap.Int("records", len(e.records)))
	return e.records, true
}

// Put stores search results under the key, stamped with the current time.
func (c *Results) Put(key string, records []model.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{storedAt: c.now(), records: records}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
