package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelujo/bookscout/internal/model"
)

func TestGetPut_SameDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, 5, 14, 10, 0, 0, 0, time.UTC)
	c := NewWithClock(func() time.Time { return now })

	key := Key("librairiedeparis", []string{"le", "prince"})
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Put(key, []model.Record{{Title: "Le petit prince"}})

	now = now.Add(6 * time.Hour) // still the 14th
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "Le petit prince", got[0].Title)
}

func TestGet_ExpiresNextDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, 5, 14, 23, 0, 0, 0, time.UTC)
	c := NewWithClock(func() time.Time { return now })

	key := Key("momox", []string{"ogres"})
	c.Put(key, []model.Record{{Title: "Les ogres"}})

	now = now.Add(2 * time.Hour) // past midnight
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestGet_SameDayOfMonthNextMonthIsStale(t *testing.T) {
	t.Parallel()

	// Day-of-month-only comparison would treat this entry as fresh.
	now := time.Date(2020, 5, 14, 12, 0, 0, 0, time.UTC)
	c := NewWithClock(func() time.Time { return now })

	key := Key("momox", []string{"ogres"})
	c.Put(key, []model.Record{{Title: "Les ogres"}})

	now = now.AddDate(0, 1, 0)
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestKey_DistinguishesSourcesAndTokens(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, Key("a", []string{"x"}), Key("b", []string{"x"}))
	assert.NotEqual(t, Key("a", []string{"x"}), Key("a", []string{"y"}))
	assert.Equal(t, Key("a", []string{"x", "y"}), Key("a", []string{"x", "y"}))
}
