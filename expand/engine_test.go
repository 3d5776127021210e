package expand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librecur/recurrence"
)

func newDailyRecurrence(t *testing.T) *recurrence.Recurrence {
	t.Helper()
	rec := recurrence.New()
	rec.SetStartDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	rec.SetDaily(1)
	return rec
}

func TestEngine_Occurrences(t *testing.T) {
	e := New()
	defer e.Close()

	rec := newDailyRecurrence(t)
	got := e.Occurrences(rec,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC),
	)

	require.Len(t, got, 5)
	assert.True(t, got[0].Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, got[4].Equal(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)))
}

func TestEngine_OccurrencesCapped(t *testing.T) {
	e := NewWithConfig(Config{MaxOccurrences: 10})
	defer e.Close()

	rec := newDailyRecurrence(t)
	got := e.Occurrences(rec,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	)

	assert.Len(t, got, 10)
}

func TestEngine_CachedResultReused(t *testing.T) {
	e := New()
	defer e.Close()

	rec := newDailyRecurrence(t)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	first := e.Occurrences(rec, from, to)
	second := e.Occurrences(rec, from, to)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, e.cache.Stats().TotalEntries)
}

func TestEngine_DistinctStateDistinctKeys(t *testing.T) {
	e := New()
	defer e.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)

	a := newDailyRecurrence(t)
	b := newDailyRecurrence(t)
	b.AddExDate(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	got := e.Occurrences(a, from, to)
	require.Len(t, got, 10)
	// The variant with an exclusion must not hit the first result.
	got = e.Occurrences(b, from, to)
	assert.Len(t, got, 9)
}

func TestEngine_ObserverPurgesCache(t *testing.T) {
	e := New()
	defer e.Close()

	rec := newDailyRecurrence(t)
	rec.AddObserver(e)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)

	e.Occurrences(rec, from, to)
	require.Equal(t, 1, e.cache.Stats().TotalEntries)

	rec.AddExDate(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, e.cache.Stats().TotalEntries)

	got := e.Occurrences(rec, from, to)
	assert.Len(t, got, 9)
}

func TestEngine_DisabledCache(t *testing.T) {
	e := NewWithConfig(DisabledCacheConfig)
	defer e.Close()

	rec := newDailyRecurrence(t)
	got := e.Occurrences(rec,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	)
	assert.Len(t, got, 2)
	assert.Nil(t, e.cache)
}

func TestEngine_HasOccurrenceBetween(t *testing.T) {
	e := New()
	defer e.Close()

	rec := recurrence.New()
	rec.SetStartDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	rec.SetWeekly(1, 1)

	assert.True(t, e.HasOccurrenceBetween(rec,
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 23, 0, 0, 0, time.UTC)))
	assert.False(t, e.HasOccurrenceBetween(rec,
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)))
	// The range start itself counts.
	assert.True(t, e.HasOccurrenceBetween(rec,
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)))
}
