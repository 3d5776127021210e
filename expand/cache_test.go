package expand

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(DefaultCacheConfig)
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key", []time.Time{time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)})
	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Len(t, v.([]time.Time), 1)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(CacheConfig{
		TTL:             10 * time.Millisecond,
		MaxEntries:      10,
		CleanupInterval: time.Hour, // keep the sweeper out of the way
	})
	defer c.Close()

	c.Set("key", "value")
	_, ok := c.Get("key")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("key")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().TotalEntries)
}

func TestCache_EvictsLeastRecentlyAccessed(t *testing.T) {
	c := NewCache(CacheConfig{
		TTL:             time.Hour,
		MaxEntries:      3,
		CleanupInterval: time.Hour,
	})
	defer c.Close()

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
		time.Sleep(time.Millisecond)
	}
	// Touch the oldest entry so it survives the eviction instead.
	_, ok := c.Get("key-0")
	require.True(t, ok)
	time.Sleep(time.Millisecond)

	c.Set("key-3", 3)

	_, ok = c.Get("key-0")
	assert.True(t, ok)
	_, ok = c.Get("key-1")
	assert.False(t, ok)
	assert.Equal(t, 3, c.Stats().TotalEntries)
}

func TestCache_Purge(t *testing.T) {
	c := NewCache(DefaultCacheConfig)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	assert.Zero(t, c.Stats().TotalEntries)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := NewCache(CacheConfig{
		TTL:             10 * time.Millisecond,
		MaxEntries:      10,
		CleanupInterval: time.Hour,
	})
	defer c.Close()

	c.Set("a", 1)
	time.Sleep(25 * time.Millisecond)
	c.Set("b", 2)

	stats := c.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
	assert.Equal(t, 1, stats.ActiveEntries)
}

func TestCache_ZeroConfigUsesDefaults(t *testing.T) {
	c := NewCache(CacheConfig{})
	defer c.Close()

	assert.Equal(t, DefaultCacheConfig.TTL, c.ttl)
	assert.Equal(t, DefaultCacheConfig.MaxEntries, c.maxEntries)
}
