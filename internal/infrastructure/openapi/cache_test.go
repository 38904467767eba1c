package openapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(10, 0)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("b")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 2, stats.Gets)
	assert.Equal(t, 1, stats.Sets)
	assert.Equal(t, 0.5, stats.HitRate())
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10, 50*time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, c.TTL())

	c.Set("a", "x")
	_, ok := c.Get("a")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
	assert.Positive(t, c.Stats().Misses)
}

func TestCacheNoTTLKeepsEntries(t *testing.T) {
	c := NewCache(10, 0)
	assert.Zero(t, c.TTL())

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewCache(2, 0)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Stats().Evictions)
	assert.Equal(t, 2, c.Stats().MaxSize)
}

func TestCacheOverwriteAndInvalidate(t *testing.T) {
	c := NewCache(2, 0)

	c.Set("a", 1)
	c.Set("a", 2)
	assert.Equal(t, 1, c.Len())
	assert.Zero(t, c.Stats().Evictions, "overwrite is not an eviction")
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)

	assert.True(t, c.Invalidate("a"))
	assert.False(t, c.Invalidate("a"))
	assert.Zero(t, c.Stats().Evictions, "invalidation is not an eviction")

	c.Set("b", 1)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, CacheStats{MaxSize: 2}, c.Stats())
}

func TestCacheDefaultSize(t *testing.T) {
	c := NewCache(0, 0)
	assert.Equal(t, DefaultCacheSize, c.Stats().MaxSize)
}
