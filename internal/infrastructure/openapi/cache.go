package openapi

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheSize is the entry bound of a cache created with size <= 0.
const DefaultCacheSize = 1000

// CacheStats counts cache traffic.
type CacheStats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Evictions int `json:"evictions"`
	Sets      int `json:"total_sets"`
	Gets      int `json:"total_gets"`
	Size      int `json:"size"`
	MaxSize   int `json:"max_size"`
}

// HitRate returns hits over gets, 0 before the first get.
func (s CacheStats) HitRate() float64 {
	if s.Gets == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Gets)
}

// Cache is a size-bounded LRU cache whose entries expire after a fixed TTL.
// Storage and expiry are handled by an expirable LRU; Cache only keeps the
// traffic counters on top of it.
type Cache struct {
	lru     *expirable.LRU[string, interface{}]
	maxSize int
	ttl     time.Duration

	mu    sync.Mutex
	stats CacheStats
}

// NewCache creates a cache holding at most maxSize entries. A zero ttl keeps
// entries until evicted.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		lru:     expirable.NewLRU[string, interface{}](maxSize, nil, ttl),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// TTL returns the entry lifetime, 0 when entries never expire.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the live value stored under key.
func (c *Cache) Get(key string) (interface{}, bool) {
	value, ok := c.lru.Get(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Gets++
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Set(key string, value interface{}) {
	evicted := c.lru.Add(key, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Sets++
	if evicted {
		c.stats.Evictions++
	}
}

// Invalidate removes key and reports whether it was present.
func (c *Cache) Invalidate(key string) bool {
	return c.lru.Remove(key)
}

// Clear drops every entry and resets the statistics.
func (c *Cache) Clear() {
	c.lru.Purge()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = CacheStats{}
}

// Len returns the number of stored entries. Expired entries count until the
// background sweep removes them.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	stats := c.stats
	c.mu.Unlock()

	stats.Size = c.lru.Len()
	stats.MaxSize = c.maxSize
	return stats
}
