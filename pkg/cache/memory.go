package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/oagate/core"
)

// InMemoryCache implements an in-memory membership cache
type InMemoryCache struct {
	entries map[string]*cachedMembership
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedMembership struct {
	membership *core.Membership
	cachedAt   time.Time
}

var _ core.CacheWithStats = (*InMemoryCache)(nil)

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &InMemoryCache{
		entries: make(map[string]*cachedMembership),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

// Get retrieves a membership from cache. Expired entries are dropped.
func (c *InMemoryCache) Get(key string) (*core.Membership, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}

	if time.Since(entry.cachedAt) > c.ttl {
		atomic.AddInt64(&c.misses, 1)

		c.mu.Lock()
		// only drop the entry we saw; a concurrent Set may have replaced it
		if cur, ok := c.entries[key]; ok && cur == entry {
			delete(c.entries, key)
			atomic.AddInt64(&c.deletes, 1)
		}
		c.mu.Unlock()

		return nil, core.ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.membership, nil
}

// Set stores a membership in cache, evicting the oldest entry when full
func (c *InMemoryCache) Set(key string, membership *core.Membership) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cachedMembership{
		membership: membership,
		cachedAt:   time.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

// evictOldest must be called with mu held
func (c *InMemoryCache) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range c.entries {
		if oldestKey == "" || e.cachedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.cachedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// Delete removes a membership from cache
func (c *InMemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.entries[key]; existed {
		delete(c.entries, key)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// Clear removes all memberships from cache
func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cachedMembership)
	return nil
}

// Len returns the number of cached memberships
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics
func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
