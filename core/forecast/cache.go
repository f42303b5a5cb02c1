package forecast

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a computed forecast stays valid.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	value   float64
	ok      bool
	expires time.Time
}

// resultCache memoises forecast results per (zone, day, hour) with a
// TTL. "No result" outcomes are cached like values so repeated
// requests for an unanswerable hour stay cheap.
type resultCache struct {
	mu      sync.RWMutex
	entries map[sampleKey]cacheEntry
	ttl     time.Duration
	clock   func() time.Time
}

func newResultCache(ttl time.Duration, clock func() time.Time) *resultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &resultCache{
		entries: make(map[sampleKey]cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *resultCache) get(key sampleKey) (float64, bool, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()
	if !found || c.clock().After(e.expires) {
		return 0, false, false
	}
	return e.value, e.ok, true
}

func (c *resultCache) put(key sampleKey, value float64, ok bool) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, ok: ok, expires: c.clock().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *resultCache) purge() {
	c.mu.Lock()
	c.entries = make(map[sampleKey]cacheEntry)
	c.mu.Unlock()
}
