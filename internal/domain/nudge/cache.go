package nudge

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a generated nudge is reused for the same
// (from, to) pair.
const DefaultCacheTTL = 30 * time.Minute

// CacheEntry is one generated nudge.
type CacheEntry struct {
	Text      string
	CreatedAt time.Time
}

type cacheKey struct{ from, to string }

// Cache holds generated nudges keyed by the ordered (from, to) domain pair.
// There is no capacity bound; entries are only removed when a lookup finds
// them expired.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]CacheEntry
}

// NewCache creates an empty cache. A nil now uses time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now, entries: make(map[cacheKey]CacheEntry)}
}

// Get returns the cached text for (from, to) if it is younger than the TTL.
// An expired entry is deleted.
func (c *Cache) Get(from, to string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey{from, to}
	e, ok := c.entries[k]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.CreatedAt) >= c.ttl {
		delete(c.entries, k)
		return "", false
	}
	return e.Text, true
}

// Put stores text for (from, to), replacing any previous entry.
func (c *Cache) Put(from, to, text string) {
	c.mu.Lock()
	c.entries[cacheKey{from, to}] = CacheEntry{Text: text, CreatedAt: c.now()}
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
