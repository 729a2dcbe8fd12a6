package pipeline

import (
	"sync"
	"time"

	"github.com/querysmith/querysmith/internal/schema"
)

// schemaCache holds analyzed field indexes with a time-based expiry.
// The cache is owned by the pipeline, not the core components: Build
// stays pure and the TTL is an explicit constructor parameter.
type schemaCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	idx      *schema.Index
	storedAt time.Time
}

func newSchemaCache(ttl time.Duration) *schemaCache {
	return &schemaCache{ttl: ttl, entries: map[string]cacheEntry{}}
}

func (c *schemaCache) get(pattern string, now time.Time) (*schema.Index, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[pattern]
	if !ok {
		return nil, false
	}
	if now.Sub(e.storedAt) > c.ttl {
		delete(c.entries, pattern)
		return nil, false
	}
	return e.idx, true
}

func (c *schemaCache) put(pattern string, idx *schema.Index, now time.Time) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pattern] = cacheEntry{idx: idx, storedAt: now}
}
