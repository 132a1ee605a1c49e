package marketdata

import (
	"sync"
	"time"
)

type cacheEntry struct {
	createdAt time.Time
	value     any
}

// Cache is a mutex-guarded TTL cache for fetched payloads and rendered
// chart images. Byte-slice values are copied on read so callers cannot
// mutate a cached image in place.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, entries: map[string]cacheEntry{}}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.createdAt.Add(c.ttl)) {
		return nil, false
	}
	if b, ok := entry.value.([]byte); ok {
		out := make([]byte, len(b))
		copy(out, b)
		return out, true
	}
	return entry.value, true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{createdAt: time.Now(), value: value}
	c.mu.Unlock()
}

// Invalidate drops a single key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
