package providers

import (
	"sync"
	"time"
)

type cacheItem struct {
	data      []byte
	expiresAt time.Time
}

func (c *cacheItem) expired() bool {
	return time.Now().After(c.expiresAt)
}

// responseCache is a thread-safe TTL cache for raw provider responses, shared
// by concurrent in-flight evaluations of the same artifact batch.
type responseCache struct {
	mu    sync.RWMutex
	items map[string]*cacheItem
	ttl   time.Duration
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		items: make(map[string]*cacheItem),
		ttl:   ttl,
	}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if item.expired() {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.data, true
}

func (c *responseCache) set(key string, data []byte) {
	c.mu.Lock()
	c.items[key] = &cacheItem{data: data, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
