package cache

import (
	"sort"
	"sync"
	"time"
)

type item struct {
	data      []byte
	expiresAt time.Time
	storedAt  time.Time
}

// MemoryCache is a TTL map. With a positive limit it stays bounded: when
// full, expired entries are dropped first, then the oldest evict entries.
type MemoryCache struct {
	items map[string]item
	mu    sync.RWMutex
	limit int
	evict int
	now   func() time.Time
}

func NewMemoryCache() Cache {
	return NewBoundedMemoryCache(0, 0)
}

func NewBoundedMemoryCache(limit, evict int) *MemoryCache {
	if limit > 0 && (evict <= 0 || evict > limit) {
		evict = max(1, limit/5)
	}
	return &MemoryCache{
		items: make(map[string]item),
		limit: limit,
		evict: evict,
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	it, exists := c.items[key]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	if c.now().After(it.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.items[key]; ok && cur.expiresAt.Equal(it.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return it.data, true
}

func (c *MemoryCache) Set(key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.items[key]; !exists && c.limit > 0 && len(c.items) >= c.limit {
		c.shrink(now)
	}
	c.items[key] = item{
		data:      data,
		expiresAt: now.Add(ttl),
		storedAt:  now,
	}
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]item)
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// shrink must be called with the write lock held.
func (c *MemoryCache) shrink(now time.Time) {
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
		}
	}
	if len(c.items) < c.limit {
		return
	}

	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.items[keys[i]].storedAt.Before(c.items[keys[j]].storedAt)
	})
	for _, k := range keys[:min(c.evict, len(keys))] {
		delete(c.items, k)
	}
}
