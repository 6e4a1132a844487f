package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a concurrency safe in-memory cache with a per-entry time to live.
// Time comes from an injected clock so expiry can be tested without sleeping.
type TTL[K comparable, V any] struct {
	mu         sync.Mutex
	items      map[K]entry[V]
	now        func() time.Time
	maxEntries int
}

// NewTTL creates a cache. now defaults to time.Now, maxEntries <= 0 means unbounded.
func NewTTL[K comparable, V any](now func() time.Time, maxEntries int) *TTL[K, V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[K, V]{
		items:      make(map[K]entry[V]),
		now:        now,
		maxEntries: maxEntries,
	}
}

// Get returns the value for key if present and not expired
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl
func (c *TTL[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.items[key] = entry[V]{value: value, expiresAt: now.Add(ttl)}

	if c.maxEntries > 0 && len(c.items) > c.maxEntries {
		c.purgeExpired(now)
	}
}

// Delete drops key
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of stored entries, expired ones included until purged
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *TTL[K, V]) purgeExpired(now time.Time) {
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
		}
	}
}
