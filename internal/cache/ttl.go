package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a small thread-safe cache whose entries expire after a fixed
// duration. Expired entries are refused on read and evicted lazily on write;
// at client scale there is no need for a background sweeper.
type TTL[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	clock   func() time.Time
}

// NewTTL constructs a cache with the given entry lifetime. A nil clock
// defaults to time.Now.
func NewTTL[K comparable, V any](ttl time.Duration, clock func() time.Time) *TTL[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTL[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached value when present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.entries[key]
	if !ok || c.clock().After(cached.expiresAt) {
		var zero V
		return zero, false
	}
	return cached.value, true
}

// Set stores the value and evicts any entries that have already expired.
func (c *TTL[K, V]) Set(key K, value V) {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for existing, cached := range c.entries {
		if now.After(cached.expiresAt) {
			delete(c.entries, existing)
		}
	}
	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl)}
}

// Delete removes the entry for key, if any.
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
