// Package ttlcache is a small expiring key/value cache whose notion of time
// comes from an injected clock, so expiry is deterministic under test.
package ttlcache

import (
	"sync"
	"time"
)

// Clock is the only time source the cache reads
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache maps keys to values that expire ttl after they were stored.
// A ttl of zero means entries never expire.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	ttl     time.Duration
	maxSize int
	clock   Clock
}

// New creates a cache. A nil clock reads the system time. maxSize <= 0 means unbounded.
func New[K comparable, V any](ttl time.Duration, maxSize int, clock Clock) *Cache[K, V] {
	if clock == nil {
		clock = systemClock{}
	}
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		clock:   clock,
	}
}

// Get returns the value for key if present and not expired
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.expired(e, c.clock.Now()) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting expired entries first when the cache is full
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evict(now)
	}
	c.entries[key] = entry[V]{value: value, storedAt: now}
}

// Delete removes key
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, including ones not yet evicted
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear empties the cache
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

func (c *Cache[K, V]) expired(e entry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.storedAt) >= c.ttl
}

// evict drops expired entries, then the oldest entry if still full.
// Must be called while holding mu.
func (c *Cache[K, V]) evict(now time.Time) {
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxSize {
		return
	}

	var oldestKey K
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldest) {
			oldestKey, oldest, first = k, e.storedAt, false
		}
	}
	delete(c.entries, oldestKey)
}
