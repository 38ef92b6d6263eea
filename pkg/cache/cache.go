// Package cache memoizes generated schedules by a fingerprint of the request
// that produced them. Generation is deterministic, so equal requests always
// produce equal schedules.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"
)

// Cache is a bounded concurrent map from request fingerprints to results
type Cache[V any] struct {
	entries    *xsync.Map[uint64, V]
	maxEntries int
}

// New creates a cache holding at most maxEntries results. A non-positive
// maxEntries disables caching.
func New[V any](maxEntries int) *Cache[V] {
	return &Cache[V]{
		entries:    xsync.NewMap[uint64, V](),
		maxEntries: maxEntries,
	}
}

// Fingerprint hashes the JSON encoding of parts. encoding/json sorts map keys,
// so equal values always hash equally.
func Fingerprint(parts ...any) (uint64, error) {
	b, err := json.Marshal(parts)
	if err != nil {
		return 0, fmt.Errorf("failed to fingerprint request: %w", err)
	}
	return xxh3.Hash(b), nil
}

// Get returns the cached value for key
func (c *Cache[V]) Get(key uint64) (V, bool) {
	return c.entries.Load(key)
}

// Put stores value under key, evicting an arbitrary entry when full
func (c *Cache[V]) Put(key uint64, value V) {
	if c.maxEntries <= 0 {
		return
	}
	if _, ok := c.entries.Load(key); !ok {
		for c.entries.Size() >= c.maxEntries {
			c.evictOne()
		}
	}
	c.entries.Store(key, value)
}

func (c *Cache[V]) evictOne() {
	c.entries.Range(func(key uint64, _ V) bool {
		c.entries.Delete(key)
		return false
	})
}

// Len returns the number of cached entries
func (c *Cache[V]) Len() int {
	return c.entries.Size()
}
