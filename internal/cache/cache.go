// Package cache provides an in-memory TTL cache with ETag support, used to
// shield Postgres from dashboard polling of the recent-fact endpoints.
package cache

import (
	"crypto/sha1"
	"fmt"
	"sync"
	"time"
)

// TTLRecentFacts is deliberately short: the fact log is near-real-time and
// dashboards poll it aggressively.
const TTLRecentFacts = 5 * time.Second

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	enabled bool
}

// New creates a cache. Pass enabled=false for a no-op cache.
func New(enabled bool) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		enabled: enabled,
	}
	if enabled {
		go c.evictLoop()
	}
	return c
}

// Get retrieves a cached value. Returns data, etag, and whether a live
// entry was found.
func (c *Cache) Get(key string) (data []byte, etag string, ok bool) {
	if !c.enabled {
		return nil, "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, "", false
	}
	return e.data, e.etag, true
}

// Set stores a value with a TTL and returns its ETag.
func (c *Cache) Set(key string, data []byte, ttl time.Duration) string {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag
	}
	c.mu.Lock()
	c.entries[key] = entry{data: data, etag: etag, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return etag
}

// Stats returns counts for the health endpoint.
func (c *Cache) Stats() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active, expired := 0, 0
	now := time.Now()
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			expired++
		} else {
			active++
		}
	}
	return map[string]any{
		"enabled": c.enabled,
		"active":  active,
		"expired": expired,
	}
}

// ComputeETag derives a strong ETag from response bytes.
func ComputeETag(data []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sha1.Sum(data)))
}

func (c *Cache) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.mu.Unlock()
	}
}
