// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     cache
// Description: Thread-safe in-memory cache with TTL and a size bound
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"
)

// Entry represents a cached item with expiration
type Entry[V any] struct {
	Value      V
	Expiration time.Time
}

// IsExpired checks if the entry has expired
func (e *Entry[V]) IsExpired(now time.Time) bool {
	if e.Expiration.IsZero() {
		return false // Never expires
	}
	return now.After(e.Expiration)
}

// Cache is a thread-safe in-memory cache with TTL support
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]*Entry[V]
	maxItems int
	ttl      time.Duration

	hits   atomic.Int64
	misses atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

// Config holds cache configuration
type Config struct {
	MaxItems        int
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems:        1024,
		TTL:             10 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// Stats describes cache usage
type Stats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// New creates a new cache and starts its cleanup loop. Close stops it.
func New[V any](cfg Config) *Cache[V] {
	def := DefaultConfig()
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	c := &Cache[V]{
		items:    make(map[string]*Entry[V]),
		maxItems: cfg.MaxItems,
		ttl:      cfg.TTL,
		stop:     make(chan struct{}),
	}
	go c.cleanupLoop(cfg.CleanupInterval)
	return c
}

// Key hashes parts into a fixed-size cache key
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a value from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, exists := c.items[key]
	c.mu.RUnlock()

	if exists && entry.IsExpired(time.Now()) {
		c.mu.Lock()
		if cur, ok := c.items[key]; ok && cur == entry {
			delete(c.items, key)
		}
		c.mu.Unlock()
		exists = false
	}

	if !exists {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL; ttl <= 0 never expires
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, replacing := c.items[key]; !replacing && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.items[key] = &Entry[V]{Value: value, Expiration: exp}
}

// GetOrSet returns the cached value for key or stores the result of fn.
// Errors from fn are returned and not cached.
func (c *Cache[V]) GetOrSet(key string, fn func() (V, error)) (V, error) {
	if val, ok := c.Get(key); ok {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		return val, err
	}
	c.Set(key, val)
	return val, nil
}

// Delete removes a value from the cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*Entry[V])
}

// Size returns the number of items in the cache
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() Stats {
	s := Stats{
		Size:   c.Size(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	}
	return s
}

// Close stops the cleanup loop
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// evictOldest removes the entry closest to expiry (must be called with lock held)
func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.items {
		if oldestKey == "" || entry.Expiration.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.Expiration
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries
func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.items {
		if entry.IsExpired(now) {
			delete(c.items, key)
		}
	}
}
