// Package cache provides an in-memory TTL cache for upstream responses.
// It wraps patrickmn/go-cache and collapses concurrent loads of the same key.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores values with a default time-to-live.
type Cache struct {
	store *gocache.Cache

	mu      sync.Mutex
	loading map[string]*call
}

// call is an in-flight load shared by concurrent callers.
type call struct {
	done  chan struct{}
	value any
	err   error
}

// New creates a cache. cleanupInterval is how often expired items are purged.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store:   gocache.New(defaultTTL, cleanupInterval),
		loading: make(map[string]*call),
	}
}

// Get retrieves a value.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// Delete removes a value.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes every value.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of cached values, expired ones included until cleanup.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// GetOrLoad returns the cached value for key or calls load once, however many
// callers ask at the same time. Only successful loads for which keep reports
// true are cached; a nil keep caches every successful load.
func (c *Cache) GetOrLoad(key string, load func() (any, error), keep func(any) bool) (any, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	if inflight, ok := c.loading[key]; ok {
		c.mu.Unlock()
		<-inflight.done
		return inflight.value, inflight.err
	}
	cl := &call{done: make(chan struct{})}
	c.loading[key] = cl
	c.mu.Unlock()

	cl.value, cl.err = load()
	if cl.err == nil && (keep == nil || keep(cl.value)) {
		c.Set(key, cl.value)
	}

	c.mu.Lock()
	delete(c.loading, key)
	c.mu.Unlock()
	close(cl.done)

	return cl.value, cl.err
}
