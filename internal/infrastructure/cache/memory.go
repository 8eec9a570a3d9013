package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nutrical/backend/internal/domain"
)

// MemoryCache is a thread-safe in-process cache with per-entry TTL.
// Values are stored as-is; callers type-assert what they put in.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a cache whose entries default to defaultTTL and whose
// expired entries are swept every cleanupInterval. A zero cleanupInterval
// disables the background sweep; expired entries are then dropped on read.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	value, ok := c.store.Get(key)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

// Set stores a value; a non-positive ttl uses the cache default
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.store.Get(key)
	return ok, nil
}

// Size returns the number of stored items, expired ones not yet swept included
func (c *MemoryCache) Size() int {
	return c.store.ItemCount()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.store.Flush()
}
