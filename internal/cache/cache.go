// Package cache wraps ristretto for the unauthenticated read endpoints.
// Mutations clear the whole cache; entries otherwise age out by TTL.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func New(maxCost int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) Get(key string) (any, bool) { return c.c.Get(key) }

func (c *Cache) Set(key string, val any) { c.c.SetWithTTL(key, val, 1, c.ttl) }

// Clear drops every entry. List keys vary by requested limit and ristretto
// cannot delete by prefix, so trade mutations flush the cache wholesale.
func (c *Cache) Clear() { c.c.Clear() }

// Wait blocks until buffered writes have been applied.
func (c *Cache) Wait() { c.c.Wait() }
