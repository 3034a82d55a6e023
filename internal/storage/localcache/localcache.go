package localcache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is the in-process fallback used when Redis is not configured.
type Cache struct {
	c *cache.Cache
}

func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		c: cache.New(defaultTTL, 2*defaultTTL),
	}
}

func (c *Cache) GetBytes(_ context.Context, key string) ([]byte, bool) {
	val, ok := c.c.Get(key)
	if !ok {
		return nil, false
	}

	b, ok := val.([]byte)

	return b, ok
}

func (c *Cache) SetBytes(_ context.Context, key string, val []byte, ttl time.Duration) {
	c.c.Set(key, val, ttl)
}

func (c *Cache) Invalidate(_ context.Context, key string) {
	c.c.Delete(key)
}
