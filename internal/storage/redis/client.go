package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(addr, password string, db int) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// GetBytes returns the cached value and whether the key was present.
// Transport errors are treated as a miss: the cache is best-effort.
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	return val, true
}

func (c *Client) SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) {
	_ = c.Set(ctx, key, val, ttl).Err()
}

func (c *Client) Invalidate(ctx context.Context, key string) {
	_ = c.Del(ctx, key).Err()
}

func (c *Client) Close() {
	_ = c.Client.Close()
}
