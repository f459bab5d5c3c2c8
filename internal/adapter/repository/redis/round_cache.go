package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoundCache implements usecase.RoundCache using Redis. The current-round
// payload is hot: every connected client polls it, so it is served from
// cache with a short TTL instead of hitting the database per request.
type RoundCache struct {
	client *redis.Client
	prefix string
}

// NewRoundCache creates a new RoundCache.
func NewRoundCache(client *redis.Client) *RoundCache {
	return &RoundCache{
		client: client,
		prefix: "round:",
	}
}

// Get retrieves a cached payload. A miss returns nil bytes and no error.
func (c *RoundCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores a payload with TTL.
func (c *RoundCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete removes a key.
func (c *RoundCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
