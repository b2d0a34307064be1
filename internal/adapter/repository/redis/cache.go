package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/leaveledger/internal/usecase"
)

// keyPrefix namespaces every key this service writes.
const keyPrefix = "leave:"

// Cache is a TTL-bound byte cache under one namespace. The employee
// directory uses it to spare the HR system repeated lookups.
type Cache struct {
	client    redis.UniversalClient
	namespace string
}

func NewCache(client redis.UniversalClient, namespace string) *Cache {
	return &Cache{client: client, namespace: keyPrefix + "cache:" + namespace}
}

func (c *Cache) key(k string) string { return c.namespace + k }

// Get returns usecase.ErrCacheMiss for absent or expired keys.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, usecase.ErrCacheMiss
	}
	return val, err
}

// Set refuses entries without expiry; stale directory data must age out.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache %s: ttl must be positive, got %s", key, ttl)
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
