package redis

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a thin JSON cache with versioned keys. A version counter per
// logical collection is bumped on every write, so stale entries simply
// stop being addressed and expire on their own.
type Cache struct{}

func NewCache() *Cache {
	return &Cache{}
}

// Get unmarshals the cached value into dest. Returns false on miss or
// when redis is unavailable.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if RedisClient == nil {
		return false, nil
	}

	raw, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if RedisClient == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, key, raw, ttl).Err()
}

// GetVersion returns the current version counter for a key, 0 when unset.
func (c *Cache) GetVersion(ctx context.Context, key string) int64 {
	if RedisClient == nil {
		return 0
	}

	v, err := RedisClient.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return v
}

// IncrementVersion bumps the version counter, invalidating derived keys.
func (c *Cache) IncrementVersion(ctx context.Context, key string) {
	if RedisClient == nil {
		return
	}
	RedisClient.Incr(ctx, key)
}
