package causes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
)

// RedisCache keeps search results in Redis as JSON documents.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "giving:causes:"}
}

// Get returns cached causes for key. A miss is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]domain.Cause, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var causes []domain.Cause
	if err := json.Unmarshal(raw, &causes); err != nil {
		return nil, false, fmt.Errorf("decode cached causes: %w", err)
	}
	return causes, true, nil
}

// Set stores causes under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, causes []domain.Cause, ttl time.Duration) error {
	raw, err := json.Marshal(causes)
	if err != nil {
		return fmt.Errorf("encode causes: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
