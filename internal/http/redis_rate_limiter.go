package httpx

import (
	"context"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	redisRatePrefix  = "giving:ratelimit:"
	redisRateTimeout = 250 * time.Millisecond
)

type redisRateLimiter struct {
	client redis.Cmdable
	logger *slog.Logger
}

// NewRedisRateLimiter constructs a limiter that shares windows across API
// replicas through Redis. The client must already be reachable; Close does
// not close it.
func NewRedisRateLimiter(client *redis.Client, logger *slog.Logger) RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisRateLimiter{client: client, logger: logger.With("component", "ratelimit")}
}

// Allow counts the request in a single MULTI round trip. Redis failures fail
// open: a cache outage must not block contributions.
func (rl *redisRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	if window <= 0 {
		window = rateWindowDefault
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisRateTimeout)
	defer cancel()

	redisKey := redisRatePrefix + key
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, window)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		rl.logger.Error("redis rate limiter error", "key", key, "error", err)
		return rateDecision{allowed: true}
	}

	count := int(incr.Val())
	remaining := ttl.Val()
	if remaining <= 0 {
		remaining = window
	}
	return rateDecision{
		allowed:   count <= limit,
		count:     count,
		windowEnd: time.Now().Add(remaining),
	}
}

func (rl *redisRateLimiter) Close() {}
