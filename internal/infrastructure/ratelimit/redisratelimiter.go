package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit"

// RedisRateLimiter records every attempt in a sorted set scored by time, so the
// window slides instead of resetting on a boundary.
type RedisRateLimiter struct {
	client *redis.Client
}

func NewRedisRateLimiter(client *redis.Client) RateLimiter {
	return &RedisRateLimiter{client: client}
}

// Allow records the attempt even when it is denied, so a user who keeps
// retrying stays limited.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, window Window) (bool, error) {
	if window.Limit <= 0 || window.Duration <= 0 {
		return true, nil
	}

	now := time.Now()
	redisKey := windowKey(key, window.Duration)
	cutoff := now.Add(-window.Duration).UnixNano()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(cutoff, 10))
	seen := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	pipe.Expire(ctx, redisKey, window.Duration+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record attempt for %s: %w", key, err)
	}

	return seen.Val() < int64(window.Limit), nil
}

func windowKey(key string, d time.Duration) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, key, d)
}
