package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client)
	ctx := context.Background()
	window := Window{Duration: time.Minute, Limit: 3}

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "archive-user", window)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "archive-user", window)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Denied attempts are still recorded.
	count, err := client.ZCard(ctx, windowKey("archive-user", time.Minute)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	ttl, err := client.TTL(ctx, windowKey("archive-user", time.Minute)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Minute)
}

func TestRedisRateLimiter_WindowSlides(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client)
	ctx := context.Background()
	window := Window{Duration: 200 * time.Millisecond, Limit: 1}

	allowed, err := limiter.Allow(ctx, "slider", window)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "slider", window)
	require.NoError(t, err)
	require.False(t, allowed)

	time.Sleep(300 * time.Millisecond)

	allowed, err = limiter.Allow(ctx, "slider", window)
	require.NoError(t, err)
	assert.True(t, allowed, "attempts older than the window no longer count")
}

func TestRedisRateLimiter_DisabledWindowSkipsRedis(t *testing.T) {
	// No server behind this client: a disabled window must not touch it.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { client.Close() })

	allowed, err := NewRedisRateLimiter(client).Allow(context.Background(), "anyone", Window{Duration: time.Minute})
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCommandLimiter_PerUser(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewCommandLimiter(NewRedisRateLimiter(client), 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.AllowCommand(ctx, "111")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.AllowCommand(ctx, "111")
	require.NoError(t, err)
	assert.False(t, allowed, "user 111 is over the limit")

	allowed, err = limiter.AllowCommand(ctx, "222")
	require.NoError(t, err)
	assert.True(t, allowed, "other users are not affected")
}

type stubLimiter struct {
	keys    []string
	windows []Window
	allow   bool
}

func (s *stubLimiter) Allow(_ context.Context, key string, window Window) (bool, error) {
	s.keys = append(s.keys, key)
	s.windows = append(s.windows, window)
	return s.allow, nil
}

func TestCommandLimiter_KeysByUser(t *testing.T) {
	stub := &stubLimiter{allow: true}
	limiter := NewCommandLimiter(stub, 6)

	allowed, err := limiter.AllowCommand(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, []string{"command:42"}, stub.keys)
	assert.Equal(t, Window{Duration: time.Minute, Limit: 6}, stub.windows[0])
}
