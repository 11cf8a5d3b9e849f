package ratelimit

import (
	"context"
	"time"
)

// Window is a sliding window of at most Limit attempts per Duration.
// A non-positive Limit disables it.
type Window struct {
	Duration time.Duration
	Limit    int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, window Window) (bool, error)
}

// CommandLimiter throttles the expensive chat commands per user.
type CommandLimiter struct {
	limiter RateLimiter
	window  Window
}

func NewCommandLimiter(limiter RateLimiter, perMinute int) *CommandLimiter {
	return &CommandLimiter{
		limiter: limiter,
		window:  Window{Duration: time.Minute, Limit: perMinute},
	}
}

func (c *CommandLimiter) AllowCommand(ctx context.Context, userID string) (bool, error) {
	return c.limiter.Allow(ctx, commandKey(userID), c.window)
}

func commandKey(userID string) string {
	return "command:" + userID
}
