package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ClosureIntentPrefix = "closure:"
	ClosureIntentTTL    = 10 * time.Minute
)

// ClosureIntentStore remembers that a user was just offered to close a channel.
type ClosureIntentStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClosureIntentStore(client *redis.Client, ttl time.Duration) *ClosureIntentStore {
	if ttl <= 0 {
		ttl = ClosureIntentTTL
	}
	return &ClosureIntentStore{client: client, ttl: ttl}
}

func (s *ClosureIntentStore) Set(ctx context.Context, channelID, userID string) error {
	if err := s.client.Set(ctx, s.buildKey(channelID, userID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store closure intent: %w", err)
	}
	return nil
}

// Consume removes the pending intent and reports whether there was one.
func (s *ClosureIntentStore) Consume(ctx context.Context, channelID, userID string) (bool, error) {
	n, err := s.client.Del(ctx, s.buildKey(channelID, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume closure intent: %w", err)
	}
	return n > 0, nil
}

func (s *ClosureIntentStore) buildKey(channelID, userID string) string {
	return ClosureIntentPrefix + channelID + ":" + userID
}
