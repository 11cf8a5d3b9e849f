package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/archy/internal/domain/search"
)

const (
	// SearchSessionPrefix is the Redis key prefix for search sessions
	SearchSessionPrefix = "session:"
	// SearchSessionTTL is the default lifetime of an idle search session
	SearchSessionTTL = 30 * time.Minute
)

// SearchSessionStore keeps one JSON-encoded search session per user.
// Every Set refreshes the expiry.
type SearchSessionStore struct {
	client *redis.Client
	prefix string
}

func NewSearchSessionStore(client *redis.Client) *SearchSessionStore {
	return &SearchSessionStore{
		client: client,
		prefix: SearchSessionPrefix,
	}
}

func (s *SearchSessionStore) Set(ctx context.Context, session *search.Session, ttl time.Duration) error {
	if session == nil || session.UserID == "" {
		return errors.New("session user ID cannot be empty")
	}
	if ttl <= 0 {
		ttl = SearchSessionTTL
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal search session: %w", err)
	}

	if err := s.client.Set(ctx, s.buildKey(session.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store search session in redis: %w", err)
	}
	return nil
}

func (s *SearchSessionStore) Get(ctx context.Context, userID string) (*search.Session, error) {
	data, err := s.client.Get(ctx, s.buildKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get search session from redis: %w", err)
	}

	var session search.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrCorruptSession, err)
	}
	return &session, nil
}

func (s *SearchSessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.buildKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete search session: %w", err)
	}
	return nil
}

func (s *SearchSessionStore) Exists(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.buildKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check search session: %w", err)
	}
	return n > 0, nil
}

func (s *SearchSessionStore) buildKey(userID string) string {
	return s.prefix + userID
}
