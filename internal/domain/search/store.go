package search

import (
	"context"
	"errors"
	"time"
)

// ErrCorruptSession is returned by a SessionStore when a stored session cannot
// be decoded. The caller discards it.
var ErrCorruptSession = errors.New("corrupt search session")

// SessionStore keeps at most one live session per user, with expiry.
type SessionStore interface {
	Set(ctx context.Context, s *Session, ttl time.Duration) error
	// Get returns nil, nil when the user has no live session.
	Get(ctx context.Context, userID string) (*Session, error)
	Delete(ctx context.Context, userID string) error
	Exists(ctx context.Context, userID string) (bool, error)
}

// Match is one semantic hit, best first.
type Match struct {
	MetadataID uint
	Score      float64
}

// Index is the semantic search index over archived ticket documents.
type Index interface {
	Upsert(ctx context.Context, metadataID uint, document string) error
	Query(ctx context.Context, text string, topK int) ([]Match, error)
}
