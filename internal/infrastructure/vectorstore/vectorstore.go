// Package vectorstore implements the semantic ticket index on pgvector.
package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/archy/internal/domain/search"
	"github.com/orris-inc/archy/internal/shared/logger"
)

// Embedder turns text into a fixed-size vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// TicketEmbeddingModel is one document vector per ticket.
type TicketEmbeddingModel struct {
	MetadataID uint            `gorm:"primaryKey;autoIncrement:false"`
	Embedding  pgvector.Vector `gorm:"type:vector"`
	Document   string          `gorm:"type:text;not null"`
	UpdatedAt  time.Time
}

func (TicketEmbeddingModel) TableName() string {
	return "ticket_embeddings"
}

// PgVectorStore ranks tickets by cosine similarity; score is 1 - distance.
type PgVectorStore struct {
	db         *gorm.DB
	embedder   Embedder
	dimensions int
	queries    *lru.Cache[string, []float32]
	logger     logger.Interface
}

func NewPgVectorStore(db *gorm.DB, embedder Embedder, dimensions, queryCacheSize int, log logger.Interface) (*PgVectorStore, error) {
	if queryCacheSize <= 0 {
		queryCacheSize = 256
	}
	cache, err := lru.New[string, []float32](queryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	return &PgVectorStore{
		db:         db,
		embedder:   embedder,
		dimensions: dimensions,
		queries:    cache,
		logger:     log,
	}, nil
}

// SchemaStatements creates the extension and the embeddings table.
func SchemaStatements(dimensions int) []string {
	return []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ticket_embeddings (
    metadata_id BIGINT PRIMARY KEY REFERENCES ticket_metadata (id) ON DELETE CASCADE,
    embedding   vector(%d) NOT NULL,
    document    TEXT NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, dimensions),
	}
}

// EnsureSchema runs at startup when the vector index is enabled.
func (s *PgVectorStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range SchemaStatements(s.dimensions) {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to prepare vector schema: %w", err)
		}
	}
	return nil
}

func (s *PgVectorStore) Upsert(ctx context.Context, metadataID uint, document string) error {
	vec, err := s.embedder.Embed(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to embed ticket %d: %w", metadataID, err)
	}
	if err := s.checkDimensions(vec); err != nil {
		return err
	}

	row := TicketEmbeddingModel{
		MetadataID: metadataID,
		Embedding:  pgvector.NewVector(vec),
		Document:   document,
		UpdatedAt:  time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "metadata_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "document", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	s.logger.Debugw("ticket embedding upserted", "metadata_id", metadataID)
	return nil
}

func (s *PgVectorStore) Query(ctx context.Context, text string, topK int) ([]search.Match, error) {
	vec, err := s.queryVector(ctx, text)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		MetadataID uint
		Score      float64
	}
	v := pgvector.NewVector(vec)
	err = s.db.WithContext(ctx).
		Raw(`SELECT metadata_id, 1 - (embedding <=> ?) AS score
FROM ticket_embeddings
ORDER BY embedding <=> ?
LIMIT ?`, v, v, topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}

	matches := make([]search.Match, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, search.Match{MetadataID: r.MetadataID, Score: r.Score})
	}
	return matches, nil
}

// queryVector embeds text once per distinct normalized query.
func (s *PgVectorStore) queryVector(ctx context.Context, text string) ([]float32, error) {
	key := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if vec, ok := s.queries.Get(key); ok {
		return vec, nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if err := s.checkDimensions(vec); err != nil {
		return nil, err
	}
	s.queries.Add(key, vec)
	return vec, nil
}

func (s *PgVectorStore) checkDimensions(vec []float32) error {
	if s.dimensions > 0 && len(vec) != s.dimensions {
		return fmt.Errorf("embedding has %d dimensions, expected %d", len(vec), s.dimensions)
	}
	return nil
}

// NoopIndex stands in when semantic search is disabled; every query is empty,
// so search falls back to keywords.
type NoopIndex struct{}

func (NoopIndex) Upsert(context.Context, uint, string) error { return nil }

func (NoopIndex) Query(context.Context, string, int) ([]search.Match, error) { return nil, nil }
