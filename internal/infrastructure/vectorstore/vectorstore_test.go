package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/archy/internal/domain/search"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type countingEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (e *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	return e.vec, e.err
}

func TestQueryVector_CachesNormalizedQueries(t *testing.T) {
	emb := &countingEmbedder{vec: []float32{1, 0, 0}}
	store, err := NewPgVectorStore(nil, emb, 3, 8, logger.NewNopLogger())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.queryVector(ctx, "Roof  Leak")
	require.NoError(t, err)
	_, err = store.queryVector(ctx, "roof leak")
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls)

	_, err = store.queryVector(ctx, "boiler")
	require.NoError(t, err)
	assert.Equal(t, 2, emb.calls)
}

func TestQueryVector_DoesNotCacheFailures(t *testing.T) {
	emb := &countingEmbedder{err: errors.New("quota")}
	store, err := NewPgVectorStore(nil, emb, 3, 8, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = store.queryVector(context.Background(), "roof")
	assert.Error(t, err)
	_, err = store.queryVector(context.Background(), "roof")
	assert.Error(t, err)
	assert.Equal(t, 2, emb.calls)
}

func TestQueryVector_RejectsWrongDimensions(t *testing.T) {
	store, err := NewPgVectorStore(nil, &countingEmbedder{vec: []float32{1, 2}}, 3, 8, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = store.queryVector(context.Background(), "roof")
	assert.ErrorContains(t, err, "expected 3")
}

func TestSchemaStatements(t *testing.T) {
	stmts := SchemaStatements(1536)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], "vector(1536)")
	assert.Contains(t, stmts[1], "REFERENCES ticket_metadata (id)")
}

func TestNoopIndex(t *testing.T) {
	var idx search.Index = NoopIndex{}
	require.NoError(t, idx.Upsert(context.Background(), 1, "doc"))
	matches, err := idx.Query(context.Background(), "roof", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
