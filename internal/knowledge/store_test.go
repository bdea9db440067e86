package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := NewSQLiteIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSQLiteIndexStoreAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Store(ctx, []Chunk{
		{Filename: "returns.md", Index: 0, Content: "return policy", Embedding: []float32{1, 0}},
		{Filename: "returns.md", Index: 1, Content: "refund timing", Embedding: []float32{0.9, 0.1}},
		{Filename: "shipping.md", Index: 0, Content: "delivery options", Embedding: []float32{0, 1}},
	}))

	n, err := idx.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "return policy", hits[0].Content)
	assert.Equal(t, "refund timing", hits[1].Content)
}

func TestSQLiteIndexByPosition(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Store(ctx, []Chunk{
		{Filename: "faq.md", Index: 0, Content: "q and a", Embedding: []float32{1}},
	}))

	chunk, err := idx.ByPosition(ctx, "faq.md", 0)
	require.NoError(t, err)
	require.NotNil(t, chunk)
	assert.Equal(t, "q and a", chunk.Content)

	missing, err := idx.ByPosition(ctx, "faq.md", 7)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteIndexReplacesExistingPosition(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Store(ctx, []Chunk{
		{Filename: "faq.md", Index: 0, Content: "old", Embedding: []float32{1}},
	}))
	require.NoError(t, idx.Store(ctx, []Chunk{
		{Filename: "faq.md", Index: 0, Content: "new", Embedding: []float32{1}},
	}))

	chunk, err := idx.ByPosition(ctx, "faq.md", 0)
	require.NoError(t, err)
	require.NotNil(t, chunk)
	assert.Equal(t, "new", chunk.Content)

	n, err := idx.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
