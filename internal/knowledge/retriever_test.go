package knowledge

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

// fakeIndex serves Search hits from a fixed list and ByPosition from a
// (filename, index) map.
type fakeIndex struct {
	hits      []Chunk
	positions map[string]*Chunk
	searchErr error
}

func posKey(filename string, index int) string {
	return fmt.Sprintf("%s#%d", filename, index)
}

func (f *fakeIndex) Search(ctx context.Context, embedding []float32, topK int) ([]Chunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.hits) > topK {
		return f.hits[:topK], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) ByPosition(ctx context.Context, filename string, index int) (*Chunk, error) {
	return f.positions[posKey(filename, index)], nil
}

func indexOf(chunks ...Chunk) map[string]*Chunk {
	m := map[string]*Chunk{}
	for i := range chunks {
		c := chunks[i]
		m[posKey(c.Filename, c.Index)] = &c
	}
	return m
}

func TestRetrieveExpandsNeighbors(t *testing.T) {
	ctx := context.Background()
	c0 := Chunk{Filename: "returns.md", Index: 0, Content: "intro"}
	c1 := Chunk{Filename: "returns.md", Index: 1, Content: "policy"}
	c2 := Chunk{Filename: "returns.md", Index: 2, Content: "exceptions"}

	idx := &fakeIndex{
		hits:      []Chunk{c1},
		positions: indexOf(c0, c1, c2),
	}
	r := NewRetriever(idx, &fakeEmbedder{vec: []float32{1, 0}}, 3)

	got, err := r.Retrieve(ctx, "what is the return policy")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"intro", "policy", "exceptions"}, contents(got))
}

func TestRetrieveSkipsAbsentNeighbors(t *testing.T) {
	ctx := context.Background()
	c0 := Chunk{Filename: "shipping.md", Index: 0, Content: "only chunk"}

	idx := &fakeIndex{
		hits:      []Chunk{c0},
		positions: indexOf(c0),
	}
	r := NewRetriever(idx, &fakeEmbedder{vec: []float32{1}}, 3)

	// Index 0 has no predecessor and the file has no index 1; neither may
	// produce an error or a gap.
	got, err := r.Retrieve(ctx, "anything")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "only chunk", got[0].Content)
}

func TestRetrieveKeepsOverlapDuplicates(t *testing.T) {
	ctx := context.Background()
	c0 := Chunk{Filename: "faq.md", Index: 0, Content: "a"}
	c1 := Chunk{Filename: "faq.md", Index: 1, Content: "b"}
	c2 := Chunk{Filename: "faq.md", Index: 2, Content: "c"}

	// Hits on adjacent chunks: expansion windows overlap on every chunk.
	idx := &fakeIndex{
		hits:      []Chunk{c1, c2},
		positions: indexOf(c0, c1, c2),
	}
	r := NewRetriever(idx, &fakeEmbedder{vec: []float32{1}}, 3)

	got, err := r.Retrieve(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "b", "c"}, contents(got))
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	r := NewRetriever(&fakeIndex{}, &fakeEmbedder{err: assert.AnError}, 3)

	_, err := r.Retrieve(context.Background(), "anything")
	assert.Error(t, err)
}

func contents(chunks []Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Content)
	}
	return out
}
