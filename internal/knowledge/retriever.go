package knowledge

import (
	"context"
	"fmt"

	logx "github.com/cs-support-assistant/server/pkg/logger"
)

// Retriever performs the similarity lookup and widens each hit with its
// immediate sequential neighbors from the same source file. Indexed chunks
// are short, which is good for retrieval precision but can truncate the
// answering context; pulling index-1 and index+1 restores continuity.
type Retriever struct {
	index    VectorIndex
	embedder Embedder
	topK     int
}

func NewRetriever(index VectorIndex, embedder Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{index: index, embedder: embedder, topK: topK}
}

// Retrieve returns the expanded chunk set for a query, in retrieval order.
// Adjacency windows of nearby hits can overlap; duplicates are kept so the
// result mirrors exactly what was fetched (the count is logged instead).
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Chunk, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	var expanded []Chunk
	seen := map[string]int{}
	for _, hit := range hits {
		for _, i := range []int{hit.Index - 1, hit.Index, hit.Index + 1} {
			if i < 0 {
				continue
			}
			chunk, err := r.index.ByPosition(ctx, hit.Filename, i)
			if err != nil {
				return nil, fmt.Errorf("neighbor lookup %s[%d]: %w", hit.Filename, i, err)
			}
			if chunk == nil {
				continue
			}
			seen[fmt.Sprintf("%s#%d", chunk.Filename, chunk.Index)]++
			expanded = append(expanded, *chunk)
		}
	}

	duplicates := 0
	for _, n := range seen {
		if n > 1 {
			duplicates += n - 1
		}
	}
	if duplicates > 0 {
		logx.Debug().
			Int("hits", len(hits)).
			Int("chunks", len(expanded)).
			Int("duplicates", duplicates).
			Msg("Adjacency windows overlap; duplicate passages kept")
	}

	return expanded, nil
}
