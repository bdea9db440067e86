// Package knowledge implements the knowledge-base retrieval path: a
// sqlite-backed chunk index with cosine-similarity search, adjacency
// expansion of hits, and answer generation over the retrieved context.
package knowledge

import "context"

// Chunk is a fixed-size slice of a source document, addressed by
// (filename, sequential index) and embedded for similarity search.
type Chunk struct {
	Filename  string
	Index     int
	Content   string
	Embedding []float32
}

// Embedder converts free text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the similarity-search boundary: top-K search plus an
// exact-position lookup used for neighbor expansion.
type VectorIndex interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]Chunk, error)
	// ByPosition returns the chunk at (filename, index), or (nil, nil)
	// when no chunk exists at that position.
	ByPosition(ctx context.Context, filename string, index int) (*Chunk, error)
}
