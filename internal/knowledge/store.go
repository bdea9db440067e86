package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteIndex implements VectorIndex with SQLite-based persistence. Search is
// a brute-force cosine scan, which is adequate for a support knowledge base
// of a few thousand chunks.
type SQLiteIndex struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteIndex opens (creating if needed) the chunk index under dataPath.
func NewSQLiteIndex(dataPath string) (*SQLiteIndex, error) {
	if dataPath == "" {
		dataPath = "./data"
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "chunks.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &SQLiteIndex{db: db}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return idx, nil
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		filename    TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content     TEXT NOT NULL,
		embedding   BLOB NOT NULL,
		PRIMARY KEY (filename, chunk_index)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Store saves chunks with their embeddings, replacing existing positions.
func (s *SQLiteIndex) Store(ctx context.Context, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (filename, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.Filename, chunk.Index, chunk.Content, embeddingJSON); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	return tx.Commit()
}

// Search finds the topK most similar chunks to a query embedding.
func (s *SQLiteIndex) Search(ctx context.Context, embedding []float32, topK int) ([]Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, chunk_index, content, embedding
		FROM chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	type scored struct {
		chunk Chunk
		score float64
	}

	var results []scored
	for rows.Next() {
		var chunk Chunk
		var embeddingJSON []byte
		if err := rows.Scan(&chunk.Filename, &chunk.Index, &chunk.Content, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal(embeddingJSON, &chunk.Embedding); err != nil {
			continue // Skip corrupted embeddings
		}
		results = append(results, scored{chunk: chunk, score: cosineSimilarity(embedding, chunk.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	chunks := make([]Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.chunk
	}
	return chunks, nil
}

// ByPosition fetches the exact chunk at (filename, index).
func (s *SQLiteIndex) ByPosition(ctx context.Context, filename string, index int) (*Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunk Chunk
	var embeddingJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT filename, chunk_index, content, embedding
		FROM chunks
		WHERE filename = ? AND chunk_index = ?
	`, filename, index).Scan(&chunk.Filename, &chunk.Index, &chunk.Content, &embeddingJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying chunk: %w", err)
	}
	if err := json.Unmarshal(embeddingJSON, &chunk.Embedding); err != nil {
		return nil, fmt.Errorf("decoding embedding: %w", err)
	}
	return &chunk, nil
}

// ChunkCount returns the number of stored chunks.
func (s *SQLiteIndex) ChunkCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

var _ VectorIndex = (*SQLiteIndex)(nil)

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
