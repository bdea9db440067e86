// Command ingest builds the knowledge chunk index: it walks the knowledge
// base for markdown files, splits them into size-bounded chunks, embeds each
// chunk and stores the result in the sqlite index the retriever reads.
package main

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/cs-support-assistant/server/internal/agent/model"
	"github.com/cs-support-assistant/server/internal/core"
	"github.com/cs-support-assistant/server/internal/knowledge"
	logx "github.com/cs-support-assistant/server/pkg/logger"
)

type ingestConfig struct {
	Environment  core.Environment `envconfig:"APP_ENV" default:"development"`
	APIKey       string           `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL      string           `envconfig:"GEMINI_BASE_URL"`
	KnowledgeDir string           `envconfig:"KNOWLEDGE_BASE_DIR" default:"./knowledge_base"`

	Retrieval model.RetrievalConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg ingestConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})

	genaiCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		genaiCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, genaiCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	embedder := knowledge.NewGenAIEmbedder(client, cfg.Retrieval.EmbeddingModel)

	index, err := knowledge.NewSQLiteIndex(cfg.Retrieval.IndexPath)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to open chunk index")
	}
	defer index.Close()

	fileCount := 0
	chunkTotal := 0

	err = filepath.WalkDir(cfg.KnowledgeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(cfg.KnowledgeDir, path)
		if err != nil {
			relPath = d.Name()
		}

		pieces := knowledge.SplitMarkdown(string(text), cfg.Retrieval.ChunkSize)
		chunks := make([]knowledge.Chunk, 0, len(pieces))
		for i, piece := range pieces {
			embedding, err := embedder.Embed(ctx, piece)
			if err != nil {
				return err
			}
			chunks = append(chunks, knowledge.Chunk{
				Filename:  relPath,
				Index:     i,
				Content:   piece,
				Embedding: embedding,
			})
		}

		if err := index.Store(ctx, chunks); err != nil {
			return err
		}

		fileCount++
		chunkTotal += len(chunks)
		logx.Info().Str("file", relPath).Int("chunks", len(chunks)).Msg("Indexed file")
		return nil
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Ingest failed")
	}

	logx.Info().Int("files", fileCount).Int("chunks", chunkTotal).Msg("Ingest complete")
}
