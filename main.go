package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/cs-support-assistant/server/internal/agent/graph"
	"github.com/cs-support-assistant/server/internal/agent/graph/tools"
	"github.com/cs-support-assistant/server/internal/agent/model"
	"github.com/cs-support-assistant/server/internal/agent/repo"
	"github.com/cs-support-assistant/server/internal/core"
	"github.com/cs-support-assistant/server/internal/knowledge"
	"github.com/cs-support-assistant/server/internal/server"
	"github.com/cs-support-assistant/server/internal/store"
	logx "github.com/cs-support-assistant/server/pkg/logger"
	pkgredis "github.com/cs-support-assistant/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`
	ListenAddr  string           `envconfig:"LISTEN_ADDR" default:":8000"`

	// Infrastructure
	Redis    pkgredis.Config
	Database store.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Classifier   model.ClassifierModelConfig
	Response     model.ResponseModelConfig
	Retrieval    model.RetrievalConfig
	Policy       model.PolicyConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: envCfg.Environment})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()

	pg, err := envCfg.Database.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pg.Close()

	chunkIndex, err := knowledge.NewSQLiteIndex(envCfg.Retrieval.IndexPath)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to open chunk index")
	}
	defer chunkIndex.Close()

	genaiCfg := &genai.ClientConfig{
		APIKey:  envCfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if envCfg.BaseURL != "" {
		genaiCfg.HTTPOptions.BaseURL = envCfg.BaseURL
	}
	genaiClient, err := genai.NewClient(ctx, genaiCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	embedder := knowledge.NewGenAIEmbedder(genaiClient, envCfg.Retrieval.EmbeddingModel)
	retriever := knowledge.NewRetriever(chunkIndex, embedder, envCfg.Retrieval.TopK)

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", envCfg.Conversation.TTL).Err(err).Msg("Invalid CONVERSATION_TTL")
	}

	runner, err := graph.BuildSupportGraph(ctx, graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		ClassifierModel:  envCfg.Classifier,
		ResponseModel:    envCfg.Response,
		Conversation:     envCfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		ToolDeps: &tools.Deps{
			Store:     pg,
			Retriever: retriever,
			Policy:    envCfg.Policy,
		},
		Retriever: retriever,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build support graph")
	}

	srv := server.New(runner)
	logx.Info().Str("addr", envCfg.ListenAddr).Msg("Starting support assistant")
	if err := srv.Start(envCfg.ListenAddr); err != nil {
		logx.Fatal().Err(err).Msg("Server stopped")
	}
}
