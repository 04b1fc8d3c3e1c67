package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/config"
	"github.com/kapu/video-qna-go/internal/constants"
	"github.com/kapu/video-qna-go/internal/server"
	"github.com/kapu/video-qna-go/internal/service/ai"
	"github.com/kapu/video-qna-go/internal/service/cache"
	"github.com/kapu/video-qna-go/internal/service/database"
	"github.com/kapu/video-qna-go/internal/service/metadata"
	"github.com/kapu/video-qna-go/internal/service/rag"
	"github.com/kapu/video-qna-go/internal/service/suggest"
	"github.com/kapu/video-qna-go/internal/service/transcript"
)

// Container bundles the assembled service graph behind the HTTP server.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Server  *server.Server
	closers []func()
}

// Close tears down infrastructure connections in reverse build order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services. Heavy-weight initialization
// (cache, database, AI clients) happens here; partial failures roll back the
// connections already opened.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Optional cache. Services treat a nil cache as cache-off.
	var cacheSvc *cache.Service
	if cfg.Redis.Enabled {
		cacheSvc, err = cache.NewService(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
	}

	// One OpenAI client backs both the embedder and the chat provider.
	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.OpenAI.APIKey)}
	if cfg.OpenAI.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	openaiClient := openai.NewClient(clientOpts...)

	embedder := rag.NewOpenAIEmbedder(&openaiClient, cfg.OpenAI.EmbeddingModel, logger)

	// Vector storage: pgvector when Postgres is enabled, in-memory otherwise.
	var store rag.VectorStore
	if cfg.Postgres.Enabled {
		postgresSvc, pgErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", pgErr)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})

		if err = postgresSvc.EnsureSchema(ctx, embedder.Dimension()); err != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		store = rag.NewPostgresStore(postgresSvc.GetDB(), logger)
	} else {
		store = rag.NewMemoryStore()
		logger.Info("Using in-memory vector store")
	}

	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		OpenAIClient:   &openaiClient,
		OpenAIModel:    cfg.OpenAI.ChatModel,
		GeminiAPIKey:   cfg.Gemini.APIKey,
		GeminiModel:    cfg.Gemini.Model,
		EnableFallback: cfg.Gemini.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	httpClient := &http.Client{Timeout: constants.HTTPConfig.ClientTimeout}

	transcripts := transcript.NewFetcher(httpClient, cacheSvc, nil, logger)
	titles := metadata.NewScraper(httpClient, cacheSvc, logger)

	pipeline := rag.NewPipeline(transcripts, titles, embedder, store, modelManager, cacheSvc, logger)

	suggester, err := suggest.NewService(ctx, cfg.YouTube.APIKey, cacheSvc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestions service: %w", err)
	}

	srv := server.New(pipeline, suggester, cfg.Server.AllowedOrigins, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Server:  srv,
		closers: closers,
	}, nil
}
