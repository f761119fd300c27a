package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/backend"
	"github.com/kailas-cloud/shopassist/internal/config"
	"github.com/kailas-cloud/shopassist/internal/domain"
	logpkg "github.com/kailas-cloud/shopassist/internal/logger"
	"github.com/kailas-cloud/shopassist/internal/metrics"
	"github.com/kailas-cloud/shopassist/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/shopassist/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/shopassist/internal/transport/openai"
	assistantuc "github.com/kailas-cloud/shopassist/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/shopassist/internal/usecase/health"
	"github.com/kailas-cloud/shopassist/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shopassist API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := logpkg.ContextWithLogger(context.Background(), logger)

	store, err := backend.Open(ctx, &cfg)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to record store")

	// Empty catalogs are created so the service answers before the first load.
	if err := store.Schema.EnsureSchema(ctx, false); err != nil {
		logger.Fatal("Failed to ensure schema", zap.Error(err))
	}

	metrics.RegisterServiceMetrics()

	// Leave an interface nil (never a typed nil pointer) when a provider has
	// no key: the assistant then answers with the apology.
	var embedder domain.Embedder
	if cfg.Embedding.APIKey != "" {
		embedder = buildQueryEmbedder(&cfg, store)
	} else {
		logger.Warn("Embedding API key is not set; questions will fail until it is configured")
	}

	var completer domain.Completer
	var completionHealth healthuc.ProviderChecker
	if cfg.Completion.APIKey != "" {
		c := openaiTransport.NewCompleter(openaiTransport.CompleterConfig{
			APIKey:      cfg.Completion.APIKey,
			BaseURL:     cfg.Completion.BaseURL,
			Model:       cfg.Completion.Model,
			Temperature: *cfg.Completion.Temperature,
			MaxTokens:   cfg.Completion.MaxTokens,
		})
		completer, completionHealth = c, c
	} else {
		logger.Warn("Completion API key is not set; questions will fail until it is configured")
	}

	var embeddingHealth healthuc.ProviderChecker
	if hc, ok := embedder.(domain.HealthChecker); ok {
		embeddingHealth = hc
	}

	assistant := assistantuc.New(assistantuc.Deps{
		Embedder:  embedder,
		Completer: completer,
		Searcher:  store.Searcher,
		Shops:     store.Shops,
		Knowledge: store.Knowledge,
	}, assistantuc.RetrievalConfig{
		ShopTopK:               cfg.Retrieval.ShopTopK,
		ShopMinSimilarity:      *cfg.Retrieval.ShopMinSimilarity,
		KnowledgeTopK:          cfg.Retrieval.KnowledgeTopK,
		KnowledgeMinSimilarity: *cfg.Retrieval.KnowledgeMinSimilarity,
	})

	health := healthuc.New(healthuc.Components{
		Database:   store.Pinger,
		Indexes:    store.Indexes,
		Embedding:  embeddingHealth,
		Completion: completionHealth,
	}, 3*time.Second)

	server := chiTransport.NewServer(assistant, health, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildQueryEmbedder assembles OpenAI -> Cached -> Instruction.
// The instruction is outermost so the cache key includes it.
func buildQueryEmbedder(cfg *config.Config, store *backend.Backend) domain.Embedder {
	var embedder domain.Embedder = openaiTransport.NewEmbedder(openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})

	if store.KV != nil && cfg.Embedding.CacheTTLSec > 0 {
		embedder = embcache.New(embedder, store.KV, store.Keys, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second)
	}

	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewQueryEmbedder(embedder, domain.Instruction(cfg.Embedding.QueryInstruction))
	}
	return embedder
}
