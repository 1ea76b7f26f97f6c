package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"research-assistant/internal/adapter/embedding"
	"research-assistant/internal/adapter/httpapi"
	"research-assistant/internal/adapter/llm"
	"research-assistant/internal/adapter/memory"
	"research-assistant/internal/adapter/repository"
	"research-assistant/internal/adapter/vectorstore"
	"research-assistant/internal/domain"
	"research-assistant/internal/infra"
	"research-assistant/internal/infra/config"
	"research-assistant/internal/infra/logger"
	"research-assistant/internal/usecase"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New()
	slog.SetDefault(log)

	// 3. Initialize DB
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	dbPool, err := infra.NewPostgresDB(context.Background(), dsn)
	if err != nil {
		log.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Initialize Adapters
	paperRepo := repository.NewPaperRepository(dbPool, cfg.PapersTable)
	embedder := embedding.NewCachedEmbedder(
		embedding.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, cfg.EmbeddingTimeout))
	store := vectorstore.NewPGVectorStore(embedder, paperRepo)

	geminiClient, err := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SafetySettings, log)
	if err != nil {
		log.Error("failed to initialize llm client", "error", err)
		os.Exit(1)
	}

	conversations := newConversationStore(cfg, log)

	// 5. Initialize Usecases
	retrieveUsecase := usecase.NewRetrieveUsecase(store, log)
	promptBuilder := usecase.NewResearchPromptBuilder(cfg.MaxContextLength)
	answerUsecase := usecase.NewAnswerUsecase(retrieveUsecase, promptBuilder, geminiClient, conversations, log)

	// 6. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0),
			Burst:     cfg.RateLimitPerMinute,
			ExpiresIn: 3 * time.Minute,
		})))

	metrics := httpapi.NewMetrics()
	e.Use(metrics.Middleware())

	// 7. Initialize Handlers
	handler := httpapi.NewHandler(
		answerUsecase,
		conversations,
		store,
		cfg.GeminiModel,
		cfg.EmbeddingModel,
		cfg.TopKDefault,
		metrics,
		log,
	)
	handler.Register(e)

	// 8. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("starting_server", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}

// newConversationStore connects to Redis when a URL is configured and
// falls back to the in-process store otherwise. A Redis connection
// failure also falls back, with a warning, so the service still starts.
func newConversationStore(cfg *config.Config, log *slog.Logger) domain.ConversationStore {
	if cfg.RedisURL == "" {
		log.Info("conversation_store_selected", "backend", "in-memory")
		return memory.NewInMemoryStore()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisStore, err := memory.NewRedisStore(ctx, cfg.RedisURL, time.Duration(cfg.ConversationTTL)*time.Second)
	if err != nil {
		log.Warn("redis_unavailable_falling_back", "error", err.Error())
		return memory.NewInMemoryStore()
	}

	log.Info("conversation_store_selected", "backend", "redis")
	return redisStore
}
