package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"model-eval/cmd/api/auth"
	"model-eval/cmd/api/handlers"
	"model-eval/cmd/api/router"
	"model-eval/config"
	"model-eval/db"
	"model-eval/eventbus"
	"model-eval/internal/logger"
	"model-eval/models"
	"model-eval/parser"
	"model-eval/providers"
	"model-eval/ratelimit"
	"model-eval/repositories"
	"model-eval/repositories/memory"
	"model-eval/services"
	"model-eval/trace"
)

// @title           Model Evaluation API
// @version         1.0
// @description     Store prompts and compare LLM provider responses, latency, tokens and cost
// @BasePath        /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Log.Errorf("storage init failed: %v", err)
		os.Exit(1)
	}
	defer store.close()

	bus := openEventBus(ctx, cfg.Kafka)
	defer bus.Close()

	limiter, closeLimiter := openLimiter(ctx, cfg)
	defer closeLimiter()

	authenticator, err := newAuthenticator(cfg)
	if err != nil {
		logger.Log.Errorf("auth init failed: %v", err)
		os.Exit(1)
	}

	registry := providers.NewRegistryFromConfig(ctx, cfg.Providers)
	importer := parser.NewImporter(cfg.Import.Timeout, cfg.Import.MaxBytes)

	engine := router.New(router.Deps{
		Prompts:       services.NewPromptService(store.prompts, importer, bus),
		Evaluations:   services.NewEvaluationService(store.prompts, store.evaluations, registry, bus),
		Providers:     services.NewProviderService(catalog(cfg.Providers), registry),
		Authenticator: authenticator,
		Limiter:       limiter,
		Health:        store.ping,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withCORS(engine, cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.InfoWithFields("server listening", logger.Fields{
			"addr":    srv.Addr,
			"env":     cfg.Env,
			"storage": cfg.Storage.Driver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("server shutdown: %v", err)
	}
}

type storage struct {
	prompts     services.PromptStore
	evaluations services.EvaluationStore
	ping        handlers.Pinger
	close       func()
}

// openStorage 는 storage.driver 설정에 따라 mongo 또는 인메모리 저장소를 연다.
func openStorage(ctx context.Context, cfg config.AppConfig) (*storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logger.Log.Warn("using in-memory storage, data is lost on restart")
		s := memory.NewStore()
		return &storage{prompts: s.Prompts(), evaluations: s.Evaluations(), close: func() {}}, nil
	case "mongo", "":
		if err := db.Init(ctx, cfg.Mongo); err != nil {
			return nil, err
		}
		database := db.Database()
		return &storage{
			prompts:     repositories.NewPromptRepository(database),
			evaluations: repositories.NewEvaluationRepository(database),
			ping: func(ctx context.Context) error {
				return db.Client().Ping(ctx, nil)
			},
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := db.Disconnect(ctx); err != nil {
					logger.Log.Errorf("mongo disconnect: %v", err)
				}
			},
		}, nil
	default:
		return nil, errors.New("unknown storage driver: " + cfg.Storage.Driver)
	}
}

func openEventBus(ctx context.Context, cfg config.KafkaConfig) eventbus.Publisher {
	if cfg.BootstrapServers == "" {
		return eventbus.NoopBus{}
	}
	if err := eventbus.EnsureTopics(ctx, cfg.BootstrapServers, 1, eventbus.AllTopics...); err != nil {
		logger.Log.Warnf("kafka topic setup failed: %v", err)
	}
	bus, err := eventbus.NewKafkaEventBus(cfg.BootstrapServers, cfg.ClientID)
	if err != nil {
		logger.Log.Warnf("kafka producer init failed, events disabled: %v", err)
		return eventbus.NoopBus{}
	}
	return bus
}

// openLimiter 는 redis 주소가 있으면 분산 제한기를, 없거나 연결에 실패하면 인메모리 제한기를 쓴다.
func openLimiter(ctx context.Context, cfg config.AppConfig) (ratelimit.Limiter, func()) {
	rl := cfg.RateLimit
	if cfg.Redis.Address == "" {
		return ratelimit.NewMemoryLimiter(rl.MaxRequests, rl.Window), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.Warnf("redis unavailable, falling back to in-memory rate limit: %v", err)
		_ = client.Close()
		return ratelimit.NewMemoryLimiter(rl.MaxRequests, rl.Window), func() {}
	}
	return ratelimit.NewRedisLimiter(client, rl.MaxRequests, rl.Window), func() { _ = client.Close() }
}

func newAuthenticator(cfg config.AppConfig) (*auth.Authenticator, error) {
	allowDev := cfg.IsDevelopment() && cfg.Auth.AllowDevTokens
	manager, err := auth.NewJWTManager(cfg.Auth)
	if err != nil {
		if !allowDev {
			return nil, err
		}
		logger.Log.Warn("JWT_SECRET not set, only development tokens are accepted")
	}
	return auth.NewAuthenticator(manager, allowDev), nil
}

func catalog(cfg config.ProvidersConfig) map[models.Provider]services.ProviderModels {
	return map[models.Provider]services.ProviderModels{
		models.ProviderOpenAI:    {Models: cfg.OpenAI.Models, DefaultModel: cfg.OpenAI.DefaultModel},
		models.ProviderAnthropic: {Models: cfg.Anthropic.Models, DefaultModel: cfg.Anthropic.DefaultModel},
		models.ProviderGoogle:    {Models: cfg.Google.Models, DefaultModel: cfg.Google.DefaultModel},
	}
}

func withCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{
			trace.HeaderRequestID, trace.HeaderSpanID,
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After",
		},
	}).Handler(h)
}
