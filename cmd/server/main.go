package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/blob"
	"github.com/iho/fintrack/internal/adapter/classifier"
	"github.com/iho/fintrack/internal/adapter/extractor"
	httpAdapter "github.com/iho/fintrack/internal/adapter/http"
	"github.com/iho/fintrack/internal/adapter/http/handler"
	"github.com/iho/fintrack/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/fintrack/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fintrack/internal/adapter/repository/redis"
	"github.com/iho/fintrack/internal/infrastructure/auth"
	"github.com/iho/fintrack/internal/infrastructure/config"
	"github.com/iho/fintrack/internal/infrastructure/logger"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/infrastructure/postgres"
	"github.com/iho/fintrack/internal/infrastructure/redis"
	"github.com/iho/fintrack/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return err
		}
	}

	// Connect to Redis. Without it idempotency keys and the team access
	// cache are disabled.
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, redis.ClientConfig{URL: cfg.RedisURL})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("REDIS_URL is empty, idempotency keys are disabled")
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBlobStore(blobs); err != nil {
			log.Warn().Err(err).Msg("failed to close blob store")
		}
	}()

	cls, err := newClassifier(ctx, cfg, log)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(log)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	statementRepo := postgresRepo.NewStatementRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	var teamRepo usecase.TeamRepository = postgresRepo.NewTeamRepository(pool)
	var idempotencyStore usecase.IdempotencyStore
	if redisClient != nil {
		teamRepo = redisRepo.NewTeamAccessCache(teamRepo, redisClient, cfg.TeamAccessTTL, log)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	// Initialize use cases
	statementUC := usecase.NewStatementUseCase(usecase.StatementUseCaseConfig{
		StatementRepo: statementRepo,
		TeamRepo:      teamRepo,
		Blobs:         blobs,
		Extractor:     extractor.New(blobs, log),
		Classifier:    cls,
		Reconciler:    usecase.NewReconciler(txnRepo, teamRepo, idGen, log),
		IDGen:         idGen,
		Recorder:      m,
		Logger:        log,
		MaxBytes:      cfg.UploadMaxBytes,
	})
	transactionUC := usecase.NewTransactionUseCase(txManager, retrier, txnRepo, teamRepo, log)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnLimit(m.RateLimitHits.Inc)
	go cleanupLimiters(ctx, rateLimiter, log)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		StatementHandler:   handler.NewStatementHandler(statementUC, cfg.UploadMaxBytes, log),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		AuthHandler:        handler.NewAuthHandler(),
		TokenVerifier:      auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Metrics:            m,
		MetricsHandler:     promhttp.Handler(),
		Logger:             log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("classifier", cfg.ClassifierProvider).Str("blob_backend", cfg.BlobBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (usecase.BlobStore, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendLocal:
		store, err := blob.NewLocal(cfg.BlobLocalDir)
		if err != nil {
			return nil, fmt.Errorf("open local blob store: %w", err)
		}
		return store, nil
	case config.BlobBackendGCS:
		store, err := blob.NewGCS(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("open gcs bucket: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown BLOB_BACKEND %q", config.ErrInvalidConfig, cfg.BlobBackend)
	}
}

// closeBlobStore releases the client held by a remote blob backend.
func closeBlobStore(store usecase.BlobStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func newClassifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (usecase.Classifier, error) {
	clsCfg := classifier.Config{
		Model:       cfg.ClassifierModel,
		MaxTokens:   cfg.ClassifierMaxTokens,
		Temperature: cfg.ClassifierTemperature,
		Timeout:     cfg.ClassifierTimeout,
	}

	switch cfg.ClassifierProvider {
	case config.ClassifierOpenAI:
		return classifier.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, clsCfg, log), nil
	case config.ClassifierGemini:
		gemini, err := classifier.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL, clsCfg, log)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return gemini, nil
	default:
		return nil, fmt.Errorf("%w: unknown CLASSIFIER_PROVIDER %q", config.ErrInvalidConfig, cfg.ClassifierProvider)
	}
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterMaxIdle); n > 0 {
				log.Debug().Int("removed", n).Msg("removed idle rate limiters")
			}
		}
	}
}
