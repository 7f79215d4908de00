package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/http/handler"
	"github.com/iho/fintrack/internal/adapter/http/middleware"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	StatementHandler   *handler.StatementHandler
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler
	AuthHandler        *handler.AuthHandler
	TokenVerifier      middleware.TokenVerifier
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	RateLimiter        *middleware.RateLimiter
	Metrics            *metrics.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		var onAuthFailure middleware.AuthFailureFunc
		if cfg.Metrics != nil {
			onAuthFailure = func(reason string) {
				cfg.Metrics.AuthFailures.WithLabelValues(reason).Inc()
			}
		}
		r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, onAuthFailure))

		// Idempotency middleware for mutating requests, scoped to the acting user
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			if cfg.Metrics != nil {
				idempotencyMiddleware.OnReplay(cfg.Metrics.IdempotentReplay.Inc)
			}
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Get("/me", cfg.AuthHandler.Me)

		// Statements
		r.Post("/statements", cfg.StatementHandler.Upload)
		r.Get("/statements", cfg.StatementHandler.List)
		r.Get("/statements/{id}/download", cfg.StatementHandler.Download)
		r.Delete("/statements/{id}", cfg.StatementHandler.Delete)

		// Transactions
		r.Get("/transactions", cfg.TransactionHandler.List)
		r.Post("/transactions/bulk-delete", cfg.TransactionHandler.BulkDelete)
	})

	return r
}
