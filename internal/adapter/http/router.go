package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/adapter/http/handler"
	"github.com/iho/creditledger/internal/adapter/http/middleware"
)

// ThrottleConfig bounds request admission for the account routes.
type ThrottleConfig struct {
	MaxInFlight    int
	MaxBacklog     int
	BacklogTimeout time.Duration
}

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler *handler.AccountHandler
	HealthHandler  *handler.HealthHandler
	LedgerHandler  *handler.LedgerHandler
	Logger         zerolog.Logger

	// Optional
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	Idempotency    *middleware.IdempotencyMiddleware
	Throttle       ThrottleConfig
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if cfg.Throttle.MaxInFlight > 0 {
			r.Use(chimiddleware.ThrottleBacklog(cfg.Throttle.MaxInFlight, cfg.Throttle.MaxBacklog, cfg.Throttle.BacklogTimeout))
		}
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Get("/statement", cfg.AccountHandler.Statement)
			r.With(idempotent(cfg.Idempotency)).Post("/transactions", cfg.AccountHandler.Transact)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}

func idempotent(m *middleware.IdempotencyMiddleware) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m.Wrap
}
