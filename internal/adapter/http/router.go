package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eluss/chromabet/internal/adapter/http/handler"
	"github.com/eluss/chromabet/internal/adapter/http/middleware"
	"github.com/eluss/chromabet/internal/infrastructure/auth"
	"github.com/eluss/chromabet/internal/infrastructure/metrics"
	"github.com/eluss/chromabet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	UserHandler      *handler.UserHandler
	WagerHandler     *handler.WagerHandler
	RoundHandler     *handler.RoundHandler
	AdminHandler     *handler.AdminHandler
	StatsHandler     *handler.StatsHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", cfg.UserHandler.Register)
		r.Post("/auth/login", cfg.UserHandler.Login)

		r.Route("/rounds", func(r chi.Router) {
			r.Get("/current", cfg.RoundHandler.GetCurrent)
			r.Get("/", cfg.RoundHandler.ListRecent)
			r.Get("/{id}", cfg.RoundHandler.Get)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.JWTManager))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", cfg.UserHandler.Me)
				r.Post("/deposits", cfg.UserHandler.Deposit)
				r.Post("/withdrawals", cfg.UserHandler.Withdraw)
				r.Get("/transactions", cfg.UserHandler.ListTransactions)
			})

			r.Route("/wagers", func(r chi.Router) {
				// Placement is the one endpoint clients retry blindly after
				// a network failure, so it gets idempotency keys.
				if cfg.IdempotencyStore != nil {
					idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
					r.With(idempotency.Wrap).Post("/", cfg.WagerHandler.Place)
				} else {
					r.Post("/", cfg.WagerHandler.Place)
				}
				r.Get("/", cfg.WagerHandler.ListMine)
				r.Get("/{id}", cfg.WagerHandler.Get)
			})

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/admin/rounds/{id}/outcome", cfg.AdminHandler.ForceOutcome)
				r.Get("/admin/stats", cfg.StatsHandler.Summary)
				r.Get("/admin/stats/consistency", cfg.StatsHandler.Consistency)
			})
		})
	})

	return r
}
