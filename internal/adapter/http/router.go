package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/ourllet/internal/adapter/http/handler"
	"github.com/iho/ourllet/internal/adapter/http/middleware"
	"github.com/iho/ourllet/internal/infrastructure/metrics"
	"github.com/iho/ourllet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler       *handler.AuthHandler
	EntryHandler      *handler.EntryHandler
	FixedEntryHandler *handler.FixedEntryHandler
	LedgerHandler     *handler.LedgerHandler
	SettlementHandler *handler.SettlementHandler
	HealthHandler     *handler.HealthHandler

	Sessions   middleware.SessionVerifier
	Users      middleware.UserLoader
	Membership middleware.MembershipChecker

	// Optional.
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	RateLimiter        *middleware.RateLimiter
	Metrics            *metrics.Metrics
	MetricsGatherer    prometheus.Gatherer
	Logger             zerolog.Logger
	CORSAllowedOrigins []string
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
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"X-Idempotency-Replay"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.AuthMiddleware(cfg.Sessions, cfg.Users)
	requireMember := middleware.RequireLedgerMember(cfg.Membership)

	idempotent := func(next http.Handler) http.Handler { return next }
	if cfg.IdempotencyStore != nil {
		idempotent = middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.With(cfg.RateLimiter.Limit).Post("/send-code", cfg.AuthHandler.SendCode)
			} else {
				r.Post("/send-code", cfg.AuthHandler.SendCode)
			}
			r.Post("/verify", cfg.AuthHandler.Verify)
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/google", cfg.AuthHandler.Google)
			r.Get("/google/login", cfg.AuthHandler.GoogleLogin)
			r.Get("/google/callback", cfg.AuthHandler.GoogleCallback)
			r.With(requireAuth).Get("/me", cfg.AuthHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/entries", func(r chi.Router) {
				r.With(requireMember).Get("/", cfg.EntryHandler.List)
				r.Get("/categories", cfg.EntryHandler.Categories)
				r.With(idempotent).Post("/", cfg.EntryHandler.Create)
				r.With(idempotent).Post("/import", cfg.EntryHandler.Import)
				r.Put("/{id}", cfg.EntryHandler.Update)
				r.Delete("/{id}", cfg.EntryHandler.Delete)
			})

			r.Route("/fixed-entries", func(r chi.Router) {
				r.With(requireMember).Get("/", cfg.FixedEntryHandler.List)
				r.Get("/categories", cfg.FixedEntryHandler.Categories)
				r.Post("/", cfg.FixedEntryHandler.Create)
				r.Put("/{id}", cfg.FixedEntryHandler.Update)
				r.Delete("/{id}", cfg.FixedEntryHandler.Delete)
			})

			r.Route("/ledgers", func(r chi.Router) {
				r.Get("/", cfg.LedgerHandler.List)
				r.Post("/invite-code", cfg.LedgerHandler.InviteCode)
				r.Post("/join", cfg.LedgerHandler.Join)
				r.With(requireMember).Patch("/{ledgerID}", cfg.LedgerHandler.Update)
				r.With(requireMember).Delete("/{ledgerID}", cfg.LedgerHandler.Delete)
			})

			r.With(requireMember).Get("/settlement", cfg.SettlementHandler.Settlement)
			r.With(requireMember).Get("/summary", cfg.SettlementHandler.Summary)
		})
	})

	return r
}
