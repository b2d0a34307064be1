package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/adapter/http/handler"
	"github.com/iho/leaveledger/internal/adapter/http/middleware"
	"github.com/iho/leaveledger/internal/infrastructure/auth"
	"github.com/iho/leaveledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RequestHandler *handler.RequestHandler
	BalanceHandler *handler.BalanceHandler
	AccrualHandler *handler.AccrualHandler
	AdminHandler   *handler.AdminHandler
	HealthHandler  *handler.HealthHandler

	// JWTManager enables bearer token authentication. When nil, the actor is
	// read from the X-Actor-* headers of a trusted gateway.
	JWTManager *auth.JWTManager

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(middleware.HeaderActor)
		}

		// Idempotency keys are scoped by actor, so this runs after auth.
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Requests
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", cfg.RequestHandler.Submit)
			r.Get("/", cfg.RequestHandler.List)
			r.Get("/{id}", cfg.RequestHandler.Get)
			r.Get("/{id}/audit", cfg.RequestHandler.AuditTrail)
			r.Post("/{id}/approve", cfg.RequestHandler.Approve)
			r.Post("/{id}/reject", cfg.RequestHandler.Reject)
			r.Post("/{id}/withdraw", cfg.RequestHandler.Withdraw)
			r.Post("/{id}/cancel", cfg.RequestHandler.Cancel)
			r.Post("/{id}/advance", cfg.RequestHandler.Advance)
		})

		// Balances and ledger
		r.Get("/balances/{employeeID}", cfg.BalanceHandler.ListByEmployee)
		r.Get("/balances/{employeeID}/{variantID}/{year}", cfg.BalanceHandler.Get)
		r.Get("/transactions", cfg.BalanceHandler.Transactions)

		// Accruals
		r.Route("/accruals", func(r chi.Router) {
			r.Post("/top-up", cfg.AccrualHandler.TopUp)
			r.Post("/carry-forward", cfg.AccrualHandler.CarryForward)
		})

		// Operations
		r.Post("/admin/auto-approvals/process", cfg.AdminHandler.ProcessAutoApprovals)
		r.Get("/ledger/reconcile", cfg.AdminHandler.Reconcile)
	})

	return r
}
