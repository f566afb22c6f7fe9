package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/mukwano/sacco/internal/adapter/http/handler"
	"github.com/mukwano/sacco/internal/adapter/http/middleware"
	"github.com/mukwano/sacco/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	MemberHandler      *handler.MemberHandler
	AccountHandler     *handler.AccountHandler
	LoanHandler        *handler.LoanHandler
	CreditScoreHandler *handler.CreditScoreHandler
	SweepHandler       *handler.SweepHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	RateLimiter        *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(log.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Members
		r.Route("/members", func(r chi.Router) {
			r.Post("/", cfg.MemberHandler.Register)
			r.Get("/", cfg.MemberHandler.List)
			r.Get("/{id}", cfg.MemberHandler.Get)
			r.Post("/{id}/approve", cfg.MemberHandler.Approve)
			r.Post("/{id}/suspend", cfg.MemberHandler.Suspend)
			r.Post("/{id}/kyc/verify", cfg.MemberHandler.VerifyKYC)
			r.Get("/{id}/credit-score", cfg.CreditScoreHandler.Get)
			r.Post("/{id}/credit-score/refresh", cfg.CreditScoreHandler.Refresh)
			r.Get("/{id}/accounts", cfg.AccountHandler.ListByMember)
			r.Get("/{id}/loans", cfg.LoanHandler.ListByMember)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Open)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/deposits", cfg.AccountHandler.Deposit)
			r.Post("/{id}/withdrawals", cfg.AccountHandler.Withdraw)
			r.Get("/{id}/transactions", cfg.AccountHandler.ListTransactions)
		})

		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.Post("/", cfg.LoanHandler.Apply)
			r.Post("/eligibility", cfg.LoanHandler.CheckEligibility)
			r.Get("/schedule/preview", cfg.LoanHandler.PreviewSchedule)
			r.Get("/{id}", cfg.LoanHandler.Get)
			r.Post("/{id}/approve", cfg.LoanHandler.Approve)
			r.Post("/{id}/disburse", cfg.LoanHandler.Disburse)
			r.Post("/{id}/repayments", cfg.LoanHandler.Repay)
			r.Get("/{id}/schedule", cfg.LoanHandler.Schedule)
		})

		// Sweeps
		r.Route("/sweeps", func(r chi.Router) {
			r.Post("/interest", cfg.SweepHandler.Interest)
			r.Post("/overdue", cfg.SweepHandler.Overdue)
			r.Post("/credit-scores", cfg.SweepHandler.CreditScores)
		})
	})

	return r
}
