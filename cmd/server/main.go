package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/mukwano/sacco/internal/adapter/http"
	"github.com/mukwano/sacco/internal/adapter/http/handler"
	"github.com/mukwano/sacco/internal/adapter/http/middleware"
	postgresRepo "github.com/mukwano/sacco/internal/adapter/repository/postgres"
	redisRepo "github.com/mukwano/sacco/internal/adapter/repository/redis"
	"github.com/mukwano/sacco/internal/domain"
	"github.com/mukwano/sacco/internal/infrastructure/config"
	"github.com/mukwano/sacco/internal/infrastructure/logger"
	"github.com/mukwano/sacco/internal/infrastructure/metrics"
	"github.com/mukwano/sacco/internal/infrastructure/postgres"
	"github.com/mukwano/sacco/internal/infrastructure/redis"
	"github.com/mukwano/sacco/internal/infrastructure/scheduler"
	"github.com/mukwano/sacco/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Run migrations
	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
		PingTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Domain configuration
	product, err := cfg.LoanProduct()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid loan product configuration")
	}
	eligibility, err := cfg.Eligibility()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid eligibility configuration")
	}
	interestCfg, err := cfg.Interest()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid interest configuration")
	}
	calc := domain.NewInterestCalculator(interestCfg)
	scorer := domain.NewCreditScorer(domain.DefaultCreditScoreConfig())

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier()
	memberRepo := postgresRepo.NewMemberRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	repaymentRepo := postgresRepo.NewRepaymentRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	scoreCache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	m := metrics.New()

	// Initialize use cases
	memberUC := usecase.NewMemberUseCase(txManager, memberRepo, idGen, m)
	accountUC := usecase.NewAccountUseCase(txManager, memberRepo, accountRepo, transactionRepo, idGen, m)
	loanUC := usecase.NewLoanUseCase(txManager, retrier, memberRepo, accountRepo, loanRepo, repaymentRepo, transactionRepo, idGen, calc, eligibility, product, m)
	interestUC := usecase.NewInterestUseCase(txManager, accountRepo, transactionRepo, idGen, calc)
	scoreUC := usecase.NewCreditScoreUseCase(memberRepo, accountRepo, loanRepo, repaymentRepo, transactionRepo, scorer, scoreCache, m)

	// Initialize handlers
	memberHandler := handler.NewMemberHandler(memberUC)
	accountHandler := handler.NewAccountHandler(accountUC)
	loanHandler := handler.NewLoanHandler(loanUC)
	scoreHandler := handler.NewCreditScoreHandler(scoreUC)
	sweepHandler := handler.NewSweepHandler(interestUC, loanUC, scoreUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		MemberHandler:      memberHandler,
		AccountHandler:     accountHandler,
		LoanHandler:        loanHandler,
		CreditScoreHandler: scoreHandler,
		SweepHandler:       sweepHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
	})

	// Start scheduled sweeps
	sched := scheduler.New(log.Logger, m, interestUC, loanUC, scoreUC)
	err = sched.Register(scheduler.Specs{
		Interest: cfg.InterestSweepSpec,
		Overdue:  cfg.OverdueSweepSpec,
		Scores:   cfg.ScoreSweepSpec,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sweep schedule")
	}
	sched.Start()
	defer sched.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
