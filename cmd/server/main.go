package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/eluss/chromabet/internal/adapter/http"
	"github.com/eluss/chromabet/internal/adapter/http/handler"
	postgresRepo "github.com/eluss/chromabet/internal/adapter/repository/postgres"
	redisRepo "github.com/eluss/chromabet/internal/adapter/repository/redis"
	"github.com/eluss/chromabet/internal/infrastructure/auth"
	"github.com/eluss/chromabet/internal/infrastructure/config"
	"github.com/eluss/chromabet/internal/infrastructure/events"
	"github.com/eluss/chromabet/internal/infrastructure/logger"
	"github.com/eluss/chromabet/internal/infrastructure/metrics"
	"github.com/eluss/chromabet/internal/infrastructure/postgres"
	"github.com/eluss/chromabet/internal/infrastructure/redis"
	"github.com/eluss/chromabet/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	payouts := cfg.PayoutTable()
	if err := payouts.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid payout configuration")
	}

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	roundRepo := postgresRepo.NewRoundRepository(pool)
	wagerRepo := postgresRepo.NewWagerRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	statsRepo := postgresRepo.NewStatsRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	roundCache := redisRepo.NewRoundCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	clock := usecase.NewSystemClock()
	publisher := events.NewRedisPublisher(redisClient, cfg.EventChannel, log, m)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Use cases
	userUC := usecase.NewUserUseCase(txManager, userRepo, txnRepo, idGen, clock)
	wagerUC := usecase.NewWagerUseCase(txManager, userRepo, roundRepo, wagerRepo, txnRepo, idGen, clock, retrier, payouts, cfg.MinStakeAmount(), m)
	roundUC := usecase.NewRoundUseCase(roundRepo)
	settlementUC := usecase.NewSettlementUseCase(txManager, userRepo, roundRepo, wagerRepo, txnRepo, usecase.NewRandomOutcomeSource(), publisher, idGen, clock, payouts, log, m)
	statsUC := usecase.NewStatsUseCase(statsRepo, log)

	scheduler := usecase.NewScheduler(usecase.SchedulerConfig{
		RoundRepo: roundRepo,
		Engine:    settlementUC,
		Publisher: publisher,
		IDGen:     idGen,
		Clock:     clock,
		Period:    cfg.RoundPeriod,
		Logger:    log,
		Metrics:   m,
	})

	// Handlers
	userHandler := handler.NewUserHandler(userUC, jwtManager)
	wagerHandler := handler.NewWagerHandler(wagerUC)
	roundHandler := handler.NewRoundHandler(roundUC, roundCache, cfg.RoundCacheTTL)
	adminHandler := handler.NewAdminHandler(settlementUC)
	statsHandler := handler.NewStatsHandler(statsUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		UserHandler:      userHandler,
		WagerHandler:     wagerHandler,
		RoundHandler:     roundHandler,
		AdminHandler:     adminHandler,
		StatsHandler:     statsHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           log,
		Metrics:          m,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	schedulerDone := make(chan struct{})

	go func() {
		defer close(schedulerDone)
		if err := scheduler.Run(schedulerCtx); err != nil && schedulerCtx.Err() == nil {
			log.Error().Err(err).Msg("scheduler exited")
		}
	}()

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Stop intake first, then let the scheduler finish its current step.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	stopScheduler()
	select {
	case <-schedulerDone:
	case <-time.After(cfg.HTTPShutdownTimeout):
		log.Warn().Msg("scheduler did not stop in time")
	}

	log.Info().Msg("stopped")
}
