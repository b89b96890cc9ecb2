package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/openledger/openledger/internal/app"
	jobmetrics "github.com/openledger/openledger/internal/jobs"
	"github.com/openledger/openledger/internal/ledger/accounts"
	"github.com/openledger/openledger/internal/ledger/balances"
	"github.com/openledger/openledger/internal/ledger/entries"
	"github.com/openledger/openledger/internal/ledger/periods"
	"github.com/openledger/openledger/internal/shared"
	"github.com/openledger/openledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	accountRepo := accounts.NewRepository(pool)
	entryRepo := entries.NewRepository(pool)
	periodRepo := periods.NewRepository(pool)
	balanceRepo := balances.NewRepository(pool)
	periodService := periods.NewService(periodRepo)

	calculator := balances.NewCalculator(accountRepo, entryRepo, periodService, balanceRepo, logger)
	recalc := balances.NewRecalculator(calculator)
	metrics := jobmetrics.NewMetrics(nil)

	recalcJob := &jobs.BalanceRecalcJob{
		Periods:      periodService,
		Recalc:       recalc,
		Lock:         shared.NewRecalcLock(redisClient, cfg.RecalcLockTTL),
		ExcludeMemos: cfg.ExcludedMemos(),
		Logger:       logger,
		Metrics:      metrics,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBalanceRecalc, Handler: recalcJob.HandleBalanceRecalc},
			{Type: jobs.TaskBalanceRecalcYear, Handler: recalcJob.HandleBalanceRecalcYear},
			{Type: jobs.TaskBalanceIntegrity, Handler: func(ctx context.Context, _ *asynq.Task) error {
				tracker := metrics.Track("balance_integrity")
				return tracker.End(jobs.RunBalanceIntegrityCheck(ctx, pool, logger, metrics))
			}},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 1 * * *", Task: jobs.NewBalanceIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	router := chi.NewRouter()
	jobs.NewHandler(inspector, logger).MountRoutes(router)
	healthSrv := &http.Server{Addr: cfg.WorkerAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = healthSrv.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
