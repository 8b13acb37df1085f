package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/peopleflow/peopleflow/internal/app"
	"github.com/peopleflow/peopleflow/internal/candidates"
	"github.com/peopleflow/peopleflow/internal/matching"
	"github.com/peopleflow/peopleflow/internal/observability"
	"github.com/peopleflow/peopleflow/internal/openings"
	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/platform/db"
	"github.com/peopleflow/peopleflow/internal/team"
	"github.com/peopleflow/peopleflow/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	queryCache := cache.NewQueryCache(redisClient, cfg.CacheTTL)
	metrics := observability.NewMetrics()
	queryCache.SetObserver(metrics.ObserveCache)

	openingsRepo := openings.NewPGRepository(pool)
	candidatesRepo := candidates.NewPGRepository(pool)
	matchingService := matching.NewService(logger, openingsRepo, candidatesRepo, queryCache)
	matchingJob := jobs.NewMatchingRefreshJob(matchingService, pool, logger, metrics)

	teamRepo := team.NewRepository(pool)
	teamService := team.NewService(logger, teamRepo, queryCache, redisClient, nil)
	teamJob := jobs.NewTeamWarmupJob(teamService, pool, logger, metrics)

	smtpAddr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	mailer := jobs.NewMailer(smtpAddr, cfg.SMTPFrom, logger, metrics)

	matchingTask, err := jobs.NewMatchingRefreshTask(0)
	if err != nil {
		logger.Error("build matching task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewTeamWarmupTask(0)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMatchingRefresh, Handler: matchingJob.Handle},
			{Type: jobs.TaskTeamWarmup, Handler: teamJob.Handle},
			{Type: jobs.TaskTypeSendEmail, Handler: mailer.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: matchingTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
