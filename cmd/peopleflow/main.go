package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/peopleflow/peopleflow/internal/admins"
	"github.com/peopleflow/peopleflow/internal/app"
	"github.com/peopleflow/peopleflow/internal/auth"
	"github.com/peopleflow/peopleflow/internal/candidates"
	"github.com/peopleflow/peopleflow/internal/matching"
	"github.com/peopleflow/peopleflow/internal/observability"
	"github.com/peopleflow/peopleflow/internal/openings"
	"github.com/peopleflow/peopleflow/internal/plans"
	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/platform/db"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
	"github.com/peopleflow/peopleflow/internal/submissions"
	"github.com/peopleflow/peopleflow/internal/team"
	"github.com/peopleflow/peopleflow/internal/tenants"
	"github.com/peopleflow/peopleflow/internal/users"
	"github.com/peopleflow/peopleflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionTTL)
	queryCache := cache.NewQueryCache(redisClient, cfg.CacheTTL)
	metrics := observability.NewMetrics()
	queryCache.SetObserver(metrics.ObserveCache)

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	rbacRepo := rbac.NewRepository(pool)
	rbacService := rbac.NewService(rbacRepo)
	guard := rbac.Middleware{}
	rbacHandler := rbac.NewHandler(logger, rbacService, sessionManager, guard)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, rbacService, sessionManager)

	usersRepo := users.NewPGRepository(pool)
	usersService := users.NewService(logger, usersRepo, rbacService, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, guard)

	candidatesRepo := candidates.NewPGRepository(pool)
	candidatesService := candidates.NewService(logger, candidatesRepo, queryCache, auditLogger)
	candidatesHandler := candidates.NewHandler(logger, candidatesService, guard)

	openingsRepo := openings.NewPGRepository(pool)
	openingsService := openings.NewService(logger, openingsRepo, queryCache, auditLogger)
	openingsHandler := openings.NewHandler(logger, openingsService, guard)

	submissionsRepo := submissions.NewPGRepository(pool)
	submissionsService := submissions.NewService(logger, submissionsRepo, queryCache, idempotencyStore, auditLogger)
	submissionsHandler := submissions.NewHandler(logger, submissionsService, guard)

	matchingService := matching.NewService(logger, openingsRepo, candidatesRepo, queryCache)
	matchingHandler := matching.NewHandler(logger, matchingService, guard)

	teamRepo := team.NewRepository(pool)
	teamService := team.NewService(logger, teamRepo, queryCache, redisClient, auditLogger)
	teamHandler := team.NewHandler(logger, teamService, guard)
	if cfg.TeamServiceURL != "" {
		teamHandler.UseRemoteGateway(cfg.TeamServiceURL, cfg.TeamServiceTimeout)
	}

	tenantsRepo := tenants.NewPGRepository(pool)
	tenantsService := tenants.NewService(logger, tenantsRepo, queryCache, auditLogger)
	tenantsHandler := tenants.NewHandler(logger, tenantsService, guard)

	plansRepo := plans.NewPGRepository(pool)
	plansService := plans.NewService(logger, plansRepo)
	plansHandler := plans.NewHandler(logger, plansService, guard)

	adminsRepo := admins.NewPGRepository(pool)
	adminsService := admins.NewService(logger, adminsRepo, rbacService, auditLogger)
	adminsHandler := admins.NewHandler(logger, adminsService, guard)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}

	jobsClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	submissionsService.SetNotifier(func(ctx context.Context, to, subject, body string) {
		payload := jobs.SendEmailPayload{To: to, Subject: subject, Body: body}
		if _, err := jobsClient.EnqueueSendEmail(ctx, payload); err != nil {
			logger.Warn("enqueue status mail", slog.Any("error", err))
		}
	})
	matchingHandler.SetRefreshEnqueuer(func(ctx context.Context, tenantID int64) error {
		_, err := jobsClient.EnqueueMatchingRefresh(ctx, tenantID)
		return err
	})

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		RBACHandler:        rbacHandler,
		UsersHandler:       usersHandler,
		CandidatesHandler:  candidatesHandler,
		OpeningsHandler:    openingsHandler,
		SubmissionsHandler: submissionsHandler,
		MatchingHandler:    matchingHandler,
		TeamHandler:        teamHandler,
		TenantsHandler:     tenantsHandler,
		PlansHandler:       plansHandler,
		AdminsHandler:      adminsHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
