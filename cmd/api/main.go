package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studio_backend/internal/adapters"
	"studio_backend/internal/authz"
	"studio_backend/internal/events"
	apphttp "studio_backend/internal/http"
	"studio_backend/internal/http/router"
	"studio_backend/internal/pipeline"
	"studio_backend/internal/projects"
	"studio_backend/internal/quotations"
	"studio_backend/internal/scheduler"
	settingsrepo "studio_backend/internal/settings/repository"
	settingssvc "studio_backend/internal/settings/service"
	"studio_backend/migrations"
	"studio_backend/platform/cache"
	"studio_backend/platform/config"
	"studio_backend/platform/db"
	"studio_backend/platform/logger"
	"studio_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	redisClient := initRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	auditScheduler, closeScheduler := initAuditScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}
	if auditScheduler != nil {
		scheduler.SubscribeBaselineAudit(eventBus, auditScheduler, log)
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	quotationsModule := quotations.NewModule(pool, val, log)
	projectsModule := projects.NewModule(pool, log)
	pipelineModule := pipeline.NewModule(pool, eventBus, val, log)

	settingsService := settingssvc.New(settingsrepo.New(pool), redisClient, cfg, log)
	authzService := authz.New(authz.NewRepository(pool), log)

	pipelineModule.SetProvisioningPorts(
		adapters.NewProvisioningPorts(authzService, settingsService, quotationsModule.Service(), projectsModule.Service()),
		eventBus, cfg, log,
	)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			pipelineModule,
			quotationsModule,
			projectsModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; settings cache disabled")
		return nil
	}
	client, err := cache.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis; settings cache disabled", "error", err)
		return nil
	}
	return client
}

func initAuditScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.BaselineAuditScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; baseline audits disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
