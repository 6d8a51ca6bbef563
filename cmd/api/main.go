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

	"chalkstone_backend/internal/adapters/storage"
	"chalkstone_backend/internal/analytics"
	"chalkstone_backend/internal/analytics/cache"
	"chalkstone_backend/internal/auth"
	"chalkstone_backend/internal/email"
	"chalkstone_backend/internal/engineers"
	"chalkstone_backend/internal/events"
	apphttp "chalkstone_backend/internal/http"
	"chalkstone_backend/internal/http/router"
	"chalkstone_backend/internal/issues"
	"chalkstone_backend/internal/maps"
	"chalkstone_backend/internal/notification"
	"chalkstone_backend/internal/scheduler"
	"chalkstone_backend/migrations"
	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/db"
	"chalkstone_backend/platform/httpkit"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
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

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	var metrics *httpkit.Metrics
	if cfg.IsMetricsEnabled() {
		metrics = httpkit.NewMetrics("chalkstone")
	}

	storageSvc := initStorage(ctx, cfg, log)
	analyticsCache, closeCache := initAnalyticsCache(ctx, cfg, log)
	if closeCache != nil {
		defer closeCache()
	}
	taskClient, closeTasks := initTaskClient(cfg, log)
	if closeTasks != nil {
		defer closeTasks()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule, err := auth.NewModule(pool, cfg, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}

	// A nil *Metrics records nothing.
	issuesModule, err := issues.NewModule(pool, storageSvc, eventBus, cfg, metrics, val, log)
	if err != nil {
		log.Error("failed to initialize issues module", "error", err)
		panic("failed to initialize issues module: " + err.Error())
	}

	engineersModule := engineers.NewModule(pool, val, log)
	analyticsModule := analytics.NewModule(pool, analyticsCache, eventBus, val, log)
	mapsModule := maps.NewModule(cfg, log)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(issuesModule.Repository(), email.NewSender(cfg), cfg, log)
	if taskClient != nil {
		notificationModule.SetEnqueuer(taskClient)
	}
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Metrics: metrics,
		Modules: []apphttp.Module{
			authModule,
			issuesModule,
			engineersModule,
			analyticsModule,
			mapsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
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

// initStorage returns nil when MinIO is not configured; photo uploads are
// then rejected.
func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.StorageService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MinIO not configured; issue photos disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketIssueImages()
	if err := withRetry(ctx, log, "ensure issue-images bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "issueImagesBucket", bucket)
	return storageSvc
}

func initAnalyticsCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (*cache.RedisCache, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; analytics served uncached")
		return nil, nil
	}

	client, err := cache.NewRedisClient(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to initialize analytics cache", "error", err)
		return nil, nil
	}

	c := cache.NewRedisCache(client, cfg.GetAnalyticsCacheTTL())
	if err := c.Ping(ctx); err != nil {
		log.Warn("analytics cache unreachable; serving uncached", "error", err)
		_ = client.Close()
		return nil, nil
	}

	return c, func() {
		_ = client.Close()
	}
}

func initTaskClient(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; notification e-mails sent inline")
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
