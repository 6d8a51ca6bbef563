package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chalkstone_backend/internal/analytics"
	"chalkstone_backend/internal/analytics/cache"
	"chalkstone_backend/internal/email"
	"chalkstone_backend/internal/events"
	issuerepo "chalkstone_backend/internal/issues/repository"
	"chalkstone_backend/internal/notification"
	"chalkstone_backend/internal/scheduler"
	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/db"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	notifier := notification.New(issuerepo.New(pool), email.NewSender(cfg), cfg, log)
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP not configured; notification e-mails are dropped")
	}

	if client, err := cache.NewRedisClient(cfg.GetRedisURL()); err == nil {
		defer func() { _ = client.Close() }()
		// The worker has no HTTP routes; the module is only used to warm the cache.
		analyticsModule := analytics.NewModule(pool, cache.NewRedisCache(client, cfg.GetAnalyticsCacheTTL()), events.NewInMemoryBus(log), validator.New(), log)
		refreshInterval := getDurationEnv("ANALYTICS_REFRESH_INTERVAL", cfg.GetAnalyticsCacheTTL())
		go scheduler.NewAnalyticsRefresh(analyticsModule.Service(), log, refreshInterval).Run(ctx)
	} else {
		log.Warn("analytics refresh disabled", "error", err)
	}

	worker, err := scheduler.NewWorker(cfg, notifier, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
