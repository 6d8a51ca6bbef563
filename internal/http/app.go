package http

import (
	"context"

	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/httpkit"
	"chalkstone_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// main.go populates it and hands it to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (database ping).
	Health HealthChecker
	// Metrics collects Prometheus metrics; nil disables /metrics.
	Metrics *httpkit.Metrics
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
