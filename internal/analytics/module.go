// Package analytics provides staff reporting over issues.
package analytics

import (
	"chalkstone_backend/internal/analytics/cache"
	"chalkstone_backend/internal/analytics/handler"
	"chalkstone_backend/internal/analytics/repository"
	"chalkstone_backend/internal/analytics/service"
	"chalkstone_backend/internal/events"
	apphttp "chalkstone_backend/internal/http"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the analytics module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the analytics module. redisCache may be nil, in which
// case every request hits the database.
func NewModule(pool *pgxpool.Pool, redisCache *cache.RedisCache, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	var c service.Cache
	if redisCache != nil {
		c = redisCache
	}

	svc := service.New(repository.New(pool), c, log)
	svc.Subscribe(bus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// Service returns the analytics service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the staff-only analytics routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Staff.Group("/analytics"))
}

var _ apphttp.Module = (*Module)(nil)
