// Package engineers provides the council engineer directory.
package engineers

import (
	"chalkstone_backend/internal/engineers/handler"
	"chalkstone_backend/internal/engineers/repository"
	"chalkstone_backend/internal/engineers/service"
	apphttp "chalkstone_backend/internal/http"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the engineers module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the engineers module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), val, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "engineers"
}

// Service returns the engineers service, used by the seed command.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the staff-only engineer routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Staff.Group("/engineers")
	g.GET("", m.handler.List)
	g.GET("/:id", m.handler.GetByID)
	g.POST("", m.handler.Create)
}

var _ apphttp.Module = (*Module)(nil)
