// Package maps provides geocoding for the issue report map.
package maps

import (
	apphttp "chalkstone_backend/internal/http"
	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/logger"
)

// Module wires the maps HTTP routes.
type Module struct {
	handler *Handler
}

func NewModule(cfg config.MapsConfig, log *logger.Logger) *Module {
	svc := NewService(cfg, log)
	h := NewHandler(svc)
	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "maps"
}

// RegisterRoutes mounts the public map routes; reporting works without an
// account so the map does too.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/maps")
	group.GET("/config", m.handler.Config)
	group.GET("/reverse", m.handler.Reverse)
	group.GET("/address-lookup", m.handler.LookupAddress)
}

var _ apphttp.Module = (*Module)(nil)
