// Package issues provides the citizen issue reporting bounded context.
// It handles reports, the public map feed, photos and staff triage.
package issues

import (
	"chalkstone_backend/internal/adapters/storage"
	"chalkstone_backend/internal/events"
	apphttp "chalkstone_backend/internal/http"
	"chalkstone_backend/internal/issues/domain"
	"chalkstone_backend/internal/issues/handler"
	"chalkstone_backend/internal/issues/repository"
	"chalkstone_backend/internal/issues/service"
	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Validation tags for issue enums.
const (
	TagIssueType   = "issuetype"
	TagIssueStatus = "issuestatus"
)

// Module is the issues bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the issues module with all its dependencies.
// store may be nil when object storage is not configured.
func NewModule(pool *pgxpool.Pool, store storage.StorageService, eventBus events.Bus, cfg config.IssuesConfig, recorder service.ValidationRecorder, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := RegisterValidation(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, store, eventBus, cfg, recorder, log)
	h := handler.New(svc, val, handler.UploadLimits{
		MaxFileSize: cfg.GetMinIOMaxFileSize(),
		MaxFiles:    cfg.GetMaxImagesPerIssue(),
	})

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}, nil
}

// RegisterValidation adds the issuetype and issuestatus tags.
func RegisterValidation(val *validator.Validator) error {
	if err := val.RegisterValidation(TagIssueType, func(fl govalidator.FieldLevel) bool {
		_, ok := domain.ParseType(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	return val.RegisterValidation(TagIssueStatus, func(fl govalidator.FieldLevel) bool {
		_, ok := domain.ParseStatus(fl.Field().String())
		return ok
	})
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "issues"
}

// Service returns the issues service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the issues repository for the notification worker.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts issue routes on the provided router groups.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/issues")
	public.POST("/validate", m.handler.Validate)
	public.GET("/map", m.handler.Map)
	public.POST("/photo-location", m.handler.PhotoLocation)
	public.GET("/:id/qrcode", m.handler.QRCode)

	reporters := ctx.Protected.Group("/issues")
	reporters.POST("", m.handler.Create)
	reporters.GET("/:id", m.handler.GetByID)

	staff := ctx.Staff.Group("/issues")
	staff.GET("", m.handler.List)
	staff.GET("/search", m.handler.Search)
	staff.PUT("/:id", m.handler.Update)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
