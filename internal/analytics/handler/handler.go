package handler

import (
	"net/http"

	"chalkstone_backend/internal/analytics/service"
	"chalkstone_backend/internal/analytics/transport"
	"chalkstone_backend/platform/httpkit"
	"chalkstone_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for analytics.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new analytics handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// IssueAnalytics breaks issue counts down by type, status and month.
// GET /api/v1/analytics/issues?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
func (h *Handler) IssueAnalytics(c *gin.Context) {
	var req transport.IssueAnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.IssueAnalytics(c.Request.Context(), req.StartDate, req.EndDate)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ResolutionTime returns the average resolution time per issue type.
// GET /api/v1/analytics/resolution-time
func (h *Handler) ResolutionTime(c *gin.Context) {
	result, err := h.svc.ResolutionTimes(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// EngineerPerformance returns per-engineer workload.
// GET /api/v1/analytics/engineers
func (h *Handler) EngineerPerformance(c *gin.Context) {
	result, err := h.svc.EngineerPerformance(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Dashboard returns the staff dashboard.
// GET /api/v1/analytics/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	result, err := h.svc.Dashboard(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RegisterRoutes mounts the analytics routes on group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/issues", h.IssueAnalytics)
	group.GET("/resolution-time", h.ResolutionTime)
	group.GET("/engineers", h.EngineerPerformance)
	group.GET("/dashboard", h.Dashboard)
}
