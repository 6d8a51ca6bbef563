package maps

import (
	"net/http"

	"chalkstone_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the geocoding endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Config handles GET /api/v1/maps/config
func (h *Handler) Config(c *gin.Context) {
	httpkit.OK(c, h.svc.Config())
}

// Reverse handles GET /api/v1/maps/reverse?lat=...&lng=...
func (h *Handler) Reverse(c *gin.Context) {
	var req ReverseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'lat' and 'lng' are required", nil)
		return
	}

	addr, err := h.svc.Reverse(c.Request.Context(), req.Lat, req.Lng)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, addr)
}

// LookupAddress handles GET /api/v1/maps/address-lookup?q=...
func (h *Handler) LookupAddress(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required (min 3 chars)", nil)
		return
	}

	results, err := h.svc.SearchAddress(c.Request.Context(), req.Query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, results)
}
