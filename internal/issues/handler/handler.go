package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"chalkstone_backend/internal/issues/service"
	"chalkstone_backend/internal/issues/transport"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/formcheck"
	"chalkstone_backend/platform/httpkit"
	"chalkstone_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid issue id"
	msgImageRequired    = "image is required"
	msgUploadTooLarge   = "upload too large"

	maxMultipartMemory = 32 << 20
	defaultMaxFileSize = 10 << 20
	// multipartOverhead covers form fields, part headers and boundaries.
	multipartOverhead = 64 << 10
)

// UploadLimits caps multipart request bodies before they are parsed.
type UploadLimits struct {
	MaxFileSize int64
	MaxFiles    int
}

func (l UploadLimits) fileSize() int64 {
	if l.MaxFileSize <= 0 {
		return defaultMaxFileSize
	}
	return l.MaxFileSize
}

func (l UploadLimits) photoBody() int64 {
	return l.fileSize() + multipartOverhead
}

func (l UploadLimits) reportBody() int64 {
	return l.fileSize()*int64(max(l.MaxFiles, 1)) + multipartOverhead
}

// Handler handles HTTP requests for issues.
type Handler struct {
	svc    *service.Service
	val    *validator.Validator
	limits UploadLimits
}

// New creates a new issues handler.
func New(svc *service.Service, val *validator.Validator, limits UploadLimits) *Handler {
	return &Handler{svc: svc, val: val, limits: limits}
}

// Validate checks a report form without storing it.
// POST /api/v1/issues/validate
func (h *Handler) Validate(c *gin.Context) {
	draft, ok := readJSONDraft(c)
	if !ok {
		return
	}

	result := h.svc.Validate(c.Request.Context(), draft)
	status := http.StatusOK
	if !result.IsValid {
		status = http.StatusUnprocessableEntity
	}
	httpkit.JSON(c, status, result)
}

// Create stores a new report from JSON or multipart/form-data.
// POST /api/v1/issues
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var (
		draft  *formcheck.IssueDraft
		photos []service.Photo
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, ok := parseMultipart(c, h.limits.reportBody(), msgInvalidRequest)
		if !ok {
			return
		}
		defer func() { _ = form.RemoveAll() }()

		draft = draftFromForm(form)
		files, err := openPhotos(form)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		defer closePhotos(files)
		photos = files.photos
	} else {
		var ok bool
		if draft, ok = readJSONDraft(c); !ok {
			return
		}
	}

	result, err := h.svc.Create(c.Request.Context(), identity.UserID(), draft, photos)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetByID returns one issue.
// GET /api/v1/issues/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// QRCode returns a PNG QR code linking to the issue page.
// GET /api/v1/issues/:id/qrcode
func (h *Handler) QRCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	png, err := h.svc.QRCode(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// Map lists open issues for the public map.
// GET /api/v1/issues/map
func (h *Handler) Map(c *gin.Context) {
	var req transport.MapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.MapPins(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// PhotoLocation reads the GPS position embedded in a photo.
// POST /api/v1/issues/photo-location
func (h *Handler) PhotoLocation(c *gin.Context) {
	form, ok := parseMultipart(c, h.limits.photoBody(), msgImageRequired)
	if !ok {
		return
	}
	defer func() { _ = form.RemoveAll() }()

	headers := form.File["image"]
	if len(headers) == 0 {
		httpkit.Error(c, http.StatusBadRequest, msgImageRequired, nil)
		return
	}
	file, err := headers[0].Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgImageRequired, nil)
		return
	}
	defer func() { _ = file.Close() }()

	lat, lng, err := service.PhotoLocation(file)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.PhotoLocationResponse{
		Location: transport.LocationResponse{Latitude: lat, Longitude: lng},
	})
}

// List pages through all issues.
// GET /api/v1/issues
func (h *Handler) List(c *gin.Context) {
	var req transport.ListIssuesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Search filters issues by type and status.
// GET /api/v1/issues/search
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchIssuesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.Search(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update changes the status or engineer of an issue.
// PUT /api/v1/issues/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// parseMultipart caps the body at limit and parses it. Oversized bodies
// answer 413, other parse failures answer 400 with badRequestMsg.
func parseMultipart(c *gin.Context, limit int64, badRequestMsg string) (*multipart.Form, bool) {
	if c.Request.ContentLength > limit {
		httpkit.HandleError(c, apperr.TooLarge(msgUploadTooLarge).WithDetails(map[string]int64{"maxBytes": limit}))
		return nil, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpkit.HandleError(c, apperr.TooLarge(msgUploadTooLarge).WithDetails(map[string]int64{"maxBytes": limit}))
			return nil, false
		}
		httpkit.Error(c, http.StatusBadRequest, badRequestMsg, nil)
		return nil, false
	}
	return c.Request.MultipartForm, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return 0, false
	}
	return id, true
}

// readJSONDraft decodes the body leniently. An empty body is a missing
// form, malformed JSON is a bad request.
func readJSONDraft(c *gin.Context) (*formcheck.IssueDraft, bool) {
	body, err := c.GetRawData()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, true
	}

	draft, err := formcheck.DecodeDraft(body)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return nil, false
	}
	return draft, true
}

// draftFromForm maps multipart fields onto a draft. Coordinates that parse
// as numbers are passed on as float64; anything else stays a string and is
// rejected by the coordinate check.
func draftFromForm(form *multipart.Form) *formcheck.IssueDraft {
	fields := map[string]any{
		formcheck.FieldType:        formValue(form, formcheck.FieldType),
		formcheck.FieldDescription: formValue(form, formcheck.FieldDescription),
	}

	lat, hasLat := form.Value[formcheck.FieldLatitude]
	lng, hasLng := form.Value[formcheck.FieldLongitude]
	if hasLat || hasLng {
		location := map[string]any{}
		if hasLat && len(lat) > 0 {
			location[formcheck.FieldLatitude] = coordinateValue(lat[0])
		}
		if hasLng && len(lng) > 0 {
			location[formcheck.FieldLongitude] = coordinateValue(lng[0])
		}
		fields[formcheck.FieldLocation] = location
	}
	return formcheck.DraftFromMap(fields)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func coordinateValue(raw string) any {
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return f
	}
	return raw
}

type openedPhotos struct {
	photos []service.Photo
	files  []multipart.File
}

func openPhotos(form *multipart.Form) (*openedPhotos, error) {
	headers := slices.Concat(form.File["images"], form.File["images[]"])
	opened := &openedPhotos{}
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			closePhotos(opened)
			return nil, err
		}
		opened.files = append(opened.files, file)
		opened.photos = append(opened.photos, service.Photo{
			FileName: header.Filename,
			Size:     header.Size,
			Content:  file,
		})
	}
	return opened, nil
}

func closePhotos(opened *openedPhotos) {
	for _, f := range opened.files {
		_ = f.Close()
	}
}
