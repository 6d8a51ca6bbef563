package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"chalkstone_backend/internal/adapters/storage"
	"chalkstone_backend/internal/events"
	"chalkstone_backend/internal/issues/domain"
	"chalkstone_backend/internal/issues/repository"
	"chalkstone_backend/internal/issues/transport"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/formcheck"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	msgValidationFailed = "validation failed"
	msgInvalidIssueType = "Invalid issue type"
	msgUnknownStatus    = "unknown issue status"
	msgNothingToUpdate  = "nothing to update"

	defaultPageSize    = 10
	maxPageSize        = 100
	searchLimit        = 100
	summaryDescLength  = 120
	qrCodeSize         = 256
	sourceCreateIssue  = "create_issue"
	sourceValidateForm = "validate_form"
)

// ValidationRecorder counts rejected report fields.
type ValidationRecorder interface {
	ValidationFailed(field, kind string)
}

// Service provides business logic for issues.
type Service struct {
	repo     repository.Repository
	storage  storage.StorageService
	bus      events.Bus
	cfg      config.IssuesConfig
	recorder ValidationRecorder
	log      *logger.Logger
}

// New creates a new issues service. storage and recorder may be nil; without
// storage, reports with photos are rejected.
func New(repo repository.Repository, store storage.StorageService, bus events.Bus, cfg config.IssuesConfig, recorder ValidationRecorder, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: store, bus: bus, cfg: cfg, recorder: recorder, log: log}
}

// Validate runs the report form checks without storing anything.
func (s *Service) Validate(ctx context.Context, draft *formcheck.IssueDraft) formcheck.ValidationResult {
	result := formcheck.ValidateIssueForm(draft)
	if !result.IsValid {
		s.recordRejection(ctx, sourceValidateForm, result)
	}
	return result
}

// Create validates a draft, stores its photos and persists the issue with
// status NEW.
func (s *Service) Create(ctx context.Context, reporter uuid.UUID, draft *formcheck.IssueDraft, photos []Photo) (transport.IssueResponse, error) {
	result := formcheck.ValidateIssueForm(draft)
	if !result.IsValid {
		s.recordRejection(ctx, sourceCreateIssue, result)
		return transport.IssueResponse{}, apperr.Validation(msgValidationFailed).WithDetails(result.Errors)
	}

	issueType, ok := domain.ParseType(draft.Type)
	if !ok {
		return transport.IssueResponse{}, apperr.Validation(msgValidationFailed).
			WithDetails(formcheck.FieldErrors{formcheck.FieldType: msgInvalidIssueType})
	}

	description := sanitize.Text(draft.Description)
	if utf8.RuneCountInString(description) < formcheck.MinDescriptionLength {
		return transport.IssueResponse{}, apperr.Validation(msgValidationFailed).
			WithDetails(formcheck.FieldErrors{formcheck.FieldDescription: formcheck.MsgDescriptionTooShort})
	}

	lat, lng, _ := draft.Location.Coordinates()

	keys, err := s.storePhotos(ctx, reporter, photos)
	if err != nil {
		return transport.IssueResponse{}, err
	}

	issue, err := s.repo.Create(ctx, repository.CreateParams{
		Type:        issueType,
		Description: description,
		Latitude:    lat,
		Longitude:   lng,
		Images:      keys,
		ReportedBy:  reporter,
	})
	if err != nil {
		s.deletePhotos(ctx, keys)
		return transport.IssueResponse{}, err
	}

	s.log.Info("issue reported", "id", issue.ID, "type", issue.Type, "images", len(keys))
	s.bus.Publish(ctx, events.IssueReported{
		BaseEvent:  events.NewBaseEvent(),
		IssueID:    issue.ID,
		Type:       string(issue.Type),
		ReportedBy: reporter,
	})

	return s.toIssueResponse(ctx, issue), nil
}

// GetByID retrieves an issue with presigned photo links.
func (s *Service) GetByID(ctx context.Context, id int64) (transport.IssueResponse, error) {
	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.IssueResponse{}, err
	}
	return s.toIssueResponse(ctx, issue), nil
}

// List pages through all issues, newest first.
func (s *Service) List(ctx context.Context, req transport.ListIssuesRequest) (transport.IssueListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return transport.IssueListResponse{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.IssueListResponse{
		Items:      toSummaries(items),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Search filters issues by type and status.
func (s *Service) Search(ctx context.Context, req transport.SearchIssuesRequest) ([]transport.IssueSummaryResponse, error) {
	params := repository.SearchParams{Limit: searchLimit}

	if req.Type != "" {
		t, ok := domain.ParseType(req.Type)
		if !ok {
			return nil, apperr.BadRequest(msgInvalidIssueType)
		}
		params.Type = &t
	}
	if req.Status != "" {
		st, ok := domain.ParseStatus(req.Status)
		if !ok {
			return nil, apperr.BadRequest(msgUnknownStatus)
		}
		params.Status = &st
	}

	items, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return toSummaries(items), nil
}

// MapPins lists every issue that is not closed.
func (s *Service) MapPins(ctx context.Context, req transport.MapRequest) ([]transport.MapPinResponse, error) {
	var params repository.MapParams
	if req.Type != "" {
		t, ok := domain.ParseType(req.Type)
		if !ok {
			return nil, apperr.BadRequest(msgInvalidIssueType)
		}
		params.Type = &t
	}

	pins, err := s.repo.ListMapPins(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]transport.MapPinResponse, 0, len(pins))
	for _, pin := range pins {
		out = append(out, transport.MapPinResponse{
			ID:       pin.ID,
			Type:     string(pin.Type),
			Status:   string(pin.Status),
			Location: transport.LocationResponse{Latitude: pin.Latitude, Longitude: pin.Longitude},
		})
	}
	return out, nil
}

// Update changes the status and/or engineer of an issue on behalf of staff.
func (s *Service) Update(ctx context.Context, staffID uuid.UUID, id int64, req transport.UpdateIssueRequest) (transport.IssueResponse, error) {
	params := repository.UpdateParams{ID: id}

	if req.Status != nil {
		st, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return transport.IssueResponse{}, apperr.BadRequest(msgUnknownStatus)
		}
		params.Status = &st
	}
	if req.AssignedTo.Set {
		params.SetAssignee = true
		params.AssignedTo = req.AssignedTo.Value
	}
	if params.Status == nil && !params.SetAssignee {
		return transport.IssueResponse{}, apperr.BadRequest(msgNothingToUpdate)
	}

	res, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.IssueResponse{}, err
	}

	if res.Before.Status != res.After.Status {
		s.log.Info("issue status changed", "id", id, "from", res.Before.Status, "to", res.After.Status)
		s.bus.Publish(ctx, events.IssueStatusChanged{
			BaseEvent:  events.NewBaseEvent(),
			IssueID:    id,
			OldStatus:  string(res.Before.Status),
			NewStatus:  string(res.After.Status),
			ReportedBy: res.After.ReportedBy,
			ChangedBy:  staffID,
		})
	}
	if !sameEngineer(res.Before.AssignedTo, res.After.AssignedTo) {
		s.bus.Publish(ctx, events.IssueAssigned{
			BaseEvent:  events.NewBaseEvent(),
			IssueID:    id,
			EngineerID: res.After.AssignedTo,
		})
	}

	return s.toIssueResponse(ctx, res.After), nil
}

// QRCode renders a PNG QR code linking to the public page of an issue.
func (s *Service) QRCode(ctx context.Context, id int64) ([]byte, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(s.IssueURL(id), qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// IssueURL is the public link of an issue in the web app.
func (s *Service) IssueURL(id int64) string {
	return fmt.Sprintf("%s/issues/%d", strings.TrimRight(s.cfg.GetAppBaseURL(), "/"), id)
}

func (s *Service) recordRejection(ctx context.Context, source string, result formcheck.ValidationResult) {
	fields := make([]string, 0, len(result.Violations))
	kinds := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		fields = append(fields, v.Field)
		kinds = append(kinds, string(v.Kind))
		if s.recorder != nil {
			s.recorder.ValidationFailed(v.Field, string(v.Kind))
		}
	}
	s.log.WithContext(ctx).ValidationRejected(source, fields, kinds)
}

func sameEngineer(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Service) toIssueResponse(ctx context.Context, issue repository.Issue) transport.IssueResponse {
	images := issue.Images
	if images == nil {
		images = []string{}
	}
	return transport.IssueResponse{
		ID:          issue.ID,
		Type:        string(issue.Type),
		TypeLabel:   issue.Type.Label(),
		Status:      string(issue.Status),
		Description: issue.Description,
		Location:    transport.LocationResponse{Latitude: issue.Latitude, Longitude: issue.Longitude},
		Images:      images,
		ImageURLs:   s.imageURLs(ctx, images),
		ReportedBy:  issue.ReportedBy.String(),
		AssignedTo:  issue.AssignedTo,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
		ClosedAt:    issue.ClosedAt,
	}
}

func toSummaries(items []repository.Issue) []transport.IssueSummaryResponse {
	out := make([]transport.IssueSummaryResponse, 0, len(items))
	for _, issue := range items {
		out = append(out, transport.IssueSummaryResponse{
			ID:          issue.ID,
			Type:        string(issue.Type),
			Status:      string(issue.Status),
			Description: sanitize.Truncate(issue.Description, summaryDescLength),
			Location:    transport.LocationResponse{Latitude: issue.Latitude, Longitude: issue.Longitude},
			AssignedTo:  issue.AssignedTo,
			CreatedAt:   issue.CreatedAt,
		})
	}
	return out
}
