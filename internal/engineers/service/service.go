package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"chalkstone_backend/internal/engineers/repository"
	"chalkstone_backend/internal/engineers/transport"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/phone"
	"chalkstone_backend/platform/sanitize"
	"chalkstone_backend/platform/validator"

	"gopkg.in/yaml.v3"
)

const (
	dateLayout         = "2006-01-02"
	msgInvalidPhone    = "invalid phone number"
	msgInvalidJoinDate = "invalid join date"
)

// Service provides business logic for the engineer directory.
type Service struct {
	repo repository.Repository
	val  *validator.Validator
	log  *logger.Logger
}

// New creates a new engineers service.
func New(repo repository.Repository, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{repo: repo, val: val, log: log}
}

// List returns all engineers.
func (s *Service) List(ctx context.Context) ([]transport.EngineerResponse, error) {
	engineers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.EngineerResponse, 0, len(engineers))
	for _, e := range engineers {
		out = append(out, toResponse(e))
	}
	return out, nil
}

// GetByID returns one engineer.
func (s *Service) GetByID(ctx context.Context, id int64) (transport.EngineerResponse, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.EngineerResponse{}, err
	}
	return toResponse(e), nil
}

// Create adds an engineer. The phone number is stored in E.164.
func (s *Service) Create(ctx context.Context, req transport.CreateEngineerRequest) (transport.EngineerResponse, error) {
	params, err := toParams(req)
	if err != nil {
		return transport.EngineerResponse{}, err
	}

	e, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.EngineerResponse{}, err
	}

	s.log.Info("engineer created", "id", e.ID, "specialization", e.Specialization)
	return toResponse(e), nil
}

// ImportEngineers reads a YAML seed file and upserts every engineer by
// e-mail. The whole file is checked before anything is written.
func (s *Service) ImportEngineers(ctx context.Context, r io.Reader) (transport.ImportResult, error) {
	var seed transport.SeedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return transport.ImportResult{}, nil
		}
		return transport.ImportResult{}, apperr.BadRequest("invalid seed file").WithOp("engineers.Import")
	}

	params := make([]repository.CreateParams, 0, len(seed.Engineers))
	for i, req := range seed.Engineers {
		if err := s.val.Struct(req); err != nil {
			return transport.ImportResult{}, apperr.Validation(fmt.Sprintf("engineer %d is invalid", i+1)).
				WithDetails(validator.FieldErrors(err))
		}
		p, err := toParams(req)
		if err != nil {
			return transport.ImportResult{}, fmt.Errorf("engineer %d: %w", i+1, err)
		}
		params = append(params, p)
	}

	var result transport.ImportResult
	for _, p := range params {
		_, inserted, err := s.repo.Upsert(ctx, p)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.log.Info("engineers imported", "created", result.Created, "updated", result.Updated)
	return result, nil
}

func toParams(req transport.CreateEngineerRequest) (repository.CreateParams, error) {
	phoneE164, ok := phone.ParseE164(req.Phone)
	if !ok {
		return repository.CreateParams{}, apperr.Validation(msgInvalidPhone).WithDetails(map[string]string{"phone": msgInvalidPhone})
	}

	var joinDate time.Time
	if req.JoinDate != "" {
		parsed, err := time.Parse(dateLayout, req.JoinDate)
		if err != nil {
			return repository.CreateParams{}, apperr.Validation(msgInvalidJoinDate)
		}
		joinDate = parsed
	}

	return repository.CreateParams{
		Name:           sanitize.Text(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          phoneE164,
		Specialization: sanitize.Text(req.Specialization),
		JoinDate:       joinDate,
	}, nil
}

func toResponse(e repository.Engineer) transport.EngineerResponse {
	return transport.EngineerResponse{
		ID:             e.ID,
		Name:           e.Name,
		Email:          e.Email,
		Phone:          e.Phone,
		Specialization: e.Specialization,
		JoinDate:       e.JoinDate.Format(dateLayout),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
