package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"

	"chalkstone_backend/internal/auth/password"
	"chalkstone_backend/internal/auth/repository"
	"chalkstone_backend/internal/auth/token"
	"chalkstone_backend/internal/auth/transport"
	"chalkstone_backend/internal/events"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgStaffNotAllowed    = "staff registration is not allowed"
)

// Service provides business logic for accounts and sign-in.
type Service struct {
	repo repository.AuthRepository
	cfg  config.AuthConfig
	bus  events.Bus
	log  *logger.Logger

	// dummyHash is compared against for unknown usernames so they take as
	// long as a wrong password.
	dummyHash func() string
}

// New creates a new auth service.
func New(repo repository.AuthRepository, cfg config.AuthConfig, bus events.Bus, log *logger.Logger) *Service {
	s := &Service{repo: repo, cfg: cfg, bus: bus, log: log}
	s.dummyHash = sync.OnceValue(func() string {
		hash, _ := password.Hash(uuid.NewString(), cfg.GetBcryptCost())
		return hash
	})
	return s
}

// Register creates an account and signs it in. Staff accounts need the
// configured registration secret.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (transport.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)

	userType := repository.UserTypePublic
	if req.IsStaff {
		if !s.staffSecretMatches(req.StaffSecret) {
			s.log.AuthEvent("register_staff", username, false, "bad staff secret")
			return transport.AuthResponse{}, apperr.Forbidden(msgStaffNotAllowed)
		}
		userType = repository.UserTypeStaff
	}

	hash, err := password.Hash(req.Password, s.cfg.GetBcryptCost())
	if err != nil {
		return transport.AuthResponse{}, err
	}

	var email *string
	if req.Email != nil {
		if trimmed := strings.ToLower(strings.TrimSpace(*req.Email)); trimmed != "" {
			email = &trimmed
		}
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		UserType:     userType,
	})
	if err != nil {
		return transport.AuthResponse{}, err
	}

	s.log.AuthEvent("register", user.Username, true, "")
	s.bus.Publish(ctx, events.UserRegistered{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Username:  user.Username,
		UserType:  user.UserType,
	})

	return s.issue(user)
}

// Login checks credentials and returns a fresh access token.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return transport.AuthResponse{}, err
		}
		_ = password.Compare(s.dummyHash(), req.Password)
		s.log.AuthEvent("login", username, false, "unknown user")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", username, false, "wrong password")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	s.log.AuthEvent("login", user.Username, true, "")
	return s.issue(user)
}

// GetMe returns the profile of the signed-in user.
func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *Service) issue(user repository.User) (transport.AuthResponse, error) {
	accessToken, err := token.SignAccessToken(
		s.cfg.GetJWTAccessSecret(),
		user.ID,
		token.RolesForUserType(user.UserType),
		s.cfg.GetAccessTokenTTL(),
	)
	if err != nil {
		return transport.AuthResponse{}, err
	}
	return transport.AuthResponse{Token: accessToken, User: toUserResponse(user)}, nil
}

func (s *Service) staffSecretMatches(given string) bool {
	want := s.cfg.GetStaffRegistrationSecret()
	if want == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		UserType:  user.UserType,
		IsStaff:   user.UserType == repository.UserTypeStaff,
		CreatedAt: user.CreatedAt,
	}
}
