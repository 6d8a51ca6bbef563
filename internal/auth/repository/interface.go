package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account types.
const (
	UserTypePublic = "public"
	UserTypeStaff  = "staff"
)

// User is a stored account.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        *string
	PasswordHash string
	UserType     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserParams contains parameters for creating an account.
type CreateUserParams struct {
	Username     string
	Email        *string
	PasswordHash string
	UserType     string
}

// UserReader provides read operations for accounts.
type UserReader interface {
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
}

// AuthRepository defines the interface for authentication data operations.
type AuthRepository interface {
	UserReader
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
