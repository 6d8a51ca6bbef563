package repository

import (
	"context"
	"errors"
	"fmt"

	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	userNotFoundMessage  = "user not found"
	usernameTakenMessage = "username or email already registered"
)

const userColumns = `id, username, email, password_hash, user_type, created_at, updated_at`

const insertUserQuery = `
	INSERT INTO users (username, email, password_hash, user_type)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + userColumns

// Usernames are matched case-insensitively so "Alice" cannot shadow "alice".
const getUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`

const getUserByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

// Repository implements AuthRepository with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUser stores a new account. Duplicate usernames or e-mails are a conflict.
func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, insertUserQuery,
		params.Username, params.Email, params.PasswordHash, params.UserType,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, apperr.Conflict(usernameTakenMessage)
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUserByUsername looks up an account by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, getUserByUsernameQuery, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound(userNotFoundMessage)
		}
		return User{}, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// GetUserByID looks up an account by ID.
func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, getUserByIDQuery, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound(userNotFoundMessage)
		}
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.UserType,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
