package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	engineerNotFoundMessage = "engineer not found"
	emailTakenMessage       = "an engineer with this email already exists"
)

const engineerColumns = `id, name, email, phone, specialization, join_date, created_at, updated_at`

const listEngineersQuery = `SELECT ` + engineerColumns + ` FROM engineers ORDER BY name, id`

const getEngineerQuery = `SELECT ` + engineerColumns + ` FROM engineers WHERE id = $1`

const insertEngineerQuery = `
	INSERT INTO engineers (name, email, phone, specialization, join_date)
	VALUES ($1, $2, $3, $4, COALESCE($5::date, CURRENT_DATE))
	RETURNING ` + engineerColumns

// xmax = 0 only for freshly inserted rows.
const upsertEngineerQuery = `
	INSERT INTO engineers (name, email, phone, specialization, join_date)
	VALUES ($1, $2, $3, $4, COALESCE($5::date, CURRENT_DATE))
	ON CONFLICT (email) DO UPDATE SET
		name = EXCLUDED.name,
		phone = EXCLUDED.phone,
		specialization = EXCLUDED.specialization,
		join_date = COALESCE($5::date, engineers.join_date),
		updated_at = now()
	RETURNING ` + engineerColumns + `, (xmax = 0) AS inserted`

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new engineers repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// List returns all engineers ordered by name.
func (r *Repo) List(ctx context.Context) ([]Engineer, error) {
	rows, err := r.pool.Query(ctx, listEngineersQuery)
	if err != nil {
		return nil, fmt.Errorf("list engineers: %w", err)
	}
	defer rows.Close()

	engineers := make([]Engineer, 0)
	for rows.Next() {
		var e Engineer
		if err := rows.Scan(engineerDest(&e)...); err != nil {
			return nil, fmt.Errorf("scan engineer: %w", err)
		}
		engineers = append(engineers, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list engineers: %w", err)
	}
	return engineers, nil
}

// GetByID retrieves an engineer by ID.
func (r *Repo) GetByID(ctx context.Context, id int64) (Engineer, error) {
	var e Engineer
	if err := r.pool.QueryRow(ctx, getEngineerQuery, id).Scan(engineerDest(&e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Engineer{}, apperr.NotFound(engineerNotFoundMessage)
		}
		return Engineer{}, fmt.Errorf("get engineer: %w", err)
	}
	return e, nil
}

// Create stores a new engineer. A duplicate e-mail is a conflict.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Engineer, error) {
	var e Engineer
	err := r.pool.QueryRow(ctx, insertEngineerQuery,
		params.Name, params.Email, params.Phone, params.Specialization, joinDateArg(params.JoinDate),
	).Scan(engineerDest(&e)...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Engineer{}, apperr.Conflict(emailTakenMessage)
		}
		return Engineer{}, fmt.Errorf("create engineer: %w", err)
	}
	return e, nil
}

// Upsert creates or updates an engineer by e-mail.
func (r *Repo) Upsert(ctx context.Context, params CreateParams) (Engineer, bool, error) {
	var (
		e        Engineer
		inserted bool
	)
	err := r.pool.QueryRow(ctx, upsertEngineerQuery,
		params.Name, params.Email, params.Phone, params.Specialization, joinDateArg(params.JoinDate),
	).Scan(append(engineerDest(&e), &inserted)...)
	if err != nil {
		return Engineer{}, false, fmt.Errorf("upsert engineer: %w", err)
	}
	return e, inserted, nil
}

func joinDateArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func engineerDest(e *Engineer) []any {
	return []any{&e.ID, &e.Name, &e.Email, &e.Phone, &e.Specialization, &e.JoinDate, &e.CreatedAt, &e.UpdatedAt}
}
