package repository

import (
	"context"
	"time"
)

// Engineer is a council field engineer that issues can be assigned to.
type Engineer struct {
	ID             int64
	Name           string
	Email          string
	Phone          string
	Specialization string
	JoinDate       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateParams contains parameters for adding an engineer.
// A zero JoinDate means today.
type CreateParams struct {
	Name           string
	Email          string
	Phone          string
	Specialization string
	JoinDate       time.Time
}

// Repository defines engineer storage operations.
type Repository interface {
	List(ctx context.Context) ([]Engineer, error)
	GetByID(ctx context.Context, id int64) (Engineer, error)
	Create(ctx context.Context, params CreateParams) (Engineer, error)
	// Upsert creates or updates an engineer keyed by e-mail and reports
	// whether a new row was inserted.
	Upsert(ctx context.Context, params CreateParams) (Engineer, bool, error)
}
