package repository

import (
	"context"
	"time"

	"chalkstone_backend/internal/issues/domain"

	"github.com/google/uuid"
)

// Issue is a stored citizen report.
type Issue struct {
	ID          int64
	Type        domain.IssueType
	Status      domain.IssueStatus
	Description string
	Latitude    float64
	Longitude   float64
	Images      []string
	ReportedBy  uuid.UUID
	AssignedTo  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// MapPin is the subset of an issue drawn on the public map.
type MapPin struct {
	ID        int64
	Type      domain.IssueType
	Status    domain.IssueStatus
	Latitude  float64
	Longitude float64
}

// Reporter identifies the citizen behind an issue.
type Reporter struct {
	UserID   uuid.UUID
	Username string
	Email    *string
}

// CreateParams contains parameters for storing a new issue.
type CreateParams struct {
	Type        domain.IssueType
	Description string
	Latitude    float64
	Longitude   float64
	Images      []string
	ReportedBy  uuid.UUID
}

// UpdateParams contains a staff update. A nil Status keeps the current one.
// When SetAssignee is true AssignedTo replaces the engineer (nil unassigns).
type UpdateParams struct {
	ID          int64
	Status      *domain.IssueStatus
	SetAssignee bool
	AssignedTo  *int64
}

// UpdateResult holds the issue before and after an update.
type UpdateResult struct {
	Before Issue
	After  Issue
}

// ListParams pages through all issues, newest first.
type ListParams struct {
	Offset int
	Limit  int
}

// SearchParams filters issues. Nil filters match everything.
type SearchParams struct {
	Type   *domain.IssueType
	Status *domain.IssueStatus
	Limit  int
}

// MapParams filters the public map feed.
type MapParams struct {
	Type *domain.IssueType
}

// IssueReader provides read operations for issues.
type IssueReader interface {
	GetByID(ctx context.Context, id int64) (Issue, error)
	List(ctx context.Context, params ListParams) ([]Issue, int, error)
	Search(ctx context.Context, params SearchParams) ([]Issue, error)
	ListMapPins(ctx context.Context, params MapParams) ([]MapPin, error)
	GetReporter(ctx context.Context, issueID int64) (Reporter, error)
}

// IssueWriter provides write operations for issues.
type IssueWriter interface {
	Create(ctx context.Context, params CreateParams) (Issue, error)
	Update(ctx context.Context, params UpdateParams) (UpdateResult, error)
}

// Repository combines all issue repository operations.
type Repository interface {
	IssueReader
	IssueWriter
}
