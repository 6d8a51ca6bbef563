package repository

import (
	"context"
	"errors"
	"fmt"

	"chalkstone_backend/internal/issues/domain"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	issueNotFoundMessage    = "issue not found"
	engineerNotFoundMessage = "engineer not found"
)

const issueColumns = `id, type, status, description, latitude, longitude, images,
	reported_by, assigned_to, created_at, updated_at, closed_at`

const insertIssueQuery = `
	INSERT INTO issues (type, status, description, latitude, longitude, images, reported_by)
	VALUES ($1, 'NEW', $2, $3, $4, $5, $6)
	RETURNING ` + issueColumns

const getIssueQuery = `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`

const lockIssueQuery = `SELECT ` + issueColumns + ` FROM issues WHERE id = $1 FOR UPDATE`

// closed_at is stamped on the first move into RESOLVED or CLOSED and
// cleared when an issue is reopened.
const updateIssueQuery = `
	UPDATE issues SET
		status = COALESCE($2, status),
		assigned_to = CASE WHEN $3 THEN $4 ELSE assigned_to END,
		closed_at = CASE
			WHEN $2::text IS NULL THEN closed_at
			WHEN $2 IN ('RESOLVED', 'CLOSED') THEN COALESCE(closed_at, now())
			ELSE NULL
		END,
		updated_at = now()
	WHERE id = $1
	RETURNING ` + issueColumns

const listIssuesQuery = `
	SELECT ` + issueColumns + `, COUNT(*) OVER() AS total
	FROM issues
	ORDER BY created_at DESC, id DESC
	LIMIT $1 OFFSET $2`

const countIssuesQuery = `SELECT COUNT(*) FROM issues`

const searchIssuesQuery = `
	SELECT ` + issueColumns + `
	FROM issues
	WHERE ($1::text IS NULL OR type = $1)
	  AND ($2::text IS NULL OR status = $2)
	ORDER BY created_at DESC, id DESC
	LIMIT $3`

const mapPinsQuery = `
	SELECT id, type, status, latitude, longitude
	FROM issues
	WHERE status <> 'CLOSED'
	  AND ($1::text IS NULL OR type = $1)
	ORDER BY created_at DESC`

const reporterQuery = `
	SELECT u.id, u.username, u.email
	FROM issues i
	JOIN users u ON u.id = i.reported_by
	WHERE i.id = $1`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new issues repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create stores a new issue with status NEW.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Issue, error) {
	images := params.Images
	if images == nil {
		images = []string{}
	}

	issue, err := scanIssue(r.pool.QueryRow(ctx, insertIssueQuery,
		params.Type, params.Description, params.Latitude, params.Longitude, images, params.ReportedBy,
	))
	if err != nil {
		return Issue{}, fmt.Errorf("create issue: %w", err)
	}
	return issue, nil
}

// GetByID retrieves an issue by its ID.
func (r *Repo) GetByID(ctx context.Context, id int64) (Issue, error) {
	issue, err := scanIssue(r.pool.QueryRow(ctx, getIssueQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Issue{}, apperr.NotFound(issueNotFoundMessage)
		}
		return Issue{}, fmt.Errorf("get issue by id: %w", err)
	}
	return issue, nil
}

// Update applies a staff update inside a transaction and returns the issue
// before and after the change.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (UpdateResult, error) {
	var result UpdateResult

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		before, err := scanIssue(tx.QueryRow(ctx, lockIssueQuery, params.ID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound(issueNotFoundMessage)
			}
			return fmt.Errorf("lock issue: %w", err)
		}

		after, err := scanIssue(tx.QueryRow(ctx, updateIssueQuery,
			params.ID, statusArg(params.Status), params.SetAssignee, params.AssignedTo,
		))
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return apperr.NotFound(engineerNotFoundMessage)
			}
			return fmt.Errorf("update issue: %w", err)
		}

		result = UpdateResult{Before: before, After: after}
		return nil
	})
	if err != nil {
		return UpdateResult{}, err
	}
	return result, nil
}

// List pages through all issues, newest first, and returns the total count.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Issue, int, error) {
	rows, err := r.pool.Query(ctx, listIssuesQuery, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	issues := make([]Issue, 0, params.Limit)
	total := 0
	for rows.Next() {
		var issue Issue
		if err := rows.Scan(append(issueDest(&issue), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list issues: %w", err)
	}

	// a page past the end has no rows to carry the window count
	if len(issues) == 0 && params.Offset > 0 {
		if err := r.pool.QueryRow(ctx, countIssuesQuery).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count issues: %w", err)
		}
	}
	return issues, total, nil
}

// Search filters issues by type and status.
func (r *Repo) Search(ctx context.Context, params SearchParams) ([]Issue, error) {
	var typeArg, statusArg *string
	if params.Type != nil {
		s := string(*params.Type)
		typeArg = &s
	}
	if params.Status != nil {
		s := string(*params.Status)
		statusArg = &s
	}

	rows, err := r.pool.Query(ctx, searchIssuesQuery, typeArg, statusArg, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// ListMapPins returns every issue that is not closed.
func (r *Repo) ListMapPins(ctx context.Context, params MapParams) ([]MapPin, error) {
	var typeArg *string
	if params.Type != nil {
		s := string(*params.Type)
		typeArg = &s
	}

	rows, err := r.pool.Query(ctx, mapPinsQuery, typeArg)
	if err != nil {
		return nil, fmt.Errorf("list map pins: %w", err)
	}
	defer rows.Close()

	pins := make([]MapPin, 0)
	for rows.Next() {
		var pin MapPin
		if err := rows.Scan(&pin.ID, &pin.Type, &pin.Status, &pin.Latitude, &pin.Longitude); err != nil {
			return nil, fmt.Errorf("scan map pin: %w", err)
		}
		pins = append(pins, pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list map pins: %w", err)
	}
	return pins, nil
}

// GetReporter returns the account that reported issueID.
func (r *Repo) GetReporter(ctx context.Context, issueID int64) (Reporter, error) {
	var rep Reporter
	err := r.pool.QueryRow(ctx, reporterQuery, issueID).Scan(&rep.UserID, &rep.Username, &rep.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reporter{}, apperr.NotFound(issueNotFoundMessage)
		}
		return Reporter{}, fmt.Errorf("get reporter: %w", err)
	}
	return rep, nil
}

func statusArg(status *domain.IssueStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func issueDest(issue *Issue) []any {
	return []any{
		&issue.ID, &issue.Type, &issue.Status, &issue.Description, &issue.Latitude, &issue.Longitude,
		&issue.Images, &issue.ReportedBy, &issue.AssignedTo, &issue.CreatedAt, &issue.UpdatedAt, &issue.ClosedAt,
	}
}

func scanIssue(row pgx.Row) (Issue, error) {
	var issue Issue
	if err := row.Scan(issueDest(&issue)...); err != nil {
		return Issue{}, err
	}
	return issue, nil
}

func collectIssues(rows pgx.Rows) ([]Issue, error) {
	issues := make([]Issue, 0)
	for rows.Next() {
		var issue Issue
		if err := rows.Scan(issueDest(&issue)...); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return issues, nil
}
