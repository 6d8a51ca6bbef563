package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const issueCountsQuery = `
	SELECT type, status, to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month, COUNT(*)
	FROM issues
	WHERE ($1::timestamptz IS NULL OR created_at >= $1)
	  AND ($2::timestamptz IS NULL OR created_at < $2)
	GROUP BY type, status, month
	ORDER BY month, type, status`

const resolutionStatsQuery = `
	SELECT type,
	       GREATEST(AVG(EXTRACT(EPOCH FROM (closed_at - created_at))), 0)::float8 AS avg_seconds,
	       COUNT(*)
	FROM issues
	WHERE closed_at IS NOT NULL
	GROUP BY type
	ORDER BY type`

// Engineers without issues appear once with a NULL type.
const engineerLoadsQuery = `
	SELECT e.id, e.name, COALESCE(i.type, ''), COALESCE(i.status IN ('RESOLVED', 'CLOSED'), false) AS done, COUNT(i.id)
	FROM engineers e
	LEFT JOIN issues i ON i.assigned_to = e.id
	GROUP BY e.id, e.name, i.type, done
	ORDER BY e.name, e.id`

const engineerResolutionsQuery = `
	SELECT e.id, e.name,
	       GREATEST(AVG(EXTRACT(EPOCH FROM (i.closed_at - i.created_at))), 0)::float8
	FROM engineers e
	JOIN issues i ON i.assigned_to = e.id
	WHERE i.closed_at IS NOT NULL
	GROUP BY e.id, e.name`

const timelineQuery = `
	SELECT d::date,
	       (SELECT COUNT(*) FROM issues WHERE (created_at AT TIME ZONE 'UTC')::date = d::date),
	       (SELECT COUNT(*) FROM issues WHERE (closed_at AT TIME ZONE 'UTC')::date = d::date)
	FROM generate_series(
		(now() AT TIME ZONE 'UTC')::date - ($1::int - 1),
		(now() AT TIME ZONE 'UTC')::date,
		interval '1 day'
	) AS d
	ORDER BY d`

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new analytics repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// IssueCounts groups issues created in r by type, status and month.
func (r *Repo) IssueCounts(ctx context.Context, dr DateRange) ([]IssueCount, error) {
	rows, err := r.pool.Query(ctx, issueCountsQuery, dr.Start, dr.End)
	if err != nil {
		return nil, fmt.Errorf("issue counts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (IssueCount, error) {
		var c IssueCount
		err := row.Scan(&c.Type, &c.Status, &c.Month, &c.Count)
		return c, err
	})
}

// ResolutionStats averages closed_at - created_at per issue type.
func (r *Repo) ResolutionStats(ctx context.Context) ([]ResolutionStat, error) {
	rows, err := r.pool.Query(ctx, resolutionStatsQuery)
	if err != nil {
		return nil, fmt.Errorf("resolution stats: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ResolutionStat, error) {
		var s ResolutionStat
		err := row.Scan(&s.Type, &s.AvgSeconds, &s.Count)
		return s, err
	})
}

// EngineerLoads counts issues per engineer, type and done flag.
func (r *Repo) EngineerLoads(ctx context.Context) ([]EngineerLoad, error) {
	rows, err := r.pool.Query(ctx, engineerLoadsQuery)
	if err != nil {
		return nil, fmt.Errorf("engineer loads: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (EngineerLoad, error) {
		var l EngineerLoad
		err := row.Scan(&l.EngineerID, &l.Name, &l.Type, &l.Done, &l.Count)
		return l, err
	})
}

// EngineerResolutions averages resolution time per engineer.
func (r *Repo) EngineerResolutions(ctx context.Context) ([]EngineerResolution, error) {
	rows, err := r.pool.Query(ctx, engineerResolutionsQuery)
	if err != nil {
		return nil, fmt.Errorf("engineer resolutions: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (EngineerResolution, error) {
		var e EngineerResolution
		err := row.Scan(&e.EngineerID, &e.Name, &e.AvgSeconds)
		return e, err
	})
}

// Timeline returns one point per day for the last days days, oldest first.
func (r *Repo) Timeline(ctx context.Context, days int) ([]TimelinePoint, error) {
	rows, err := r.pool.Query(ctx, timelineQuery, days)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TimelinePoint, error) {
		var p TimelinePoint
		err := row.Scan(&p.Date, &p.Reported, &p.Resolved)
		return p, err
	})
}
