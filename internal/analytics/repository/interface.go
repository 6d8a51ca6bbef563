package repository

import (
	"context"
	"time"
)

// IssueCount is one (type, status, month) bucket of issues.
type IssueCount struct {
	Type   string
	Status string
	Month  string
	Count  int
}

// DateRange bounds issue creation time. Nil ends are open; End is exclusive.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ResolutionStat is the average time from report to closure for one type.
type ResolutionStat struct {
	Type       string
	AvgSeconds float64
	Count      int
}

// EngineerLoad is the per-type workload of one engineer.
type EngineerLoad struct {
	EngineerID int64
	Name       string
	Type       string
	Done       bool
	Count      int
}

// EngineerResolution is the average resolution time of one engineer.
type EngineerResolution struct {
	EngineerID int64
	Name       string
	AvgSeconds float64
}

// TimelinePoint counts issues reported and closed on one day.
type TimelinePoint struct {
	Date     time.Time
	Reported int
	Resolved int
}

// Repository defines the analytics read model.
type Repository interface {
	IssueCounts(ctx context.Context, r DateRange) ([]IssueCount, error)
	ResolutionStats(ctx context.Context) ([]ResolutionStat, error)
	EngineerLoads(ctx context.Context) ([]EngineerLoad, error)
	EngineerResolutions(ctx context.Context) ([]EngineerResolution, error)
	Timeline(ctx context.Context, days int) ([]TimelinePoint, error)
}
