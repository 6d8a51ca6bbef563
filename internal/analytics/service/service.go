// Package service computes issue analytics and keeps them in a read-through
// cache that issue events invalidate.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"chalkstone_backend/internal/analytics/repository"
	"chalkstone_backend/internal/analytics/transport"
	"chalkstone_backend/internal/events"
	"chalkstone_backend/internal/issues/domain"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const (
	dateLayout   = "2006-01-02"
	timelineDays = 30
)

// Cache stores computed results. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// Service provides issue analytics.
type Service struct {
	repo  repository.Repository
	cache Cache
	log   *logger.Logger
}

// New creates a new analytics service. cache may be nil.
func New(repo repository.Repository, cache Cache, log *logger.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// IssueAnalytics counts issues created between start and end, both
// inclusive dates in YYYY-MM-DD form. Empty bounds are open.
func (s *Service) IssueAnalytics(ctx context.Context, start, end string) (transport.IssueAnalyticsResponse, error) {
	dr, err := parseRange(start, end)
	if err != nil {
		return transport.IssueAnalyticsResponse{}, err
	}

	key := fmt.Sprintf("issues:%s:%s", start, end)
	return cached(ctx, s, key, func(ctx context.Context) (transport.IssueAnalyticsResponse, error) {
		counts, err := s.repo.IssueCounts(ctx, dr)
		if err != nil {
			return transport.IssueAnalyticsResponse{}, err
		}
		return summarizeCounts(counts), nil
	})
}

// ResolutionTimes returns the average time to closure per issue type.
func (s *Service) ResolutionTimes(ctx context.Context) (map[string]string, error) {
	return cached(ctx, s, "resolution", func(ctx context.Context) (map[string]string, error) {
		stats, err := s.repo.ResolutionStats(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(stats))
		for _, st := range stats {
			out[st.Type] = FormatDuration(st.AvgSeconds)
		}
		return out, nil
	})
}

// EngineerPerformance returns the workload of every engineer, busiest first.
func (s *Service) EngineerPerformance(ctx context.Context) ([]transport.EngineerPerformance, error) {
	return cached(ctx, s, "engineers", s.engineerPerformance)
}

// Dashboard assembles the staff dashboard from the individual queries.
func (s *Service) Dashboard(ctx context.Context) (transport.DashboardResponse, error) {
	return cached(ctx, s, "dashboard", s.dashboard)
}

// Invalidate drops all cached results.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// Warm recomputes the shared results after dropping stale entries.
func (s *Service) Warm(ctx context.Context) error {
	if err := s.Invalidate(ctx); err != nil {
		return err
	}
	if _, err := s.Dashboard(ctx); err != nil {
		return err
	}
	if _, err := s.ResolutionTimes(ctx); err != nil {
		return err
	}
	_, err := s.EngineerPerformance(ctx)
	return err
}

// Subscribe invalidates the cache whenever issues change.
func (s *Service) Subscribe(bus events.Bus) {
	handler := events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if err := s.Invalidate(ctx); err != nil {
			s.log.Warn("analytics cache invalidation failed", "event", e.EventName(), "error", err)
		}
		return nil
	})
	bus.Subscribe(events.IssueReported{}.EventName(), handler)
	bus.Subscribe(events.IssueStatusChanged{}.EventName(), handler)
	bus.Subscribe(events.IssueAssigned{}.EventName(), handler)
}

func (s *Service) engineerPerformance(ctx context.Context) ([]transport.EngineerPerformance, error) {
	var (
		loads       []repository.EngineerLoad
		resolutions []repository.EngineerResolution
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loads, err = s.repo.EngineerLoads(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		resolutions, err = s.repo.EngineerResolutions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildPerformance(loads, resolutions), nil
}

func (s *Service) dashboard(ctx context.Context) (transport.DashboardResponse, error) {
	var (
		counts      []repository.IssueCount
		stats       []repository.ResolutionStat
		timeline    []repository.TimelinePoint
		performance []transport.EngineerPerformance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.repo.IssueCounts(gctx, repository.DateRange{})
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.repo.ResolutionStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		timeline, err = s.repo.Timeline(gctx, timelineDays)
		return err
	})
	g.Go(func() error {
		var err error
		performance, err = s.engineerPerformance(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.DashboardResponse{}, err
	}

	return buildDashboard(counts, stats, timeline, performance), nil
}

// cached reads key from the cache or computes and stores it. Cache failures
// are logged and never fail the request.
func cached[T any](ctx context.Context, s *Service, key string, compute func(context.Context) (T, error)) (T, error) {
	if s.cache != nil {
		var hit T
		found, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			s.log.Warn("analytics cache read failed", "key", key, "error", err)
		} else if found {
			return hit, nil
		}
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, value); err != nil {
			s.log.Warn("analytics cache write failed", "key", key, "error", err)
		}
	}
	return value, nil
}

func parseRange(start, end string) (repository.DateRange, error) {
	var dr repository.DateRange

	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return dr, apperr.BadRequest("invalid startDate")
		}
		dr.Start = &t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return dr, apperr.BadRequest("invalid endDate")
		}
		next := t.AddDate(0, 0, 1)
		dr.End = &next
	}
	if dr.Start != nil && dr.End != nil && !dr.Start.Before(*dr.End) {
		return dr, apperr.BadRequest("startDate must not be after endDate")
	}
	return dr, nil
}

// FormatDuration renders seconds as "Xd Yh". Negative values count as zero.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	days := total / 86400
	hours := (total % 86400) / 3600
	return fmt.Sprintf("%dd %dh", days, hours)
}

func summarizeCounts(counts []repository.IssueCount) transport.IssueAnalyticsResponse {
	out := transport.IssueAnalyticsResponse{
		IssuesByType:   make(map[string]int),
		IssuesByStatus: make(map[string]int),
		IssuesByMonth:  make(map[string]int),
	}
	for _, c := range counts {
		out.TotalIssues += c.Count
		out.IssuesByType[c.Type] += c.Count
		out.IssuesByStatus[c.Status] += c.Count
		out.IssuesByMonth[c.Month] += c.Count
	}
	return out
}

func buildPerformance(loads []repository.EngineerLoad, resolutions []repository.EngineerResolution) []transport.EngineerPerformance {
	avg := make(map[int64]float64, len(resolutions))
	for _, r := range resolutions {
		avg[r.EngineerID] = r.AvgSeconds
	}

	byID := make(map[int64]*transport.EngineerPerformance)
	order := make([]int64, 0)
	for _, l := range loads {
		p, ok := byID[l.EngineerID]
		if !ok {
			p = &transport.EngineerPerformance{
				Engineer:             transport.EngineerRef{ID: l.EngineerID, Name: l.Name},
				ResolvedIssuesByType: make(map[string]int),
				AssignedIssuesByType: make(map[string]int),
				AvgResolutionSeconds: avg[l.EngineerID],
				AvgResolutionTime:    FormatDuration(avg[l.EngineerID]),
			}
			byID[l.EngineerID] = p
			order = append(order, l.EngineerID)
		}
		if l.Type == "" || l.Count == 0 {
			continue
		}
		if l.Done {
			p.IssuesResolved += l.Count
			p.ResolvedIssuesByType[l.Type] += l.Count
		} else {
			p.IssuesAssigned += l.Count
			p.AssignedIssuesByType[l.Type] += l.Count
		}
		p.TotalIssues += l.Count
	}

	out := make([]transport.EngineerPerformance, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalIssues > out[j].TotalIssues
	})
	return out
}

func buildDashboard(
	counts []repository.IssueCount,
	stats []repository.ResolutionStat,
	timeline []repository.TimelinePoint,
	performance []transport.EngineerPerformance,
) transport.DashboardResponse {
	summary := summarizeCounts(counts)

	out := transport.DashboardResponse{
		TotalIssues:      summary.TotalIssues,
		IssuesByType:     make([]transport.ChartValue, 0, len(domain.AllTypes)),
		IssuesByStatus:   make([]transport.ChartValue, 0, len(domain.AllStatuses)),
		IssuesTimeline:   make([]transport.TimelineValue, 0, len(timeline)),
		StaffPerformance: make([]transport.StaffPerformance, 0, len(performance)),
	}

	for _, t := range domain.AllTypes {
		if n := summary.IssuesByType[string(t)]; n > 0 {
			out.IssuesByType = append(out.IssuesByType, transport.ChartValue{Name: t.Label(), Value: n})
		}
	}
	for _, st := range domain.AllStatuses {
		n := summary.IssuesByStatus[string(st)]
		out.IssuesByStatus = append(out.IssuesByStatus, transport.ChartValue{Name: st.Label(), Value: n})
		if st.Done() {
			out.ResolvedIssues += n
		}
	}
	out.PendingIssues = out.TotalIssues - out.ResolvedIssues

	var weighted float64
	var closed int
	for _, st := range stats {
		weighted += st.AvgSeconds * float64(st.Count)
		closed += st.Count
	}
	if closed > 0 {
		out.AvgResolutionTime = FormatDuration(weighted / float64(closed))
	} else {
		out.AvgResolutionTime = FormatDuration(0)
	}

	for _, p := range timeline {
		out.IssuesTimeline = append(out.IssuesTimeline, transport.TimelineValue{
			Date:     p.Date.Format(dateLayout),
			Reported: p.Reported,
			Resolved: p.Resolved,
		})
	}

	for _, p := range performance {
		out.StaffPerformance = append(out.StaffPerformance, transport.StaffPerformance{
			StaffName: p.Engineer.Name,
			Assigned:  p.IssuesAssigned,
			Resolved:  p.IssuesResolved,
		})
	}
	return out
}
