package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chalkstone_backend/internal/analytics/repository"
	"chalkstone_backend/internal/analytics/service"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct{}

func (stubRepo) IssueCounts(context.Context, repository.DateRange) ([]repository.IssueCount, error) {
	return []repository.IssueCount{{Type: "POTHOLE", Status: "NEW", Month: "2024-05", Count: 2}}, nil
}

func (stubRepo) ResolutionStats(context.Context) ([]repository.ResolutionStat, error) {
	return []repository.ResolutionStat{{Type: "POTHOLE", AvgSeconds: 90000, Count: 1}}, nil
}

func (stubRepo) EngineerLoads(context.Context) ([]repository.EngineerLoad, error) {
	return nil, nil
}

func (stubRepo) EngineerResolutions(context.Context) ([]repository.EngineerResolution, error) {
	return nil, nil
}

func (stubRepo) Timeline(context.Context, int) ([]repository.TimelinePoint, error) {
	return nil, nil
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := New(service.New(stubRepo{}, nil, logger.Nop()), validator.New())
	h.RegisterRoutes(engine.Group("/analytics"))
	return engine
}

func get(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIssueAnalytics(t *testing.T) {
	engine := newEngine()

	rec := get(engine, "/analytics/issues?startDate=2024-05-01&endDate=2024-05-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"total_issues": 2,
		"issues_by_type": {"POTHOLE": 2},
		"issues_by_status": {"NEW": 2},
		"issues_by_month": {"2024-05": 2}
	}`, rec.Body.String())

	rec = get(engine, "/analytics/issues?startDate=31-05-2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "startDate")

	rec = get(engine, "/analytics/issues?startDate=2024-06-01&endDate=2024-05-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolutionTime(t *testing.T) {
	rec := get(newEngine(), "/analytics/resolution-time")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"POTHOLE": "1d 1h"}`, rec.Body.String())
}

func TestDashboard(t *testing.T) {
	rec := get(newEngine(), "/analytics/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["totalIssues"])
	assert.EqualValues(t, 2, body["pendingIssues"])
	assert.Equal(t, "1d 1h", body["avgResolutionTime"])
	assert.Equal(t, []any{}, body["staffPerformance"])
}

func TestEngineerPerformanceEmpty(t *testing.T) {
	rec := get(newEngine(), "/analytics/engineers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
