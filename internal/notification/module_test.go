package notification

import (
	"context"
	"errors"
	"testing"

	"chalkstone_backend/internal/email"
	"chalkstone_backend/internal/events"
	"chalkstone_backend/internal/issues/domain"
	issuerepo "chalkstone_backend/internal/issues/repository"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://report.example.gov.uk/" }

type testIssues struct {
	issues    map[int64]issuerepo.Issue
	reporters map[int64]issuerepo.Reporter
	err       error
}

func (r testIssues) GetByID(_ context.Context, id int64) (issuerepo.Issue, error) {
	if r.err != nil {
		return issuerepo.Issue{}, r.err
	}
	issue, ok := r.issues[id]
	if !ok {
		return issuerepo.Issue{}, apperr.NotFound("issue not found")
	}
	return issue, nil
}

func (r testIssues) GetReporter(_ context.Context, id int64) (issuerepo.Reporter, error) {
	reporter, ok := r.reporters[id]
	if !ok {
		return issuerepo.Reporter{}, apperr.NotFound("issue not found")
	}
	return reporter, nil
}

type testSender struct {
	status   []email.IssueStatusEmail
	received []email.IssueReceivedEmail
	to       []string
}

func (s *testSender) SendIssueStatusEmail(_ context.Context, to string, data email.IssueStatusEmail) error {
	s.to = append(s.to, to)
	s.status = append(s.status, data)
	return nil
}

func (s *testSender) SendIssueReceivedEmail(_ context.Context, to string, data email.IssueReceivedEmail) error {
	s.to = append(s.to, to)
	s.received = append(s.received, data)
	return nil
}

type testEnqueuer struct {
	statusCalls   []string
	reportedCalls []int64
}

func (e *testEnqueuer) EnqueueIssueStatusChanged(_ context.Context, eventID string, issueID int64, status string) error {
	e.statusCalls = append(e.statusCalls, eventID+":"+status)
	return nil
}

func (e *testEnqueuer) EnqueueIssueReported(_ context.Context, _ string, issueID int64) error {
	e.reportedCalls = append(e.reportedCalls, issueID)
	return nil
}

func strPtr(s string) *string { return &s }

func newTestIssues() testIssues {
	return testIssues{
		issues: map[int64]issuerepo.Issue{
			1: {ID: 1, Type: domain.TypeStreetLight, Status: domain.StatusInProgress},
			2: {ID: 2, Type: domain.TypePothole, Status: domain.StatusNew},
		},
		reporters: map[int64]issuerepo.Reporter{
			1: {UserID: uuid.New(), Username: "jo", Email: strPtr(" jo@example.com ")},
			2: {UserID: uuid.New(), Username: "anon"},
		},
	}
}

func TestStatusChangedSendsInline(t *testing.T) {
	sender := &testSender{}
	m := New(newTestIssues(), sender, testNotificationConfig{}, logger.Nop())

	err := m.Handle(context.Background(), events.IssueStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		IssueID:   1,
		NewStatus: string(domain.StatusInProgress),
	})
	require.NoError(t, err)

	require.Len(t, sender.status, 1)
	assert.Equal(t, []string{"jo@example.com"}, sender.to)
	assert.Equal(t, email.IssueStatusEmail{
		Username:  "jo",
		IssueID:   1,
		TypeLabel: "Street Light",
		Status:    "In Progress",
		IssueURL:  "https://report.example.gov.uk/issues/1",
	}, sender.status[0])
}

func TestReporterWithoutEmailIsSkipped(t *testing.T) {
	sender := &testSender{}
	m := New(newTestIssues(), sender, testNotificationConfig{}, logger.Nop())

	require.NoError(t, m.NotifyIssueStatusChanged(context.Background(), 2, "RESOLVED"))
	require.NoError(t, m.NotifyIssueReported(context.Background(), 2))
	require.NoError(t, m.NotifyIssueStatusChanged(context.Background(), 99, "RESOLVED"))
	assert.Empty(t, sender.to)
}

func TestLookupErrorsPropagate(t *testing.T) {
	issues := newTestIssues()
	issues.err = errors.New("db down")
	m := New(issues, &testSender{}, testNotificationConfig{}, logger.Nop())

	assert.Error(t, m.NotifyIssueStatusChanged(context.Background(), 1, "CLOSED"))
}

func TestEnqueuerTakesOver(t *testing.T) {
	sender := &testSender{}
	enqueuer := &testEnqueuer{}
	m := New(newTestIssues(), sender, testNotificationConfig{}, logger.Nop())
	m.SetEnqueuer(enqueuer)

	bus := events.NewInMemoryBus(logger.Nop())
	m.RegisterHandlers(bus)

	statusEvent := events.IssueStatusChanged{BaseEvent: events.NewBaseEvent(), IssueID: 1, NewStatus: "CLOSED"}
	require.NoError(t, bus.PublishSync(context.Background(), statusEvent))
	require.NoError(t, bus.PublishSync(context.Background(), events.IssueReported{BaseEvent: events.NewBaseEvent(), IssueID: 1}))

	assert.Equal(t, []string{statusEvent.ID.String() + ":CLOSED"}, enqueuer.statusCalls)
	assert.Equal(t, []int64{1}, enqueuer.reportedCalls)
	assert.Empty(t, sender.to)
}

func TestReportedSendsConfirmation(t *testing.T) {
	sender := &testSender{}
	m := New(newTestIssues(), sender, testNotificationConfig{}, logger.Nop())

	require.NoError(t, m.Handle(context.Background(), events.IssueReported{BaseEvent: events.NewBaseEvent(), IssueID: 1}))
	require.Len(t, sender.received, 1)
	assert.Equal(t, "Street Light", sender.received[0].TypeLabel)
}
