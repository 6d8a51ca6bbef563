// Package notification e-mails citizens when their reports change. It
// subscribes to issue events so the issues module never talks to a mail
// server.
package notification

import (
	"context"
	"fmt"
	"strings"

	"chalkstone_backend/internal/email"
	"chalkstone_backend/internal/events"
	"chalkstone_backend/internal/issues/domain"
	issuerepo "chalkstone_backend/internal/issues/repository"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/logger"
)

// IssueReader loads the issue and the citizen behind it.
type IssueReader interface {
	GetByID(ctx context.Context, id int64) (issuerepo.Issue, error)
	GetReporter(ctx context.Context, issueID int64) (issuerepo.Reporter, error)
}

// Enqueuer hands notifications to the background worker. The event ID
// deduplicates retries of the same event.
type Enqueuer interface {
	EnqueueIssueStatusChanged(ctx context.Context, eventID string, issueID int64, status string) error
	EnqueueIssueReported(ctx context.Context, eventID string, issueID int64) error
}

// Module sends citizen e-mails in response to issue events.
type Module struct {
	issues   IssueReader
	sender   email.Sender
	enqueuer Enqueuer
	baseURL  string
	log      *logger.Logger
}

// New creates the notification module. Without an enqueuer e-mails are
// sent inline from the event handler.
func New(issues IssueReader, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{
		issues:  issues,
		sender:  sender,
		baseURL: strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		log:     log,
	}
}

// SetEnqueuer routes notifications through the background worker.
func (m *Module) SetEnqueuer(e Enqueuer) { m.enqueuer = e }

// RegisterHandlers subscribes to the issue events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.IssueReported{}.EventName(), m)
	bus.Subscribe(events.IssueStatusChanged{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.IssueReported:
		return m.handleIssueReported(ctx, e)
	case events.IssueStatusChanged:
		return m.handleIssueStatusChanged(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleIssueReported(ctx context.Context, e events.IssueReported) error {
	if m.enqueuer != nil {
		return m.enqueuer.EnqueueIssueReported(ctx, e.ID.String(), e.IssueID)
	}
	return m.NotifyIssueReported(ctx, e.IssueID)
}

func (m *Module) handleIssueStatusChanged(ctx context.Context, e events.IssueStatusChanged) error {
	if m.enqueuer != nil {
		return m.enqueuer.EnqueueIssueStatusChanged(ctx, e.ID.String(), e.IssueID, e.NewStatus)
	}
	return m.NotifyIssueStatusChanged(ctx, e.IssueID, e.NewStatus)
}

// NotifyIssueStatusChanged e-mails the reporter about the new status. A
// reporter without an e-mail address is skipped.
func (m *Module) NotifyIssueStatusChanged(ctx context.Context, issueID int64, status string) error {
	issue, to, username, ok, err := m.recipient(ctx, issueID)
	if err != nil || !ok {
		return err
	}

	label := domain.IssueStatus(status).Label()
	if err := m.sender.SendIssueStatusEmail(ctx, to, email.IssueStatusEmail{
		Username:  username,
		IssueID:   issue.ID,
		TypeLabel: issue.Type.Label(),
		Status:    label,
		IssueURL:  m.issueURL(issue.ID),
	}); err != nil {
		return fmt.Errorf("send status email for issue %d: %w", issueID, err)
	}

	m.log.Info("issue status email sent", "issueId", issueID, "status", status)
	return nil
}

// NotifyIssueReported confirms receipt of a new report to the reporter.
func (m *Module) NotifyIssueReported(ctx context.Context, issueID int64) error {
	issue, to, username, ok, err := m.recipient(ctx, issueID)
	if err != nil || !ok {
		return err
	}

	if err := m.sender.SendIssueReceivedEmail(ctx, to, email.IssueReceivedEmail{
		Username:  username,
		IssueID:   issue.ID,
		TypeLabel: issue.Type.Label(),
		IssueURL:  m.issueURL(issue.ID),
	}); err != nil {
		return fmt.Errorf("send received email for issue %d: %w", issueID, err)
	}

	m.log.Info("issue received email sent", "issueId", issueID)
	return nil
}

// recipient resolves the issue and its reporter's address. ok is false when
// there is nobody to write to; a deleted issue is not an error.
func (m *Module) recipient(ctx context.Context, issueID int64) (issuerepo.Issue, string, string, bool, error) {
	issue, err := m.issues.GetByID(ctx, issueID)
	if err != nil {
		if isNotFound(err) {
			m.log.Warn("notification skipped, issue not found", "issueId", issueID)
			return issuerepo.Issue{}, "", "", false, nil
		}
		return issuerepo.Issue{}, "", "", false, err
	}

	reporter, err := m.issues.GetReporter(ctx, issueID)
	if err != nil {
		if isNotFound(err) {
			return issuerepo.Issue{}, "", "", false, nil
		}
		return issuerepo.Issue{}, "", "", false, err
	}

	if reporter.Email == nil || strings.TrimSpace(*reporter.Email) == "" {
		return issuerepo.Issue{}, "", "", false, nil
	}
	return issue, strings.TrimSpace(*reporter.Email), reporter.Username, true, nil
}

func (m *Module) issueURL(id int64) string {
	return fmt.Sprintf("%s/issues/%d", m.baseURL, id)
}

func isNotFound(err error) bool {
	return apperr.Is(err, apperr.KindNotFound)
}

var _ events.Handler = (*Module)(nil)
