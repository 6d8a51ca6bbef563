// Package email renders and delivers citizen notification e-mails.
package email

import (
	"context"
)

// IssueStatusEmail is the content of a status change notice.
type IssueStatusEmail struct {
	Username  string
	IssueID   int64
	TypeLabel string
	Status    string
	IssueURL  string
}

// IssueReceivedEmail confirms that a report was stored.
type IssueReceivedEmail struct {
	Username  string
	IssueID   int64
	TypeLabel string
	IssueURL  string
}

// Sender delivers notification e-mails.
type Sender interface {
	SendIssueStatusEmail(ctx context.Context, toEmail string, data IssueStatusEmail) error
	SendIssueReceivedEmail(ctx context.Context, toEmail string, data IssueReceivedEmail) error
}

// NoopSender drops every message. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendIssueStatusEmail(context.Context, string, IssueStatusEmail) error {
	return nil
}

func (NoopSender) SendIssueReceivedEmail(context.Context, string, IssueReceivedEmail) error {
	return nil
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
