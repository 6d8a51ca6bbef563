package email

import (
	"context"
	"fmt"
	"time"

	"chalkstone_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates a sender from the SMTP settings.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.GetSMTPHost(),
		port:     cfg.GetSMTPPort(),
		username: cfg.GetSMTPUsername(),
		password: cfg.GetSMTPPassword(),
		from:     cfg.GetSMTPFrom(),
	}
}

// NewSender returns an SMTPSender when SMTP is configured and a NoopSender
// otherwise.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(cfg)
}

func (s *SMTPSender) SendIssueStatusEmail(ctx context.Context, toEmail string, data IssueStatusEmail) error {
	content, err := renderEmail("issue_status", issueStatusEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your report has been updated",
			Heading:  "Your report has been updated",
			CTALabel: "View report",
			CTAURL:   data.IssueURL,
		},
		IssueStatusEmail: data,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectIssueStatusFmt, data.IssueID, data.Status), content)
}

func (s *SMTPSender) SendIssueReceivedEmail(ctx context.Context, toEmail string, data IssueReceivedEmail) error {
	content, err := renderEmail("issue_received", issueReceivedEmailData{
		baseEmailData: baseEmailData{
			Title:    "Report received",
			Heading:  "Thank you for your report",
			CTALabel: "View report",
			CTAURL:   data.IssueURL,
		},
		IssueReceivedEmail: data,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectIssueReceivedFmt, data.IssueID), content)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject string, content renderedEmail) error {
	msg, err := s.buildMessage(toEmail, subject, content)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(toEmail, subject string, content renderedEmail) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, content.Text)
	msg.AddAlternativeString(gomail.TypeTextHTML, content.HTML)
	return msg, nil
}
