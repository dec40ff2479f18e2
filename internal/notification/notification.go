package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/Yaroslav326/TaskManagement/internal"
)

// Mailer delivers a plain-text notification to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	cfg    internal.MailerConfig
	logger *slog.Logger
}

func NewSMTPMailer(cfg internal.MailerConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	if err := smtp.SendMail(addr, nil, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.Info("notification mail sent", "to", to, "subject", subject)
	return nil
}

// LogMailer records notifications in the log instead of delivering them.
// Used when the mailer is disabled, in development and in tests.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("notification (mailer disabled)",
		"to", to,
		"subject", subject,
		"body", body)
	return nil
}

// NewMailer picks the SMTP or log implementation based on config.
func NewMailer(cfg internal.MailerConfig, logger *slog.Logger) Mailer {
	if cfg.Enabled && cfg.SMTPHost != "" {
		return NewSMTPMailer(cfg, logger)
	}
	return NewLogMailer(logger)
}
