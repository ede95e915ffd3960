// Package mailer delivers accountability emails.
package mailer

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	Subject string
	Text    string
}

// Mailer sends a message to the configured recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	APIKey      string
	FromName    string
	FromAddress string
	ToAddress   string
}

// Enabled reports whether enough is configured to send mail.
func (c Config) Enabled() bool {
	return c.APIKey != "" && c.FromAddress != "" && c.ToAddress != ""
}

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGrid struct {
	cfg    Config
	client sender
	logger *slog.Logger
}

var _ Mailer = (*SendGrid)(nil)

func NewSendGrid(cfg Config, logger *slog.Logger) *SendGrid {
	return &SendGrid{cfg: cfg, client: sendgrid.NewSendClient(cfg.APIKey), logger: logger}
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	email := s.build(msg)
	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", resp.StatusCode)
	}

	s.logger.InfoContext(ctx, "email sent", "to", s.cfg.ToAddress, "status", resp.StatusCode)
	return nil
}

func (s *SendGrid) build(msg Message) *mail.SGMailV3 {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromAddress)
	to := mail.NewEmail("", s.cfg.ToAddress)
	body := "<p>" + html.EscapeString(msg.Text) + "</p>"
	return mail.NewSingleEmail(from, msg.Subject, to, msg.Text, body)
}

// Discard drops every message.
type Discard struct{}

func (Discard) Send(ctx context.Context, msg Message) error {
	return nil
}

// New returns a SendGrid mailer when cfg is complete and Discard otherwise.
func New(cfg Config, logger *slog.Logger) Mailer {
	if !cfg.Enabled() {
		return Discard{}
	}
	return NewSendGrid(cfg, logger)
}
