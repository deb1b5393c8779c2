package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hollydays/wishlist-backend/pkg/config"
	"github.com/hollydays/wishlist-backend/pkg/logger"
	"github.com/wneessen/go-mail"
)

// Mailer sends plain-text email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail over SMTP using the configured relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTP(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("smtp host is required")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// LogMailer writes outbound mail to the log instead of delivering it. Used in
// dev and whenever SMTP is not configured.
type LogMailer struct {
	logg *logger.Logger
}

func NewLog(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{"to": to, "subject": subject})
		m.logg.Info(ctx, "email suppressed (smtp not configured)")
	}
	return nil
}

// FromConfig picks the SMTP mailer when a relay is configured, the log mailer otherwise.
func FromConfig(cfg config.SMTPConfig, logg *logger.Logger) (Mailer, error) {
	if cfg.Enabled() {
		return NewSMTP(cfg)
	}
	return NewLog(logg), nil
}
