package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/examhub/examhub-api/config"
)

// Message is the minimal contract the auth core depends on.
type Message struct {
	To      string
	Subject string
	Body    string // HTML
}

// Sender delivers a message. Implementations must respect ctx deadlines.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var _ Sender = (*SMTPSender)(nil)

// SMTPSender sends mail through a configured SMTP relay.
type SMTPSender struct {
	client *gomail.Client
	from   string
	logger *slog.Logger
}

func NewSMTPSender(cfg config.MailConfig, logger *slog.Logger) (*SMTPSender, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From, logger: logger}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.Body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.ErrorContext(ctx, "SMTP dispatch failed", slog.String("to", msg.To), slog.Any("error", err))
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
