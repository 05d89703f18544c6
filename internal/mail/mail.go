// Package mail delivers confirmation codes out-of-band.
package mail

import (
	"context"
	"fmt"

	"yamdb/internal/config"
	"yamdb/internal/logging"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. Implementations must return transport failures
// rather than swallow them.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the sender selected by cfg.Backend.
func New(cfg config.MailConfig, logger logging.Logger) (Sender, error) {
	switch cfg.Backend {
	case "", "console":
		return NewConsoleSender(logger), nil
	case "smtp":
		return NewSMTPSender(cfg)
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}

// ConsoleSender writes messages to the log instead of sending them.
// Meant for development.
type ConsoleSender struct {
	logger logging.Logger
}

// NewConsoleSender creates a console sender.
func NewConsoleSender(logger logging.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "email",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
