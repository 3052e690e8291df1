package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Transport delivers a message and returns a delivery identifier.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPTransport delivers mail through a configured SMTP relay.
type SMTPTransport struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPTransport builds an SMTP transport from relay credentials.
func NewSMTPTransport(host string, port int, user, password, from string) *SMTPTransport {
	return &SMTPTransport{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// Send dials the relay and delivers the message.
func (t *SMTPTransport) Send(_ context.Context, msg Message) (string, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := t.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return uuid.NewString(), nil
}

// LogTransport writes messages to the logger instead of delivering them.
// Used in development deployments without SMTP credentials.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport builds a transport that only logs.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs the message and reports success.
func (t *LogTransport) Send(_ context.Context, msg Message) (string, error) {
	id := uuid.NewString()
	if t.logger != nil {
		t.logger.Info("email preview",
			slog.String("message_id", id),
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
		)
	}
	return id, nil
}
