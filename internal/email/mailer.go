// Package email delivers transactional mail. When no provider key is
// configured the logging mailer stands in, so callers never treat an
// unconfigured sender as a hard error.
package email

import (
	"context"
	"log/slog"
)

// Message describes a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages to downstream email infrastructure.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// LoggerMailer writes would-be emails to the structured logger. Used
// when the email provider is not configured.
type LoggerMailer struct {
	logger *slog.Logger
}

// NewLoggerMailer constructs a logging mailer fallback.
func NewLoggerMailer(logger *slog.Logger) *LoggerMailer {
	return &LoggerMailer{logger: logger}
}

// Send logs the message instead of delivering it.
func (m *LoggerMailer) Send(_ context.Context, message Message) error {
	if m == nil || m.logger == nil {
		return nil
	}
	body := message.HTML
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	m.logger.Info("email would be sent (provider not configured)",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", body))
	return nil
}
