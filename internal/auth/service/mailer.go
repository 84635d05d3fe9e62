package service

import (
	"context"
	"log/slog"
)

// Mailer is the consumed email-delivery collaborator. Delivery failure is
// non-fatal to the triggering operation: registration and reset succeed
// server-side and the failure is surfaced as a warning log.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogMailer logs instead of delivering. Default wiring for environments
// without an outbound mail collaborator, and the stand-in used by tests.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail suppressed",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	return nil
}
