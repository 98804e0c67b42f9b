package mail

import (
	"context"
	"log/slog"
)

// LogNotifier writes emails to the log instead of delivering them. It is the
// default driver for local development, where no SMTP server is available.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendEmailConfirmation(_ context.Context, email, token string) error {
	n.log.Info("email confirmation requested",
		slog.String("email", email),
		slog.String("token", token))
	return nil
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	n.log.Info("password reset requested",
		slog.String("email", email),
		slog.String("token", token))
	return nil
}
