// Package notify delivers login codes to users.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Notifier delivers a login code to an address. Formatting is the
// implementation's concern; callers only learn success or failure.
type Notifier interface {
	Deliver(ctx context.Context, email, code string) error
}

// LogNotifier writes the login e-mail to the structured log instead of
// sending it. Used until a real mail provider is configured.
type LogNotifier struct {
	logger *slog.Logger
	ttl    time.Duration
}

func NewLogNotifier(logger *slog.Logger, ttl time.Duration) *LogNotifier {
	return &LogNotifier{logger: logger, ttl: ttl}
}

func (n *LogNotifier) Deliver(ctx context.Context, email, code string) error {
	n.logger.InfoContext(ctx, "authentication email",
		"to", email,
		"subject", "Your Musikkhylla Login Code",
		"code", code,
		"expires_in", n.ttl.String(),
	)
	return nil
}
