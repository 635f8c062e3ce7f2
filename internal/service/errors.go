package service

import (
	"context"
	"log/slog"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/getsentry/sentry-go"
)

// reportError logs cause and sends it to the request's Sentry hub.
func reportError(ctx context.Context, logger *slog.Logger, op string, cause error) {
	logger.ErrorContext(ctx, "operation failed", "op", op, "error", cause)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("op", op)
		hub.CaptureException(cause)
	})
}

// internalError reports cause and hides it behind domain.ErrInternal.
func internalError(ctx context.Context, logger *slog.Logger, op string, cause error) error {
	reportError(ctx, logger, op, cause)
	return domain.ErrInternal
}
