// Package push delivers driver notifications to devices. Every backend
// satisfies service.Notifier.
package push

import (
	"context"
	"log/slog"
)

// Log only records pushes. It is used when no push backend is configured.
type Log struct{}

// Notify writes the push to the default logger.
func (Log) Notify(ctx context.Context, userID int64, title, body string) error {
	slog.InfoContext(ctx, "push not delivered, no backend configured",
		"user_id", userID,
		"title", title,
		"body", body,
	)
	return nil
}
