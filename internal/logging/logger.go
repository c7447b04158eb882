// Package logging defines the structured, context-aware logger used by the
// ExpertConnect client and its slog-backed implementation.
package logging

import "context"

// Logger is a structured logger. Variadic args are key/value pairs:
//
//	log.Info(ctx, "meeting status updated", "meeting_id", id, "status", status)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is used for failed calls the user can recover from.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always carries the given pairs.
	With(args ...any) Logger
}
