// Package logging is the structured logger the stores, the relation manager
// and the migration command write to. SlogLogger backs it with log/slog.
package logging

import "context"

// Logger takes a message plus key/value pairs:
//
//	log.Debug(ctx, "exec", "op", "update", "table", "Person")
//
// Statements go to Debug, stale writes to Warn.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
