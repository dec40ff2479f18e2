package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var loggerKey ctxKey

// With derives a request-scoped logger carrying extra fields and stores
// it back in the context. The request id middleware seeds it; the auth
// middleware adds the principal id so every log line in a request chain
// shares both.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerKey, From(ctx).With(fields...))
}

// From returns the logger carried by the context, falling back to the
// process-wide logger when the context has none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
