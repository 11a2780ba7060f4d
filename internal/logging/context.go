package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// ContextWithLogger stores a logger in the context so per-pass attributes
// (pass_id) follow the work through each loop.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// WithContext returns the context's logger when one is present, otherwise
// the fallback (or a no-op logger when both are absent).
func WithContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return NewNop()
}
