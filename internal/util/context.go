package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey int

const (
	// CTXKeyRequestID carries the per-request ID assigned by the router.
	CTXKeyRequestID contextKey = iota
)

// LogFromContext returns the request-scoped logger if the middleware attached
// one, falling back to the global logger.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &log.Logger
	}

	return l
}

// LogToContext attaches a logger to the context.
func LogToContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// RequestIDFromContext returns the request ID set by the router middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(CTXKeyRequestID).(string)
	if !ok {
		return ""
	}

	return id
}

// RequestIDToContext stores the request ID on the context.
func RequestIDToContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CTXKeyRequestID, id)
}
