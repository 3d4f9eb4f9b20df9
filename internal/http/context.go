package http

import (
	"context"
	"log/slog"

	"github.com/example/baby-pool/internal/logging"
)

type contextKey string

const sessionTokenContextKey contextKey = "session_token"

// ContextWithSessionToken returns a derived context carrying the validated token.
func ContextWithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenContextKey, token)
}

// SessionTokenFromContext extracts the token stored by RequireSession.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenContextKey).(string)
	return token, ok
}

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
