package audit

import (
	"context"
	"log/slog"
	"time"
)

type Logger struct {
	logger *slog.Logger
}

type requestIDKey struct{}

// WithRequestID tags a context so audit entries emitted under it carry the id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, company, user, action, resource, resourceID, status, details string) {
	requestID := ""
	if s, ok := ctx.Value(requestIDKey{}).(string); ok {
		requestID = s
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("company", company),
		slog.String("user", user),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogRegistration(ctx context.Context, company, user, dbName, status, details string) {
	al.LogAction(ctx, company, user, "register", "company", dbName, status, details)
}

func (al *Logger) LogLogin(ctx context.Context, company, user, status, details string) {
	al.LogAction(ctx, company, user, "login", "session", "", status, details)
}

func (al *Logger) LogDenied(ctx context.Context, company, user, reason string) {
	al.LogAction(ctx, company, user, "access_denied", "api", "", "denied", reason)
}
