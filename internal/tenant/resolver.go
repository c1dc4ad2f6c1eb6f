package tenant

import (
	"context"
	"log/slog"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/security/auth"
)

// Resolver turns verified token claims into a ready tenant session. It is
// the request-facing surface of the registry.
type Resolver struct {
	registry *Registry
	logger   *slog.Logger
}

// NewResolver creates a request tenant resolver over the registry.
func NewResolver(registry *Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{registry: registry, logger: logger}
}

// Session resolves the tenant database named in claims and opens a session
// bound to it. A claim set without a db_name is a client error. Schema
// bootstrap is best-effort: a bootstrap hiccup is logged, not fatal. Any
// failure opening the session surfaces as a generic tenant fault so driver
// internals never leak to the request boundary.
func (r *Resolver) Session(ctx context.Context, claims *auth.Claims) (*Session, error) {
	if claims == nil || claims.DBName == "" {
		return nil, domain.ErrNoTenantContext
	}
	dbName := claims.DBName

	if err := r.registry.EnsureSchema(ctx, dbName); err != nil {
		r.logger.Warn("tenant schema bootstrap warning",
			slog.String("db_name", dbName),
			slog.String("error", err.Error()),
		)
	}

	sess, err := r.registry.OpenSession(ctx, dbName)
	if err != nil {
		r.logger.Error("failed to open tenant session",
			slog.String("db_name", dbName),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrTenantUnavailable
	}

	r.logger.Debug("tenant session opened", slog.String("db_name", dbName))
	return sess, nil
}
