package handler

import (
	"context"

	"github.com/mathachew7/JoslaSync/internal/security/auth"
	"github.com/mathachew7/JoslaSync/internal/tenant"
)

// TenantSessions opens a tenant session for a verified claim set. Satisfied
// by *tenant.Resolver.
type TenantSessions interface {
	Session(ctx context.Context, claims *auth.Claims) (*tenant.Session, error)
}
