package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mathachew7/JoslaSync/internal/security/audit"
	"github.com/mathachew7/JoslaSync/internal/security/auth"
	"github.com/mathachew7/JoslaSync/internal/security/ratelimit"
)

type TenantContextKey struct{}
type ClaimsContextKey struct{}

// isPublicPath reports whether a request may proceed without a bearer token.
// Company registration is public because it is how a tenant comes to exist.
func isPublicPath(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics",
		"/api/auth/login", "/api/auth/refresh":
		return true
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/company-profile" {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/static/")
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.DecodeAccess(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, TenantContextKey{}, claims.DBName)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r) {
				next.ServeHTTP(w, r)
				return
			}

			tenant := ""
			if t := r.Context().Value(TenantContextKey{}); t != nil {
				tenant = t.(string)
			}

			if !limiter.Allow(tenant) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := ""
			user := ""
			if t := r.Context().Value(TenantContextKey{}); t != nil {
				tenant = t.(string)
			}
			if c := r.Context().Value(ClaimsContextKey{}); c != nil {
				claims := c.(*auth.Claims)
				user = claims.Username
			}

			if r.Method == http.MethodPost && r.URL.Path == "/api/company-profile" {
				auditLog.LogAction(r.Context(), tenant, user, "register", "company", "", "initiated", "")
			}
			if r.Method == http.MethodDelete {
				auditLog.LogAction(r.Context(), tenant, user, "delete", "resource", r.PathValue("id"), "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetTenantFromContext(ctx context.Context) string {
	if t := ctx.Value(TenantContextKey{}); t != nil {
		return t.(string)
	}
	return ""
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
