package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mathachew7/JoslaSync/internal/security/auth"
)

func TestIsPublicPath(t *testing.T) {
	public := []struct {
		method, path string
	}{
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/readyz"},
		{http.MethodGet, "/metrics"},
		{http.MethodPost, "/api/auth/login"},
		{http.MethodPost, "/api/auth/refresh"},
		{http.MethodPost, "/api/company-profile"},
		{http.MethodGet, "/static/logos/acme.png"},
	}
	for _, tc := range public {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		if !isPublicPath(r) {
			t.Errorf("%s %s should be public", tc.method, tc.path)
		}
	}

	protected := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/company-profile"},
		{http.MethodPut, "/api/company-profile"},
		{http.MethodGet, "/api/clients"},
		{http.MethodGet, "/api/settings"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, tc := range protected {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		if isPublicPath(r) {
			t.Errorf("%s %s should require auth", tc.method, tc.path)
		}
	}
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	tm := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	h := JWTMiddleware(tm, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewareSetsTenantContext(t *testing.T) {
	tm := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	claims := auth.BuildClaims("7", "jdoe", "admin", "3", "acme_co", "acme_co_db", "jdoe@acme.co")
	token, err := tm.IssueAccessToken(claims)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotTenant string
	var gotClaims *auth.Claims
	h := JWTMiddleware(tm, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = GetTenantFromContext(r.Context())
		gotClaims = GetClaimsFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotTenant != "acme_co_db" {
		t.Errorf("tenant context = %q, want acme_co_db", gotTenant)
	}
	if gotClaims == nil || gotClaims.Username != "jdoe" {
		t.Errorf("claims not propagated: %+v", gotClaims)
	}
}

func TestJWTMiddlewareSkipsPublicPaths(t *testing.T) {
	tm := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	ran := false
	h := JWTMiddleware(tm, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !ran {
		t.Fatal("public path should bypass token checks")
	}
}
