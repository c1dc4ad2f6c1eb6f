package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/security/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *memDirectory, *memUsers, *auth.TokenManager) {
	t.Helper()
	directory := newMemDirectory()
	users := newMemUsers()
	tm := auth.NewTokenManager("access-secret", "refresh-secret", 30*time.Minute, 7*24*time.Hour)
	master := auth.MasterIdentity{Username: "root", Password: "hunter2", Email: "ops@example.com", DBName: "invoicedb"}
	return NewAuthService(users, directory, tm, master, nil), directory, users, tm
}

func seedTenantUser(t *testing.T, directory *memDirectory, users *memUsers) *domain.User {
	t.Helper()
	rec, err := directory.Create(context.Background(), "Acme Co", "acme_co_db")
	if err != nil {
		t.Fatalf("seed company: %v", err)
	}
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &domain.User{
		Username:     "jdoe",
		Email:        "jdoe@acme.co",
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
		CompanyID:    &rec.ID,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLoginIssuesTenantToken(t *testing.T) {
	svc, directory, users, tm := newTestAuthService(t)
	seedTenantUser(t, directory, users)

	result, err := svc.Login(context.Background(), "jdoe", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims, err := tm.DecodeAccess(result.AccessToken)
	if err != nil {
		t.Fatalf("decode access token: %v", err)
	}
	if claims.DBName != "acme_co_db" {
		t.Errorf("expected db_name acme_co_db, got %q", claims.DBName)
	}
	if claims.Username != "jdoe" || claims.Role != "admin" {
		t.Errorf("identity claims wrong: %+v", claims)
	}
	if claims.CompanySlug != "acme_co" {
		t.Errorf("expected slug acme_co, got %q", claims.CompanySlug)
	}
	if result.User.Username != "jdoe" {
		t.Errorf("wrong user in response: %+v", result.User)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, directory, users, _ := newTestAuthService(t)
	seedTenantUser(t, directory, users)

	if _, err := svc.Login(context.Background(), "jdoe", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("bad password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsUnlinkedUser(t *testing.T) {
	svc, _, users, _ := newTestAuthService(t)
	hash, _ := auth.HashPassword("s3cret")
	users.Create(context.Background(), &domain.User{
		Username: "orphan", Email: "o@example.com", PasswordHash: hash, IsActive: true,
	})

	if _, err := svc.Login(context.Background(), "orphan", "s3cret"); !errors.Is(err, domain.ErrUserNotLinked) {
		t.Fatalf("expected ErrUserNotLinked, got %v", err)
	}
}

func TestMasterLoginSkipsDirectory(t *testing.T) {
	// No company or user records seeded at all: master login must not need any.
	svc, _, _, tm := newTestAuthService(t)

	result, err := svc.Login(context.Background(), "root", "hunter2")
	if err != nil {
		t.Fatalf("master login failed: %v", err)
	}

	claims, err := tm.DecodeAccess(result.AccessToken)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Role != "master" {
		t.Errorf("expected role master, got %q", claims.Role)
	}
	if claims.DBName != "invoicedb" {
		t.Errorf("expected configured master db name, got %q", claims.DBName)
	}
}

func TestRefreshPreservesTenantContext(t *testing.T) {
	svc, directory, users, tm := newTestAuthService(t)
	seedTenantUser(t, directory, users)

	login, err := svc.Login(context.Background(), "jdoe", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	claims, err := tm.DecodeAccess(refreshed.AccessToken)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.DBName != "acme_co_db" {
		t.Errorf("refresh lost tenant context: %+v", claims)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, directory, users, _ := newTestAuthService(t)
	seedTenantUser(t, directory, users)

	login, err := svc.Login(context.Background(), "jdoe", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// An access token is signed with the wrong secret for refresh.
	if _, err := svc.Refresh(context.Background(), login.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRegisterUser(t *testing.T) {
	svc, directory, users, _ := newTestAuthService(t)
	rec, _ := directory.Create(context.Background(), "Acme Co", "acme_co_db")

	info, err := svc.RegisterUser(context.Background(), "newuser", "n@acme.co", "pw12345", &rec.ID)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if info.Username != "newuser" || !info.IsActive {
		t.Errorf("unexpected user info: %+v", info)
	}

	stored, err := users.GetByUsername(context.Background(), "newuser")
	if err != nil {
		t.Fatalf("stored user missing: %v", err)
	}
	if stored.PasswordHash == "pw12345" {
		t.Fatal("password must be stored hashed")
	}

	if _, err := svc.RegisterUser(context.Background(), "newuser", "n2@acme.co", "pw12345", &rec.ID); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, directory, users, _ := newTestAuthService(t)
	user := seedTenantUser(t, directory, users)

	claims := auth.BuildClaims("1", user.Username, user.Role, "1", "acme_co", "acme_co_db", user.Email)
	info, err := svc.Me(context.Background(), &claims)
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if info.Username != "jdoe" {
		t.Errorf("wrong user: %+v", info)
	}

	if _, err := svc.Me(context.Background(), nil); !errors.Is(err, domain.ErrInvalidTokenPayload) {
		t.Fatalf("nil claims: expected ErrInvalidTokenPayload, got %v", err)
	}
}
