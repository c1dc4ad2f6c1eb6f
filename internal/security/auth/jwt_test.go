package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

func newTestManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 30*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := newTestManager()
	claims := BuildClaims("42", "jdoe", "admin", "7", "acme_co", "acme_co_db", "jdoe@acme.co")

	token, err := tm.IssueAccessToken(claims)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	decoded, err := tm.DecodeAccess(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Subject != "42" {
		t.Errorf("expected subject 42, got %q", decoded.Subject)
	}
	if decoded.Username != "jdoe" || decoded.Role != "admin" || decoded.Email != "jdoe@acme.co" {
		t.Errorf("identity claims lost: %+v", decoded)
	}
	if decoded.CompanyID != "7" || decoded.CompanySlug != "acme_co" || decoded.DBName != "acme_co_db" {
		t.Errorf("tenant claims lost: %+v", decoded)
	}
	if decoded.ExpiresAt == nil {
		t.Fatal("expected exp to be stamped")
	}
	if decoded.IssuedAt == nil {
		t.Fatal("expected iat to be stamped")
	}
}

func TestExpiredTokenFailsWithTokenExpired(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
	token, err := tm.IssueAccessToken(BuildClaims("1", "jdoe", "admin", "", "", "acme_co_db", ""))
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = tm.DecodeAccess(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestWrongSecretFailsWithTokenInvalid(t *testing.T) {
	tm := newTestManager()
	token, err := tm.IssueAccessToken(BuildClaims("1", "jdoe", "admin", "", "", "acme_co_db", ""))
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	other := NewTokenManager("some-other-secret", "refresh-secret", 30*time.Minute, 7*24*time.Hour)
	_, err = other.DecodeAccess(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	tm := newTestManager()
	claims := BuildClaims("1", "jdoe", "admin", "", "", "acme_co_db", "")

	access, err := tm.IssueAccessToken(claims)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := tm.DecodeRefresh(access); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("access token must not verify as refresh token, got %v", err)
	}

	refresh, err := tm.IssueRefreshToken(claims)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	decoded, err := tm.DecodeRefresh(refresh)
	if err != nil {
		t.Fatalf("refresh decode failed: %v", err)
	}
	if decoded.DBName != "acme_co_db" {
		t.Errorf("refresh token lost tenant claim: %+v", decoded)
	}
}

func TestEmptyOptionalClaimsOmitted(t *testing.T) {
	tm := newTestManager()
	token, err := tm.IssueAccessToken(BuildClaims("1", "master", "master", "", "master", "invoicedb", ""))
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	decoded, err := tm.DecodeAccess(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.CompanyID != "" || decoded.Email != "" {
		t.Errorf("expected optional claims empty, got %+v", decoded)
	}
}

func TestExtractToken(t *testing.T) {
	if _, err := ExtractToken(""); !errors.Is(err, domain.ErrMissingAuth) {
		t.Errorf("empty header: expected ErrMissingAuth, got %v", err)
	}
	if _, err := ExtractToken("Basic abc"); !errors.Is(err, domain.ErrMissingAuth) {
		t.Errorf("non-bearer header: expected ErrMissingAuth, got %v", err)
	}
	tok, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil || tok != "abc.def.ghi" {
		t.Errorf("expected token extracted, got %q err=%v", tok, err)
	}
}

func TestMasterIdentity(t *testing.T) {
	m := MasterIdentity{Username: "root", Password: "hunter2", Email: "ops@example.com", DBName: "invoicedb"}

	if !m.IsMasterCredentials("root", "hunter2") {
		t.Error("expected master credentials to match")
	}
	if m.IsMasterCredentials("root", "wrong") {
		t.Error("wrong password must not match")
	}
	if m.IsMasterCredentials("other", "hunter2") {
		t.Error("wrong username must not match")
	}
	if !m.IsMasterUsername("root") || m.IsMasterUsername("other") {
		t.Error("username check broken")
	}

	claims := m.Claims()
	if claims.Role != "master" || claims.DBName != "invoicedb" {
		t.Errorf("master claims wrong: %+v", claims)
	}
}

func TestPasswordHashing(t *testing.T) {
	digest, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if digest == "s3cret" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !VerifyPassword("s3cret", digest) {
		t.Error("expected password to verify")
	}
	if VerifyPassword("wrong", digest) {
		t.Error("wrong password must not verify")
	}
}
