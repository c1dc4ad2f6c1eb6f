package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/security/auth"
	"github.com/mathachew7/JoslaSync/pkg/database"
)

func newTestRegistry(t *testing.T) (*Registry, sqlmock.Sqlmock) {
	t.Helper()
	master, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	cfg := &database.Config{Host: "localhost", Port: 5432, User: "test", Password: "test", Database: "invoicedb", SSLMode: "disable"}
	return NewRegistry(master, cfg, nil), mock
}

func TestCreateDatabaseIfMissing(t *testing.T) {
	registry, mock := newTestRegistry(t)
	defer registry.Master().Close()

	mock.ExpectExec(`CREATE DATABASE "acme_co_db"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := registry.CreateDatabaseIfMissing(context.Background(), "acme_co_db"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateDatabaseRejectsInvalidName(t *testing.T) {
	registry, _ := newTestRegistry(t)
	defer registry.Master().Close()

	for _, name := range []string{"", "Acme", "1db", "acme;drop table users"} {
		if err := registry.CreateDatabaseIfMissing(context.Background(), name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestEngineRejectsInvalidName(t *testing.T) {
	registry, _ := newTestRegistry(t)
	defer registry.Master().Close()

	if _, err := registry.Engine("Not A DB Name"); err == nil {
		t.Fatal("expected invalid name to be rejected")
	}
}

func TestEngineCachesPoolPerName(t *testing.T) {
	registry, _ := newTestRegistry(t)
	defer registry.Master().Close()
	defer registry.Close()

	first, err := registry.Engine("acme_co_db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := registry.Engine("acme_co_db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected the same pool on repeated lookups")
	}

	other, err := registry.Engine("globex_db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other == first {
		t.Fatal("distinct tenants must get distinct pools")
	}
}

func TestResolverRequiresTenantClaim(t *testing.T) {
	registry, _ := newTestRegistry(t)
	defer registry.Master().Close()
	resolver := NewResolver(registry, nil)

	if _, err := resolver.Session(context.Background(), nil); !errors.Is(err, domain.ErrNoTenantContext) {
		t.Fatalf("nil claims: expected ErrNoTenantContext, got %v", err)
	}

	claims := auth.BuildClaims("1", "jdoe", "admin", "", "", "", "")
	if _, err := resolver.Session(context.Background(), &claims); !errors.Is(err, domain.ErrNoTenantContext) {
		t.Fatalf("missing db_name: expected ErrNoTenantContext, got %v", err)
	}
}
