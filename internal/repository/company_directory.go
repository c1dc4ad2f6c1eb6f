package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

const pqUniqueViolation = "23505"

// PostgresCompanyDirectory implements domain.CompanyDirectory against the
// master database.
type PostgresCompanyDirectory struct {
	db     Querier
	logger *slog.Logger
}

// NewPostgresCompanyDirectory creates a master-directory company repository
func NewPostgresCompanyDirectory(db Querier, logger *slog.Logger) *PostgresCompanyDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCompanyDirectory{db: db, logger: logger}
}

// ExistsByName reports whether a company record with this name exists.
func (r *PostgresCompanyDirectory) ExistsByName(ctx context.Context, companyName string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM company_profile WHERE company_name = $1)`
	if err := r.db.QueryRowContext(ctx, query, companyName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check company existence: %w", err)
	}
	return exists, nil
}

// Create inserts the company_name to db_name link. A uniqueness violation on
// either column surfaces as ErrDuplicateCompany: under concurrent
// registrations of the same name, the constraint is the source of truth.
func (r *PostgresCompanyDirectory) Create(ctx context.Context, companyName, dbName string) (*domain.CompanyRecord, error) {
	rec := &domain.CompanyRecord{CompanyName: companyName, DBName: dbName, Status: "active"}
	query := `
		INSERT INTO company_profile (company_name, db_name)
		VALUES ($1, $2)
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, companyName, dbName).Scan(
		&rec.ID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, domain.ErrDuplicateCompany
		}
		r.logger.Error("failed to create company record",
			slog.String("company_name", companyName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to create company record: %w", err)
	}
	return rec, nil
}

// GetByID retrieves a company record by ID
func (r *PostgresCompanyDirectory) GetByID(ctx context.Context, id int64) (*domain.CompanyRecord, error) {
	rec := &domain.CompanyRecord{}
	query := `
		SELECT id, company_name, db_name, status, created_at, updated_at
		FROM company_profile
		WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.CompanyName, &rec.DBName, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company record: %w", err)
	}
	return rec, nil
}

// GetByName retrieves a company record by its unique name
func (r *PostgresCompanyDirectory) GetByName(ctx context.Context, companyName string) (*domain.CompanyRecord, error) {
	rec := &domain.CompanyRecord{}
	query := `
		SELECT id, company_name, db_name, status, created_at, updated_at
		FROM company_profile
		WHERE company_name = $1
	`
	err := r.db.QueryRowContext(ctx, query, companyName).Scan(
		&rec.ID, &rec.CompanyName, &rec.DBName, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company record by name: %w", err)
	}
	return rec, nil
}
