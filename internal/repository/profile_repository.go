package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

const profileColumns = `id, company_name, company_email, company_mobile, logo_url,
	address1, address2, city, state, zip_code, tax_rate, status, db_name,
	created_at, updated_at`

// PostgresProfileRepository stores the singleton company profile row in a
// tenant database.
type PostgresProfileRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewPostgresProfileRepository creates a tenant profile repository
func NewPostgresProfileRepository(db Querier, logger *slog.Logger) *PostgresProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProfileRepository{db: db, logger: logger}
}

// Get returns the tenant's profile row, or nil when none exists yet.
func (r *PostgresProfileRepository) Get(ctx context.Context) (*domain.CompanyProfile, error) {
	p := &domain.CompanyProfile{}
	var logoURL, addr1, addr2, city, state, zip sql.NullString
	query := `SELECT ` + profileColumns + ` FROM company_profile ORDER BY id LIMIT 1`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&p.ID, &p.CompanyName, &p.CompanyEmail, &p.CompanyMobile, &logoURL,
		&addr1, &addr2, &city, &state, &zip, &p.TaxRate, &p.Status, &p.DBName,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}
	p.LogoURL = logoURL.String
	p.Address1 = addr1.String
	p.Address2 = addr2.String
	p.City = city.String
	p.State = state.String
	p.ZipCode = zip.String
	return p, nil
}

// Create inserts the singleton profile row. The single-row unique index
// rejects a second insert.
func (r *PostgresProfileRepository) Create(ctx context.Context, p *domain.CompanyProfile) error {
	query := `
		INSERT INTO company_profile (
			company_name, company_email, company_mobile, logo_url,
			address1, address2, city, state, zip_code, tax_rate, status, db_name
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.CompanyName, p.CompanyEmail, p.CompanyMobile, p.LogoURL,
		p.Address1, p.Address2, p.City, p.State, p.ZipCode, p.TaxRate, p.Status, p.DBName,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create tenant profile",
			slog.String("db_name", p.DBName),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create tenant profile: %w", err)
	}
	return nil
}

// Update applies only the fields present in patch and stamps updated_at.
func (r *PostgresProfileRepository) Update(ctx context.Context, id int64, patch domain.CompanyProfilePatch) (*domain.CompanyProfile, error) {
	set := []string{"updated_at = now()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.CompanyName != nil {
		add("company_name", *patch.CompanyName)
	}
	if patch.CompanyEmail != nil {
		add("company_email", *patch.CompanyEmail)
	}
	if patch.CompanyMobile != nil {
		add("company_mobile", *patch.CompanyMobile)
	}
	if patch.LogoURL != nil {
		add("logo_url", *patch.LogoURL)
	}
	if patch.Address1 != nil {
		add("address1", *patch.Address1)
	}
	if patch.Address2 != nil {
		add("address2", *patch.Address2)
	}
	if patch.City != nil {
		add("city", *patch.City)
	}
	if patch.State != nil {
		add("state", *patch.State)
	}
	if patch.ZipCode != nil {
		add("zip_code", *patch.ZipCode)
	}
	if patch.TaxRate != nil {
		add("tax_rate", *patch.TaxRate)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE company_profile SET %s WHERE id = $%d RETURNING `+profileColumns,
		strings.Join(set, ", "), len(args))

	p := &domain.CompanyProfile{}
	var logoURL, addr1, addr2, city, state, zip sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.CompanyName, &p.CompanyEmail, &p.CompanyMobile, &logoURL,
		&addr1, &addr2, &city, &state, &zip, &p.TaxRate, &p.Status, &p.DBName,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update tenant profile: %w", err)
	}
	p.LogoURL = logoURL.String
	p.Address1 = addr1.String
	p.Address2 = addr2.String
	p.City = city.String
	p.State = state.String
	p.ZipCode = zip.String
	return p, nil
}
