package tenant

import (
	"context"
	"database/sql"
	"fmt"
)

// masterSchema creates the master-directory tables. Applied once at startup
// against the master database.
var masterSchema = []string{
	`CREATE TABLE IF NOT EXISTS company_profile (
		id BIGSERIAL PRIMARY KEY,
		company_name TEXT NOT NULL UNIQUE,
		db_name TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'admin',
		is_active BOOLEAN NOT NULL DEFAULT true,
		company_id BIGINT REFERENCES company_profile(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// tenantSchema creates every tenant-side table. Statements use IF NOT EXISTS
// so the set is safe to apply on every tenant-session open.
var tenantSchema = []string{
	`CREATE TABLE IF NOT EXISTS company_profile (
		id BIGSERIAL PRIMARY KEY,
		company_name TEXT NOT NULL,
		company_email TEXT NOT NULL,
		company_mobile TEXT NOT NULL,
		logo_url TEXT,
		address1 TEXT,
		address2 TEXT,
		city TEXT,
		state TEXT,
		zip_code TEXT,
		tax_rate NUMERIC(6,3) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Active',
		db_name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Single-row guard: at most one profile per tenant database.
	`CREATE UNIQUE INDEX IF NOT EXISTS company_profile_singleton ON company_profile ((true))`,
	`CREATE TABLE IF NOT EXISTS company_settings (
		id BIGSERIAL PRIMARY KEY,
		legal_name TEXT NOT NULL,
		addr1 TEXT,
		addr2 TEXT,
		city TEXT,
		state TEXT,
		zip TEXT,
		country TEXT DEFAULT 'UNITED STATES',
		email TEXT,
		phone TEXT,
		pos_state TEXT,
		default_tax_rate NUMERIC(6,3) NOT NULL DEFAULT 0,
		currency_code TEXT NOT NULL DEFAULT 'USD',
		currency_symbol TEXT NOT NULL DEFAULT '$',
		date_format TEXT NOT NULL DEFAULT 'MM/DD/YYYY',
		number_format TEXT NOT NULL DEFAULT '1,234.56',
		invoice_prefix TEXT NOT NULL DEFAULT 'INV-',
		invoice_number_strategy TEXT NOT NULL DEFAULT 'prefix-YYYY-####',
		brand_primary_hex TEXT NOT NULL DEFAULT '#000033',
		logo_url TEXT,
		signature_url TEXT,
		footer_text_page1 TEXT DEFAULT 'Terms & Conditions on following page.',
		footer_text_other TEXT DEFAULT 'Thank you for your business.',
		terms_template TEXT,
		terms_version TEXT DEFAULT 'v1',
		show_logo_page1 BOOLEAN NOT NULL DEFAULT true,
		show_logo_all_pages BOOLEAN NOT NULL DEFAULT false,
		show_watermark BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Single-row guard: concurrent get-or-create must never insert twice.
	`CREATE UNIQUE INDEX IF NOT EXISTS company_settings_singleton ON company_settings ((true))`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		company TEXT,
		notes TEXT,
		joined_date DATE,
		address_line1 TEXT,
		address_line2 TEXT,
		city TEXT,
		state TEXT,
		postal_code TEXT,
		country CHAR(2),
		tax_id TEXT,
		default_currency CHAR(3),
		default_tax_rate NUMERIC(5,2),
		payment_terms TEXT,
		discount_rate NUMERIC(5,2),
		status TEXT NOT NULL DEFAULT 'Active'
			CONSTRAINT clients_status_chk CHECK (status IN ('Active','Deactivated','Blacklisted')),
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_name ON clients (name)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_email ON clients (email)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_status ON clients (status)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id BIGSERIAL PRIMARY KEY,
		client_name TEXT NOT NULL,
		invoice_title TEXT,
		invoice_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'Outstanding',
		line_items JSONB NOT NULL,
		discount DOUBLE PRECISION NOT NULL DEFAULT 0,
		tax DOUBLE PRECISION NOT NULL DEFAULT 0,
		total DOUBLE PRECISION NOT NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureMasterSchema creates the master-directory tables if absent.
func EnsureMasterSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range masterSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure master schema: %w", err)
		}
	}
	return nil
}

func applyTenantSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range tenantSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure tenant schema: %w", err)
		}
	}
	return nil
}
