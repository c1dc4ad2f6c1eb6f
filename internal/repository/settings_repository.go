package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

const settingsColumns = `id, legal_name, addr1, addr2, city, state, zip, country,
	email, phone, pos_state, default_tax_rate, currency_code, currency_symbol,
	date_format, number_format, invoice_prefix, invoice_number_strategy,
	brand_primary_hex, logo_url, signature_url, footer_text_page1,
	footer_text_other, terms_template, terms_version, show_logo_page1,
	show_logo_all_pages, show_watermark, created_at, updated_at`

// PostgresSettingsRepository stores the singleton company settings row in a
// tenant database.
type PostgresSettingsRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewPostgresSettingsRepository creates a tenant settings repository
func NewPostgresSettingsRepository(db Querier, logger *slog.Logger) *PostgresSettingsRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSettingsRepository{db: db, logger: logger}
}

// Get returns the settings row, or nil when none has been created yet.
func (r *PostgresSettingsRepository) Get(ctx context.Context) (*domain.CompanySettings, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM company_settings ORDER BY id LIMIT 1`)
	s, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company settings: %w", err)
	}
	return s, nil
}

// Create inserts the singleton settings row. The single-row unique index is
// the backstop against concurrent first-time creation: the loser of the race
// gets a uniqueness violation and should re-read.
func (r *PostgresSettingsRepository) Create(ctx context.Context, s *domain.CompanySettings) error {
	query := `
		INSERT INTO company_settings (
			legal_name, addr1, addr2, city, state, zip, country, email, phone,
			pos_state, default_tax_rate, currency_code, currency_symbol,
			date_format, number_format, invoice_prefix, invoice_number_strategy,
			brand_primary_hex, logo_url, signature_url, footer_text_page1,
			footer_text_other, terms_template, terms_version, show_logo_page1,
			show_logo_all_pages, show_watermark
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
			$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.LegalName, s.Addr1, s.Addr2, s.City, s.State, s.Zip, s.Country, s.Email, s.Phone,
		s.POSState, s.DefaultTaxRate, s.CurrencyCode, s.CurrencySymbol,
		s.DateFormat, s.NumberFormat, s.InvoicePrefix, s.InvoiceNumberStrategy,
		s.BrandPrimaryHex, s.LogoURL, s.SignatureURL, s.FooterTextPage1,
		s.FooterTextOther, s.TermsTemplate, s.TermsVersion, s.ShowLogoPage1,
		s.ShowLogoAllPages, s.ShowWatermark,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create company settings", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create company settings: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a uniqueness-constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

// Update applies only the fields present in patch and stamps updated_at.
func (r *PostgresSettingsRepository) Update(ctx context.Context, id int64, patch domain.SettingsPatch) (*domain.CompanySettings, error) {
	set := []string{"updated_at = now()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.LegalName != nil {
		add("legal_name", *patch.LegalName)
	}
	if patch.Addr1 != nil {
		add("addr1", *patch.Addr1)
	}
	if patch.Addr2 != nil {
		add("addr2", *patch.Addr2)
	}
	if patch.City != nil {
		add("city", *patch.City)
	}
	if patch.State != nil {
		add("state", *patch.State)
	}
	if patch.Zip != nil {
		add("zip", *patch.Zip)
	}
	if patch.Country != nil {
		add("country", *patch.Country)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.POSState != nil {
		add("pos_state", *patch.POSState)
	}
	if patch.DefaultTaxRate != nil {
		add("default_tax_rate", *patch.DefaultTaxRate)
	}
	if patch.CurrencyCode != nil {
		add("currency_code", *patch.CurrencyCode)
	}
	if patch.CurrencySymbol != nil {
		add("currency_symbol", *patch.CurrencySymbol)
	}
	if patch.DateFormat != nil {
		add("date_format", *patch.DateFormat)
	}
	if patch.NumberFormat != nil {
		add("number_format", *patch.NumberFormat)
	}
	if patch.InvoicePrefix != nil {
		add("invoice_prefix", *patch.InvoicePrefix)
	}
	if patch.InvoiceNumberStrategy != nil {
		add("invoice_number_strategy", *patch.InvoiceNumberStrategy)
	}
	if patch.BrandPrimaryHex != nil {
		add("brand_primary_hex", *patch.BrandPrimaryHex)
	}
	if patch.LogoURL != nil {
		add("logo_url", *patch.LogoURL)
	}
	if patch.SignatureURL != nil {
		add("signature_url", *patch.SignatureURL)
	}
	if patch.FooterTextPage1 != nil {
		add("footer_text_page1", *patch.FooterTextPage1)
	}
	if patch.FooterTextOther != nil {
		add("footer_text_other", *patch.FooterTextOther)
	}
	if patch.TermsTemplate != nil {
		add("terms_template", *patch.TermsTemplate)
	}
	if patch.TermsVersion != nil {
		add("terms_version", *patch.TermsVersion)
	}
	if patch.ShowLogoPage1 != nil {
		add("show_logo_page1", *patch.ShowLogoPage1)
	}
	if patch.ShowLogoAllPages != nil {
		add("show_logo_all_pages", *patch.ShowLogoAllPages)
	}
	if patch.ShowWatermark != nil {
		add("show_watermark", *patch.ShowWatermark)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE company_settings SET %s WHERE id = $%d RETURNING `+settingsColumns,
		strings.Join(set, ", "), len(args))

	row := r.db.QueryRowContext(ctx, query, args...)
	s, err := scanSettings(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update company settings: %w", err)
	}
	return s, nil
}

func scanSettings(row rowScanner) (*domain.CompanySettings, error) {
	s := &domain.CompanySettings{}
	var addr1, addr2, city, state, zip, country, email, phone sql.NullString
	var posState, logoURL, signatureURL, footer1, footerOther, terms, termsVersion sql.NullString
	err := row.Scan(
		&s.ID, &s.LegalName, &addr1, &addr2, &city, &state, &zip, &country,
		&email, &phone, &posState, &s.DefaultTaxRate, &s.CurrencyCode, &s.CurrencySymbol,
		&s.DateFormat, &s.NumberFormat, &s.InvoicePrefix, &s.InvoiceNumberStrategy,
		&s.BrandPrimaryHex, &logoURL, &signatureURL, &footer1,
		&footerOther, &terms, &termsVersion, &s.ShowLogoPage1,
		&s.ShowLogoAllPages, &s.ShowWatermark, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Addr1 = addr1.String
	s.Addr2 = addr2.String
	s.City = city.String
	s.State = state.String
	s.Zip = zip.String
	s.Country = country.String
	s.Email = email.String
	s.Phone = phone.String
	s.POSState = posState.String
	s.LogoURL = logoURL.String
	s.SignatureURL = signatureURL.String
	s.FooterTextPage1 = footer1.String
	s.FooterTextOther = footerOther.String
	s.TermsTemplate = terms.String
	s.TermsVersion = termsVersion.String
	return s, nil
}
