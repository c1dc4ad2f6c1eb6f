package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/repository"
	"github.com/mathachew7/JoslaSync/internal/tenant"
)

// SettingsService manages the per-tenant settings singleton. The row is
// created lazily on first access, seeded from the tenant profile.
type SettingsService struct {
	logger *slog.Logger
}

// NewSettingsService creates the settings service
func NewSettingsService(logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{logger: logger}
}

// GetOrCreate returns the tenant's settings row, seeding one from the tenant
// profile on first access. Safe to call repeatedly: the single-row unique
// index backstops the race between two first-access requests, and the loser
// re-reads the winner's row.
func (s *SettingsService) GetOrCreate(ctx context.Context, sess *tenant.Session) (*domain.CompanySettings, error) {
	settingsRepo := repository.NewPostgresSettingsRepository(sess, s.logger)

	existing, err := settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	profileRepo := repository.NewPostgresProfileRepository(sess, s.logger)
	profile, err := profileRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	seeded := seedSettings(profile)
	if err := settingsRepo.Create(ctx, seeded); err != nil {
		if repository.IsUniqueViolation(err) {
			// Lost the first-access race; the other request's row wins.
			return settingsRepo.Get(ctx)
		}
		return nil, err
	}

	s.logger.Info("seeded company settings",
		slog.String("db_name", sess.DBName()),
		slog.String("legal_name", seeded.LegalName),
	)
	return seeded, nil
}

// Update applies a partial settings update, creating the singleton first if
// it does not exist yet.
func (s *SettingsService) Update(ctx context.Context, sess *tenant.Session, patch domain.SettingsPatch) (*domain.CompanySettings, error) {
	current, err := s.GetOrCreate(ctx, sess)
	if err != nil {
		return nil, err
	}

	settingsRepo := repository.NewPostgresSettingsRepository(sess, s.logger)
	updated, err := settingsRepo.Update(ctx, current.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return updated, nil
}

func seedSettings(profile *domain.CompanyProfile) *domain.CompanySettings {
	legalName := "Your Company"
	s := &domain.CompanySettings{
		Country:               "UNITED STATES",
		CurrencyCode:          "USD",
		CurrencySymbol:        "$",
		DateFormat:            "MM/DD/YYYY",
		NumberFormat:          "1,234.56",
		InvoicePrefix:         "INV-",
		InvoiceNumberStrategy: "prefix-YYYY-####",
		BrandPrimaryHex:       "#000033",
		TermsVersion:          "v1",
		ShowLogoPage1:         true,
	}

	if profile != nil {
		if profile.CompanyName != "" {
			legalName = profile.CompanyName
		}
		s.Addr1 = profile.Address1
		s.Addr2 = profile.Address2
		s.City = profile.City
		s.State = profile.State
		s.Zip = profile.ZipCode
		s.Email = profile.CompanyEmail
		s.Phone = profile.CompanyMobile
		s.LogoURL = profile.LogoURL
		s.POSState = profile.State
		s.DefaultTaxRate = profile.TaxRate
	}

	s.LegalName = legalName
	s.TermsTemplate = defaultTerms(legalName)
	return s
}

// defaultTerms generates the boilerplate terms-of-service text stamped onto
// newly seeded settings, parameterized by the company's legal name.
func defaultTerms(legalName string) string {
	contact := strings.ToLower(strings.ReplaceAll(legalName, " ", ""))
	return strings.TrimSpace(fmt.Sprintf(`%[1]s

These Terms & Conditions govern your use of our services, including software development, website design, brand development, and IT services. By engaging with our services you agree to comply with these Terms & Conditions.

Services: %[1]s provides software, websites, brand development, and IT services. The scope of services will be outlined in a separate agreement or project proposal.

1. Payment Terms
- Invoices are issued upon project milestones or as agreed.
- Payment is due within 5 days from the invoice date.
- Late payments may incur a 1.5%% monthly late fee.

2. Intellectual Property
All intellectual property rights remain with %[1]s until full payment is received. Upon full payment, rights transfer to the client as per the agreement.

3. Confidentiality
We will keep all client information confidential and will not disclose details without prior written consent, except as required by law.

4. Liability
%[1]s is not liable for indirect, incidental, or consequential damages from our services. Liability is limited to the amount paid for the service.

5. Termination
Either party may terminate with 30 days written notice. The client agrees to pay for all work completed up to the termination date.

6. Governing Law
These Terms & Conditions are governed by the laws of Missouri, USA. Disputes are subject to the exclusive jurisdiction of Missouri courts.

7. Contact Information
For questions or concerns, contact us at: info@%[2]s.com

8. Amendments
%[1]s reserves the right to amend these Terms & Conditions at any time. Clients will be notified of changes.`, legalName, contact))
}
