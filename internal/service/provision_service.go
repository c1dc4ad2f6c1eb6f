package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/observability/metrics"
	"github.com/mathachew7/JoslaSync/internal/repository"
	"github.com/mathachew7/JoslaSync/internal/security/auth"
	"github.com/mathachew7/JoslaSync/internal/tenant"
)

// DeriveDBName maps a company name onto its tenant database name:
// lowercased, spaces replaced with underscores, "_db" suffix.
// "Acme Co" becomes "acme_co_db". The mapping is deterministic so the
// same company always resolves to the same database.
func DeriveDBName(companyName string) string {
	return strings.ReplaceAll(strings.ToLower(companyName), " ", "_") + "_db"
}

// LogoUpload is an uploaded logo file handed through from the HTTP layer.
type LogoUpload struct {
	Filename string
	Content  io.Reader
}

// RegisterCompanyInput carries everything company registration needs: the
// company fields for the tenant profile plus the first admin account.
type RegisterCompanyInput struct {
	CompanyName   string
	CompanyEmail  string
	CompanyMobile string
	Address1      string
	Address2      string
	City          string
	State         string
	ZipCode       string
	TaxRate       float64
	Status        string

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	Logo *LogoUpload
}

// Storage persists uploaded files and returns their public URLs.
type Storage interface {
	SaveLogo(originalName string, r io.Reader) (string, error)
	SaveSignature(originalName string, r io.Reader) (string, error)
}

// ProvisionService registers companies: it creates the tenant database,
// links it in the master directory, creates the admin user, and initializes
// the tenant's profile and settings.
type ProvisionService struct {
	directory domain.CompanyDirectory
	users     domain.UserRepository
	registry  *tenant.Registry
	settings  *SettingsService
	storage   Storage
	logger    *slog.Logger
}

// NewProvisionService creates the company provisioning service
func NewProvisionService(
	directory domain.CompanyDirectory,
	users domain.UserRepository,
	registry *tenant.Registry,
	settings *SettingsService,
	storage Storage,
	logger *slog.Logger,
) *ProvisionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProvisionService{
		directory: directory,
		users:     users,
		registry:  registry,
		settings:  settings,
		storage:   storage,
		logger:    logger,
	}
}

// RegisterCompany runs the full provisioning workflow. Once the master
// record is committed, later failures leave a partial state that is surfaced
// to the caller rather than rolled back; schema ensure and settings seeding
// are idempotent so an operator re-run heals it.
func (s *ProvisionService) RegisterCompany(ctx context.Context, in RegisterCompanyInput) (*domain.CompanyProfile, error) {
	start := time.Now()
	profile, err := s.registerCompany(ctx, in)
	if err != nil {
		metrics.ObserveProvision("failure", time.Since(start))
		return nil, err
	}
	metrics.ObserveProvision("success", time.Since(start))
	return profile, nil
}

func (s *ProvisionService) registerCompany(ctx context.Context, in RegisterCompanyInput) (*domain.CompanyProfile, error) {
	// 1. Guard: unique company name in the master directory.
	exists, err := s.directory.ExistsByName(ctx, in.CompanyName)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Warn("company already exists", slog.String("company_name", in.CompanyName))
		return nil, domain.ErrDuplicateCompany
	}

	// 2. Validate submitted fields. Registration requires a logo.
	if in.Logo == nil {
		return nil, &domain.ValidationError{Field: "logo", Reason: "logo file is required"}
	}
	if err := validateProfileFields(in.CompanyEmail, in.CompanyMobile, in.City, in.ZipCode, in.Logo.Filename); err != nil {
		return nil, err
	}

	// 3. Persist the logo and obtain its public URL.
	logoURL, err := s.storage.SaveLogo(in.Logo.Filename, in.Logo.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to save logo: %w", err)
	}

	// 4. Physically create the tenant database.
	dbName := DeriveDBName(in.CompanyName)
	if err := s.registry.CreateDatabaseIfMissing(ctx, dbName); err != nil {
		return nil, err
	}

	// 5. Commit the master record. From here on the company exists.
	record, err := s.directory.Create(ctx, in.CompanyName, dbName)
	if err != nil {
		return nil, err
	}

	// 6. Create the admin user linked to the new company.
	hash, err := auth.HashPassword(in.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &domain.User{
		Username:     in.AdminUsername,
		Email:        in.AdminEmail,
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
		CompanyID:    &record.ID,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("company %q provisioned but admin user creation failed: %w", in.CompanyName, err)
	}

	// 7. Ensure tenant schema.
	if err := s.registry.EnsureSchema(ctx, dbName); err != nil {
		return nil, fmt.Errorf("company %q registered but tenant schema setup failed: %w", in.CompanyName, err)
	}

	// 8. Insert the singleton tenant profile.
	sess, err := s.registry.OpenSession(ctx, dbName)
	if err != nil {
		return nil, fmt.Errorf("company %q registered but tenant session failed: %w", in.CompanyName, err)
	}
	defer sess.Close()

	status := in.Status
	if status == "" {
		status = "active"
	}
	profile := &domain.CompanyProfile{
		CompanyName:   in.CompanyName,
		CompanyEmail:  in.CompanyEmail,
		CompanyMobile: in.CompanyMobile,
		LogoURL:       logoURL,
		Address1:      in.Address1,
		Address2:      in.Address2,
		City:          in.City,
		State:         in.State,
		ZipCode:       in.ZipCode,
		TaxRate:       in.TaxRate,
		Status:        status,
		DBName:        dbName,
	}
	profileRepo := repository.NewPostgresProfileRepository(sess, s.logger)
	if err := profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("company %q registered but tenant profile creation failed: %w", in.CompanyName, err)
	}

	// 9. Seed tenant settings inside the same session.
	if _, err := s.settings.GetOrCreate(ctx, sess); err != nil {
		return nil, fmt.Errorf("company %q registered but settings seeding failed: %w", in.CompanyName, err)
	}

	s.logger.Info("company provisioned",
		slog.String("company_name", in.CompanyName),
		slog.String("db_name", dbName),
		slog.Int64("company_id", record.ID),
	)

	// 10. Return the created tenant profile.
	return profile, nil
}

// GetProfile returns the tenant's company profile.
func (s *ProvisionService) GetProfile(ctx context.Context, sess *tenant.Session) (*domain.CompanyProfile, error) {
	profileRepo := repository.NewPostgresProfileRepository(sess, s.logger)
	profile, err := profileRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

// UpdateProfile applies a partial update to the tenant profile, replacing
// the logo when a new file is uploaded. Changed fields are validated against
// the merged result so a partial update cannot corrupt a valid profile.
func (s *ProvisionService) UpdateProfile(ctx context.Context, sess *tenant.Session, patch domain.CompanyProfilePatch, logo *LogoUpload) (*domain.CompanyProfile, error) {
	existing, err := s.GetProfile(ctx, sess)
	if err != nil {
		return nil, err
	}

	touchesValidated := patch.CompanyEmail != nil || patch.CompanyMobile != nil ||
		patch.City != nil || patch.ZipCode != nil || logo != nil
	if touchesValidated {
		email := existing.CompanyEmail
		if patch.CompanyEmail != nil {
			email = *patch.CompanyEmail
		}
		mobile := existing.CompanyMobile
		if patch.CompanyMobile != nil {
			mobile = *patch.CompanyMobile
		}
		city := existing.City
		if patch.City != nil {
			city = *patch.City
		}
		zip := existing.ZipCode
		if patch.ZipCode != nil {
			zip = *patch.ZipCode
		}
		logoName := ""
		if logo != nil {
			logoName = logo.Filename
		}
		if err := validateProfileFields(email, mobile, city, zip, logoName); err != nil {
			return nil, err
		}
	}

	if logo != nil {
		logoURL, err := s.storage.SaveLogo(logo.Filename, logo.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to save logo: %w", err)
		}
		patch.LogoURL = &logoURL
	}

	profileRepo := repository.NewPostgresProfileRepository(sess, s.logger)
	return profileRepo.Update(ctx, existing.ID, patch)
}
