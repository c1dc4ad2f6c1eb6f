package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/tenant"
	"github.com/mathachew7/JoslaSync/pkg/database"
)

type memDirectory struct {
	byName map[string]*domain.CompanyRecord
	nextID int64
}

func newMemDirectory() *memDirectory {
	return &memDirectory{byName: map[string]*domain.CompanyRecord{}}
}

func (m *memDirectory) ExistsByName(_ context.Context, name string) (bool, error) {
	_, ok := m.byName[name]
	return ok, nil
}

func (m *memDirectory) Create(_ context.Context, name, dbName string) (*domain.CompanyRecord, error) {
	if _, ok := m.byName[name]; ok {
		return nil, domain.ErrDuplicateCompany
	}
	m.nextID++
	rec := &domain.CompanyRecord{ID: m.nextID, CompanyName: name, DBName: dbName, Status: "active"}
	m.byName[name] = rec
	return rec, nil
}

func (m *memDirectory) GetByID(_ context.Context, id int64) (*domain.CompanyRecord, error) {
	for _, rec := range m.byName {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrCompanyNotFound
}

func (m *memDirectory) GetByName(_ context.Context, name string) (*domain.CompanyRecord, error) {
	if rec, ok := m.byName[name]; ok {
		return rec, nil
	}
	return nil, domain.ErrCompanyNotFound
}

type memUsers struct {
	byID       map[int64]*domain.User
	byUsername map[string]*domain.User
	nextID     int64
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*domain.User{}, byUsername: map[string]*domain.User{}}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	if _, ok := m.byUsername[u.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	m.nextID++
	u.ID = m.nextID
	m.byID[u.ID] = u
	m.byUsername[u.Username] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := m.byUsername[username]; ok && u.IsActive {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	m.byID[u.ID] = u
	m.byUsername[u.Username] = u
	return nil
}

type memStorage struct {
	saved []string
}

func (m *memStorage) SaveLogo(name string, r io.Reader) (string, error) {
	io.Copy(io.Discard, r)
	m.saved = append(m.saved, name)
	return "/static/logos/" + name, nil
}

func (m *memStorage) SaveSignature(name string, r io.Reader) (string, error) {
	io.Copy(io.Discard, r)
	m.saved = append(m.saved, name)
	return "/static/signatures/" + name, nil
}

func newTestRegistry(t *testing.T) *tenant.Registry {
	t.Helper()
	master, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { master.Close() })
	cfg := &database.Config{Host: "localhost", Port: 5432, User: "test", Password: "test", Database: "invoicedb", SSLMode: "disable"}
	return tenant.NewRegistry(master, cfg, nil)
}

func newTestProvisionService(t *testing.T) (*ProvisionService, *memDirectory, *memUsers) {
	directory := newMemDirectory()
	users := newMemUsers()
	svc := NewProvisionService(directory, users, newTestRegistry(t), NewSettingsService(nil), &memStorage{}, nil)
	return svc, directory, users
}

func validInput() RegisterCompanyInput {
	return RegisterCompanyInput{
		CompanyName:   "Acme Co",
		CompanyEmail:  "billing@acme.co",
		CompanyMobile: "5551234567",
		Address1:      "1 Main St",
		City:          "Springfield",
		State:         "MO",
		ZipCode:       "65801",
		TaxRate:       8.5,
		AdminUsername: "jdoe",
		AdminEmail:    "jdoe@acme.co",
		AdminPassword: "s3cret",
		Logo:          &LogoUpload{Filename: "logo.png", Content: bytes.NewReader([]byte("png"))},
	}
}

func TestDeriveDBName(t *testing.T) {
	cases := map[string]string{
		"Acme Co":       "acme_co_db",
		"acme co":       "acme_co_db",
		"Globex":        "globex_db",
		"Initech LLC 2": "initech_llc_2_db",
	}
	for name, want := range cases {
		if got := DeriveDBName(name); got != want {
			t.Errorf("DeriveDBName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestDeriveDBNameDistinctForDistinctNames(t *testing.T) {
	if DeriveDBName("Acme Co") == DeriveDBName("Acme Corp") {
		t.Fatal("distinct company names must derive distinct database names")
	}
}

func TestRegisterRejectsDuplicateCompany(t *testing.T) {
	svc, directory, _ := newTestProvisionService(t)
	directory.byName["Acme Co"] = &domain.CompanyRecord{ID: 1, CompanyName: "Acme Co", DBName: "acme_co_db"}

	_, err := svc.RegisterCompany(context.Background(), validInput())
	if !errors.Is(err, domain.ErrDuplicateCompany) {
		t.Fatalf("expected ErrDuplicateCompany, got %v", err)
	}
	if len(directory.byName) != 1 {
		t.Fatal("duplicate registration must not create records")
	}
}

func TestRegisterValidatesFields(t *testing.T) {
	svc, _, _ := newTestProvisionService(t)

	cases := []struct {
		name   string
		mutate func(*RegisterCompanyInput)
		field  string
	}{
		{"bad email", func(in *RegisterCompanyInput) { in.CompanyEmail = "not-an-email" }, "company_email"},
		{"short mobile", func(in *RegisterCompanyInput) { in.CompanyMobile = "12345" }, "company_mobile"},
		{"letters in mobile", func(in *RegisterCompanyInput) { in.CompanyMobile = "555123456a" }, "company_mobile"},
		{"bad zip", func(in *RegisterCompanyInput) { in.ZipCode = "123" }, "zip_code"},
		{"numeric city", func(in *RegisterCompanyInput) { in.City = "Springfield 9" }, "city"},
		{"bad logo ext", func(in *RegisterCompanyInput) { in.Logo.Filename = "logo.gif" }, "logo"},
		{"missing logo", func(in *RegisterCompanyInput) { in.Logo = nil }, "logo"},
	}

	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		_, err := svc.RegisterCompany(context.Background(), in)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
			continue
		}
		if ve.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, ve.Field)
		}
	}
}

func TestValidateLogoExtensions(t *testing.T) {
	for _, name := range []string{"a.png", "b.jpg", "c.JPEG", "d.PNG"} {
		if err := validateLogoName(name); err != nil {
			t.Errorf("expected %q to be accepted: %v", name, err)
		}
	}
	for _, name := range []string{"a.gif", "b.svg", "noext", "a.png.exe"} {
		if err := validateLogoName(name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestSeedSettingsFromProfile(t *testing.T) {
	profile := &domain.CompanyProfile{
		CompanyName:   "Acme Co",
		CompanyEmail:  "billing@acme.co",
		CompanyMobile: "5551234567",
		Address1:      "1 Main St",
		City:          "Springfield",
		State:         "MO",
		ZipCode:       "65801",
		TaxRate:       8.5,
		LogoURL:       "/static/logos/x.png",
	}

	s := seedSettings(profile)
	if s.LegalName != "Acme Co" {
		t.Errorf("expected legal name from profile, got %q", s.LegalName)
	}
	if s.POSState != "MO" || s.DefaultTaxRate != 8.5 || s.LogoURL != "/static/logos/x.png" {
		t.Errorf("profile fields not carried into settings: %+v", s)
	}
	if s.CurrencyCode != "USD" || s.CurrencySymbol != "$" || s.DateFormat != "MM/DD/YYYY" {
		t.Errorf("hard defaults missing: %+v", s)
	}
	if s.InvoicePrefix != "INV-" || s.InvoiceNumberStrategy != "prefix-YYYY-####" {
		t.Errorf("invoice defaults missing: %+v", s)
	}
	if s.BrandPrimaryHex != "#000033" || s.TermsVersion != "v1" || !s.ShowLogoPage1 {
		t.Errorf("branding defaults missing: %+v", s)
	}
	if !strings.Contains(s.TermsTemplate, "Acme Co") {
		t.Error("terms template must be parameterized by legal name")
	}
	if !strings.Contains(s.TermsTemplate, "info@acmeco.com") {
		t.Error("terms contact address must derive from legal name")
	}
}

func TestSeedSettingsWithoutProfile(t *testing.T) {
	s := seedSettings(nil)
	if s.LegalName != "Your Company" {
		t.Errorf("expected fallback legal name, got %q", s.LegalName)
	}
	if s.Country != "UNITED STATES" {
		t.Errorf("expected default country, got %q", s.Country)
	}
}
