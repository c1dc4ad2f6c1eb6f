package domain

import (
	"context"
	"time"
)

// CompanyRecord is the master-directory row linking a company name to its
// tenant database. Exactly one exists per registered company.
type CompanyRecord struct {
	ID          int64
	CompanyName string // unique
	DBName      string // unique
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CompanyDirectory defines master-directory access for company records
type CompanyDirectory interface {
	ExistsByName(ctx context.Context, companyName string) (bool, error)
	Create(ctx context.Context, companyName, dbName string) (*CompanyRecord, error)
	GetByID(ctx context.Context, id int64) (*CompanyRecord, error)
	GetByName(ctx context.Context, companyName string) (*CompanyRecord, error)
}

// CompanyProfile is the singleton per-tenant company row. Provisioning
// creates it exactly once; at most one row ever exists per tenant database.
type CompanyProfile struct {
	ID            int64
	CompanyName   string
	CompanyEmail  string
	CompanyMobile string
	LogoURL       string
	Address1      string
	Address2      string
	City          string
	State         string
	ZipCode       string
	TaxRate       float64
	Status        string
	DBName        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CompanyProfilePatch carries partial updates to the tenant profile.
// Nil fields are left untouched.
type CompanyProfilePatch struct {
	CompanyName   *string
	CompanyEmail  *string
	CompanyMobile *string
	LogoURL       *string
	Address1      *string
	Address2      *string
	City          *string
	State         *string
	ZipCode       *string
	TaxRate       *float64
	Status        *string
}
