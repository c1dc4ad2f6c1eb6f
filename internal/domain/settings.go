package domain

import "time"

// CompanySettings is the singleton branding and invoice-formatting row per
// tenant database, lazily created on first access.
type CompanySettings struct {
	ID int64

	// Identity / branding
	LegalName string
	Addr1     string
	Addr2     string
	City      string
	State     string
	Zip       string
	Country   string
	Email     string
	Phone     string

	// Invoice defaults
	POSState              string
	DefaultTaxRate        float64
	CurrencyCode          string
	CurrencySymbol        string
	DateFormat            string
	NumberFormat          string
	InvoicePrefix         string
	InvoiceNumberStrategy string

	// Theme / brand
	BrandPrimaryHex string
	LogoURL         string
	SignatureURL    string

	// Footer / terms
	FooterTextPage1 string
	FooterTextOther string
	TermsTemplate   string
	TermsVersion    string

	// Display toggles
	ShowLogoPage1    bool
	ShowLogoAllPages bool
	ShowWatermark    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SettingsPatch carries partial updates to company settings. A nil field was
// omitted from the update and is left untouched; omitted is not the same as
// an explicit empty value.
type SettingsPatch struct {
	LegalName *string
	Addr1     *string
	Addr2     *string
	City      *string
	State     *string
	Zip       *string
	Country   *string
	Email     *string
	Phone     *string

	POSState              *string
	DefaultTaxRate        *float64
	CurrencyCode          *string
	CurrencySymbol        *string
	DateFormat            *string
	NumberFormat          *string
	InvoicePrefix         *string
	InvoiceNumberStrategy *string

	BrandPrimaryHex *string
	LogoURL         *string
	SignatureURL    *string

	FooterTextPage1 *string
	FooterTextOther *string
	TermsTemplate   *string
	TermsVersion    *string

	ShowLogoPage1    *bool
	ShowLogoAllPages *bool
	ShowWatermark    *bool
}
