package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/security/middleware"
	"github.com/mathachew7/JoslaSync/internal/service"
	"github.com/mathachew7/JoslaSync/pkg/config"
)

// SettingsResponse is the API view of the tenant settings singleton.
type SettingsResponse struct {
	ID int64 `json:"id"`

	LegalName string `json:"legal_name"`
	Addr1     string `json:"addr1,omitempty"`
	Addr2     string `json:"addr2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	POSState              string  `json:"pos_state,omitempty"`
	DefaultTaxRate        float64 `json:"default_tax_rate"`
	CurrencyCode          string  `json:"currency_code"`
	CurrencySymbol        string  `json:"currency_symbol"`
	DateFormat            string  `json:"date_format"`
	NumberFormat          string  `json:"number_format"`
	InvoicePrefix         string  `json:"invoice_prefix"`
	InvoiceNumberStrategy string  `json:"invoice_number_strategy"`

	BrandPrimaryHex string `json:"brand_primary_hex"`
	LogoURL         string `json:"logo_url,omitempty"`
	SignatureURL    string `json:"signature_url,omitempty"`

	FooterTextPage1 string `json:"footer_text_page1,omitempty"`
	FooterTextOther string `json:"footer_text_other,omitempty"`
	TermsTemplate   string `json:"terms_template,omitempty"`
	TermsVersion    string `json:"terms_version,omitempty"`

	ShowLogoPage1    bool `json:"show_logo_page1"`
	ShowLogoAllPages bool `json:"show_logo_all_pages"`
	ShowWatermark    bool `json:"show_watermark"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func settingsResponse(s *domain.CompanySettings) SettingsResponse {
	return SettingsResponse{
		ID:                    s.ID,
		LegalName:             s.LegalName,
		Addr1:                 s.Addr1,
		Addr2:                 s.Addr2,
		City:                  s.City,
		State:                 s.State,
		Zip:                   s.Zip,
		Country:               s.Country,
		Email:                 s.Email,
		Phone:                 s.Phone,
		POSState:              s.POSState,
		DefaultTaxRate:        s.DefaultTaxRate,
		CurrencyCode:          s.CurrencyCode,
		CurrencySymbol:        s.CurrencySymbol,
		DateFormat:            s.DateFormat,
		NumberFormat:          s.NumberFormat,
		InvoicePrefix:         s.InvoicePrefix,
		InvoiceNumberStrategy: s.InvoiceNumberStrategy,
		BrandPrimaryHex:       s.BrandPrimaryHex,
		LogoURL:               s.LogoURL,
		SignatureURL:          s.SignatureURL,
		FooterTextPage1:       s.FooterTextPage1,
		FooterTextOther:       s.FooterTextOther,
		TermsTemplate:         s.TermsTemplate,
		TermsVersion:          s.TermsVersion,
		ShowLogoPage1:         s.ShowLogoPage1,
		ShowLogoAllPages:      s.ShowLogoAllPages,
		ShowWatermark:         s.ShowWatermark,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

// SettingsHandler serves the tenant settings singleton, creating it on first
// read.
type SettingsHandler struct {
	settingsService *service.SettingsService
	sessions        TenantSessions
	logger          *slog.Logger
	config          *config.Config
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService, sessions TenantSessions, logger *slog.Logger, cfg *config.Config) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, sessions: sessions, logger: logger, config: cfg}
}

// ServeHTTP handles GET /api/company-settings requests
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	settings, err := h.settingsService.GetOrCreate(r.Context(), sess)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(settings))
}

// UpdateSettingsHandler applies a partial multipart update to settings.
// Logo and signature uploads replace the stored URLs.
type UpdateSettingsHandler struct {
	settingsService *service.SettingsService
	sessions        TenantSessions
	storage         service.Storage
	logger          *slog.Logger
	config          *config.Config
}

// NewUpdateSettingsHandler creates a new settings update handler
func NewUpdateSettingsHandler(settingsService *service.SettingsService, sessions TenantSessions, storage service.Storage, logger *slog.Logger, cfg *config.Config) *UpdateSettingsHandler {
	return &UpdateSettingsHandler{settingsService: settingsService, sessions: sessions, storage: storage, logger: logger, config: cfg}
}

// ServeHTTP handles PUT /api/company-settings requests
func (h *UpdateSettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	patch := domain.SettingsPatch{
		LegalName:             formValuePtr(r, "legal_name"),
		Addr1:                 formValuePtr(r, "addr1"),
		Addr2:                 formValuePtr(r, "addr2"),
		City:                  formValuePtr(r, "city"),
		State:                 formValuePtr(r, "state"),
		Zip:                   formValuePtr(r, "zip"),
		Country:               formValuePtr(r, "country"),
		Email:                 formValuePtr(r, "email"),
		Phone:                 formValuePtr(r, "phone"),
		POSState:              formValuePtr(r, "pos_state"),
		CurrencyCode:          formValuePtr(r, "currency_code"),
		CurrencySymbol:        formValuePtr(r, "currency_symbol"),
		DateFormat:            formValuePtr(r, "date_format"),
		NumberFormat:          formValuePtr(r, "number_format"),
		InvoicePrefix:         formValuePtr(r, "invoice_prefix"),
		InvoiceNumberStrategy: formValuePtr(r, "invoice_number_strategy"),
		BrandPrimaryHex:       formValuePtr(r, "brand_primary_hex"),
		FooterTextPage1:       formValuePtr(r, "footer_text_page1"),
		FooterTextOther:       formValuePtr(r, "footer_text_other"),
		TermsTemplate:         formValuePtr(r, "terms_template"),
		TermsVersion:          formValuePtr(r, "terms_version"),
	}

	if v := formValuePtr(r, "default_tax_rate"); v != nil {
		parsed, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tax rate must be a number", Field: "default_tax_rate"})
			return
		}
		patch.DefaultTaxRate = &parsed
	}
	for key, target := range map[string]**bool{
		"show_logo_page1":     &patch.ShowLogoPage1,
		"show_logo_all_pages": &patch.ShowLogoAllPages,
		"show_watermark":      &patch.ShowWatermark,
	} {
		if v := formValuePtr(r, key); v != nil {
			parsed, err := strconv.ParseBool(*v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: key + " must be a boolean", Field: key})
				return
			}
			*target = &parsed
		}
	}

	if file, header, err := r.FormFile("logo"); err == nil {
		defer file.Close()
		url, err := h.storage.SaveLogo(header.Filename, file)
		if err != nil {
			writeError(w, h.logger, err, h.config.IsDevelopment())
			return
		}
		patch.LogoURL = &url
	}
	if file, header, err := r.FormFile("signature"); err == nil {
		defer file.Close()
		url, err := h.storage.SaveSignature(header.Filename, file)
		if err != nil {
			writeError(w, h.logger, err, h.config.IsDevelopment())
			return
		}
		patch.SignatureURL = &url
	}

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	settings, err := h.settingsService.Update(r.Context(), sess, patch)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(settings))
}
