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

const maxUploadBytes = 10 << 20

// ProfileResponse is the API view of a tenant company profile.
type ProfileResponse struct {
	ID            int64     `json:"id"`
	CompanyName   string    `json:"company_name"`
	CompanyEmail  string    `json:"company_email"`
	CompanyMobile string    `json:"company_mobile"`
	LogoURL       string    `json:"logo_url,omitempty"`
	Address1      string    `json:"address1,omitempty"`
	Address2      string    `json:"address2,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	ZipCode       string    `json:"zip_code,omitempty"`
	TaxRate       float64   `json:"tax_rate"`
	Status        string    `json:"status"`
	DBName        string    `json:"db_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func profileResponse(p *domain.CompanyProfile) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID,
		CompanyName:   p.CompanyName,
		CompanyEmail:  p.CompanyEmail,
		CompanyMobile: p.CompanyMobile,
		LogoURL:       p.LogoURL,
		Address1:      p.Address1,
		Address2:      p.Address2,
		City:          p.City,
		State:         p.State,
		ZipCode:       p.ZipCode,
		TaxRate:       p.TaxRate,
		Status:        p.Status,
		DBName:        p.DBName,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// RegisterCompanyHandler handles company registration: a multipart form with
// the company fields, the first admin account, and a logo upload.
type RegisterCompanyHandler struct {
	provisionService *service.ProvisionService
	logger           *slog.Logger
	config           *config.Config
}

// NewRegisterCompanyHandler creates a new company registration handler
func NewRegisterCompanyHandler(provisionService *service.ProvisionService, logger *slog.Logger, cfg *config.Config) *RegisterCompanyHandler {
	return &RegisterCompanyHandler{provisionService: provisionService, logger: logger, config: cfg}
}

// ServeHTTP handles POST /api/company-profile requests
func (h *RegisterCompanyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	taxRate := 0.0
	if v := r.FormValue("tax_rate"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tax rate must be a number", Field: "tax_rate"})
			return
		}
		taxRate = parsed
	}

	in := service.RegisterCompanyInput{
		CompanyName:   r.FormValue("company_name"),
		CompanyEmail:  r.FormValue("company_email"),
		CompanyMobile: r.FormValue("company_mobile"),
		Address1:      r.FormValue("address1"),
		Address2:      r.FormValue("address2"),
		City:          r.FormValue("city"),
		State:         r.FormValue("state"),
		ZipCode:       r.FormValue("zip_code"),
		TaxRate:       taxRate,
		Status:        r.FormValue("status"),
		AdminUsername: r.FormValue("admin_username"),
		AdminEmail:    r.FormValue("admin_email"),
		AdminPassword: r.FormValue("admin_password"),
	}
	if in.CompanyName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "company_name is required", Field: "company_name"})
		return
	}
	if in.AdminUsername == "" || in.AdminPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "admin username and password required"})
		return
	}

	if file, header, err := r.FormFile("logo"); err == nil {
		defer file.Close()
		in.Logo = &service.LogoUpload{Filename: header.Filename, Content: file}
	}

	profile, err := h.provisionService.RegisterCompany(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusCreated, profileResponse(profile))
}

// ProfileHandler serves the authenticated tenant's company profile.
type ProfileHandler struct {
	provisionService *service.ProvisionService
	sessions         TenantSessions
	logger           *slog.Logger
	config           *config.Config
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(provisionService *service.ProvisionService, sessions TenantSessions, logger *slog.Logger, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{provisionService: provisionService, sessions: sessions, logger: logger, config: cfg}
}

// ServeHTTP handles GET /api/company-profile requests
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	profile, err := h.provisionService.GetProfile(r.Context(), sess)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(profile))
}

// UpdateProfileHandler applies a partial multipart update to the tenant's
// profile. Omitted fields stay untouched; a new logo file replaces the old.
type UpdateProfileHandler struct {
	provisionService *service.ProvisionService
	sessions         TenantSessions
	logger           *slog.Logger
	config           *config.Config
}

// NewUpdateProfileHandler creates a new profile update handler
func NewUpdateProfileHandler(provisionService *service.ProvisionService, sessions TenantSessions, logger *slog.Logger, cfg *config.Config) *UpdateProfileHandler {
	return &UpdateProfileHandler{provisionService: provisionService, sessions: sessions, logger: logger, config: cfg}
}

// ServeHTTP handles PUT /api/company-profile requests
func (h *UpdateProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	patch := domain.CompanyProfilePatch{
		CompanyName:   formValuePtr(r, "company_name"),
		CompanyEmail:  formValuePtr(r, "company_email"),
		CompanyMobile: formValuePtr(r, "company_mobile"),
		Address1:      formValuePtr(r, "address1"),
		Address2:      formValuePtr(r, "address2"),
		City:          formValuePtr(r, "city"),
		State:         formValuePtr(r, "state"),
		ZipCode:       formValuePtr(r, "zip_code"),
		Status:        formValuePtr(r, "status"),
	}
	if v := formValuePtr(r, "tax_rate"); v != nil {
		parsed, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tax rate must be a number", Field: "tax_rate"})
			return
		}
		patch.TaxRate = &parsed
	}

	var logo *service.LogoUpload
	if file, header, err := r.FormFile("logo"); err == nil {
		defer file.Close()
		logo = &service.LogoUpload{Filename: header.Filename, Content: file}
	}

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	profile, err := h.provisionService.UpdateProfile(r.Context(), sess, patch, logo)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(profile))
}

// formValuePtr returns a pointer to the form value, or nil when the field
// was omitted. Presence is what distinguishes "clear this" from "leave it".
func formValuePtr(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
