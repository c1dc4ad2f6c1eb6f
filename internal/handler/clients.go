package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/security/middleware"
	"github.com/mathachew7/JoslaSync/internal/service"
	"github.com/mathachew7/JoslaSync/pkg/config"
)

// ClientRequest carries client fields for create and update. On update,
// omitted fields are left untouched.
type ClientRequest struct {
	Name       *string    `json:"name"`
	Email      *string    `json:"email"`
	Phone      *string    `json:"phone"`
	Company    *string    `json:"company"`
	Notes      *string    `json:"notes"`
	JoinedDate *time.Time `json:"joined_date"`

	AddressLine1    *string  `json:"address_line1"`
	AddressLine2    *string  `json:"address_line2"`
	City            *string  `json:"city"`
	State           *string  `json:"state"`
	PostalCode      *string  `json:"postal_code"`
	Country         *string  `json:"country"`
	TaxID           *string  `json:"tax_id"`
	DefaultCurrency *string  `json:"default_currency"`
	DefaultTaxRate  *float64 `json:"default_tax_rate"`
	PaymentTerms    *string  `json:"payment_terms"`
	DiscountRate    *float64 `json:"discount_rate"`

	Status *string `json:"status"`
}

// ClientResponse is the API view of a client.
type ClientResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Company    *string    `json:"company,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	JoinedDate *time.Time `json:"joined_date,omitempty"`

	AddressLine1    *string  `json:"address_line1,omitempty"`
	AddressLine2    *string  `json:"address_line2,omitempty"`
	City            *string  `json:"city,omitempty"`
	State           *string  `json:"state,omitempty"`
	PostalCode      *string  `json:"postal_code,omitempty"`
	Country         *string  `json:"country,omitempty"`
	TaxID           *string  `json:"tax_id,omitempty"`
	DefaultCurrency *string  `json:"default_currency,omitempty"`
	DefaultTaxRate  *float64 `json:"default_tax_rate,omitempty"`
	PaymentTerms    *string  `json:"payment_terms,omitempty"`
	DiscountRate    *float64 `json:"discount_rate,omitempty"`

	Status    string    `json:"status"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientListResponse is a paginated client listing.
type ClientListResponse struct {
	Items    []ClientResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func clientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		Company:         c.Company,
		Notes:           c.Notes,
		JoinedDate:      c.JoinedDate,
		AddressLine1:    c.AddressLine1,
		AddressLine2:    c.AddressLine2,
		City:            c.City,
		State:           c.State,
		PostalCode:      c.PostalCode,
		Country:         c.Country,
		TaxID:           c.TaxID,
		DefaultCurrency: c.DefaultCurrency,
		DefaultTaxRate:  c.DefaultTaxRate,
		PaymentTerms:    c.PaymentTerms,
		DiscountRate:    c.DiscountRate,
		Status:          c.Status,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ClientsHandler handles tenant client CRUD.
type ClientsHandler struct {
	clientService *service.ClientService
	sessions      TenantSessions
	logger        *slog.Logger
	config        *config.Config
}

// NewClientsHandler creates a new clients handler
func NewClientsHandler(clientService *service.ClientService, sessions TenantSessions, logger *slog.Logger, cfg *config.Config) *ClientsHandler {
	return &ClientsHandler{clientService: clientService, sessions: sessions, logger: logger, config: cfg}
}

// List handles GET /api/clients requests
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ClientFilter{
		Query:  r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	clients, total, err := h.clientService.List(r.Context(), sess, filter)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}

	items := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		items = append(items, clientResponse(c))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	writeJSON(w, http.StatusOK, ClientListResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// Create handles POST /api/clients requests
func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	if req.Name == nil || req.Email == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name and email are required"})
		return
	}

	client := &domain.Client{
		Name:            *req.Name,
		Email:           *req.Email,
		Company:         req.Company,
		Notes:           req.Notes,
		JoinedDate:      req.JoinedDate,
		AddressLine1:    req.AddressLine1,
		AddressLine2:    req.AddressLine2,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		TaxID:           req.TaxID,
		DefaultCurrency: req.DefaultCurrency,
		DefaultTaxRate:  req.DefaultTaxRate,
		PaymentTerms:    req.PaymentTerms,
		DiscountRate:    req.DiscountRate,
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Status != nil {
		client.Status = *req.Status
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	createdBy := ""
	if claims != nil {
		createdBy = claims.Username
	}

	sess, err := h.sessions.Session(r.Context(), claims)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	created, err := h.clientService.Create(r.Context(), sess, client, createdBy)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusCreated, clientResponse(created))
}

// Get handles GET /api/clients/{id} requests
func (h *ClientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid client id"})
		return
	}

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	client, err := h.clientService.Get(r.Context(), sess, id)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusOK, clientResponse(client))
}

// Update handles PUT /api/clients/{id} requests
func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid client id"})
		return
	}

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	patch := domain.ClientPatch{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Company:         req.Company,
		Notes:           req.Notes,
		JoinedDate:      req.JoinedDate,
		AddressLine1:    req.AddressLine1,
		AddressLine2:    req.AddressLine2,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		TaxID:           req.TaxID,
		DefaultCurrency: req.DefaultCurrency,
		DefaultTaxRate:  req.DefaultTaxRate,
		PaymentTerms:    req.PaymentTerms,
		DiscountRate:    req.DiscountRate,
		Status:          req.Status,
	}

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	updated, err := h.clientService.Update(r.Context(), sess, id, patch)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusOK, clientResponse(updated))
}

// Delete handles DELETE /api/clients/{id} requests
func (h *ClientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid client id"})
		return
	}

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	if err := h.clientService.Delete(r.Context(), sess, id); err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
