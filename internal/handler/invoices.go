package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/security/middleware"
	"github.com/mathachew7/JoslaSync/internal/service"
	"github.com/mathachew7/JoslaSync/pkg/config"
)

// InvoiceRequest carries a new invoice.
type InvoiceRequest struct {
	ClientName   string            `json:"client_name"`
	InvoiceTitle string            `json:"invoice_title"`
	InvoiceDate  time.Time         `json:"invoice_date"`
	Status       string            `json:"status"`
	LineItems    []domain.LineItem `json:"line_items"`
	Discount     float64           `json:"discount"`
	Tax          float64           `json:"tax"`
	Total        float64           `json:"total"`
	Notes        string            `json:"notes"`
}

// InvoiceResponse is the API view of an invoice.
type InvoiceResponse struct {
	ID           int64             `json:"id"`
	ClientName   string            `json:"client_name"`
	InvoiceTitle string            `json:"invoice_title"`
	InvoiceDate  time.Time         `json:"invoice_date"`
	Status       string            `json:"status"`
	LineItems    []domain.LineItem `json:"line_items"`
	Discount     float64           `json:"discount"`
	Tax          float64           `json:"tax"`
	Total        float64           `json:"total"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

func invoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:           inv.ID,
		ClientName:   inv.ClientName,
		InvoiceTitle: inv.InvoiceTitle,
		InvoiceDate:  inv.InvoiceDate,
		Status:       inv.Status,
		LineItems:    inv.LineItems,
		Discount:     inv.Discount,
		Tax:          inv.Tax,
		Total:        inv.Total,
		Notes:        inv.Notes,
		CreatedAt:    inv.CreatedAt,
	}
}

// InvoicesHandler handles tenant invoice operations.
type InvoicesHandler struct {
	invoiceService *service.InvoiceService
	sessions       TenantSessions
	logger         *slog.Logger
	config         *config.Config
}

// NewInvoicesHandler creates a new invoices handler
func NewInvoicesHandler(invoiceService *service.InvoiceService, sessions TenantSessions, logger *slog.Logger, cfg *config.Config) *InvoicesHandler {
	return &InvoicesHandler{invoiceService: invoiceService, sessions: sessions, logger: logger, config: cfg}
}

// Create handles POST /api/invoices requests
func (h *InvoicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	inv := &domain.Invoice{
		ClientName:   req.ClientName,
		InvoiceTitle: req.InvoiceTitle,
		InvoiceDate:  req.InvoiceDate,
		Status:       req.Status,
		LineItems:    req.LineItems,
		Discount:     req.Discount,
		Tax:          req.Tax,
		Total:        req.Total,
		Notes:        req.Notes,
	}
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = time.Now().UTC()
	}

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	created, err := h.invoiceService.Create(r.Context(), sess, inv)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusCreated, invoiceResponse(created))
}

// Get handles GET /api/invoices/{id} requests
func (h *InvoicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid invoice id"})
		return
	}

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	inv, err := h.invoiceService.Get(r.Context(), sess, id)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusOK, invoiceResponse(inv))
}

// List handles GET /api/invoices requests
func (h *InvoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	sess, err := h.sessions.Session(r.Context(), middleware.GetClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	defer sess.Close()

	invoices, err := h.invoiceService.List(r.Context(), sess, page, pageSize)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}

	items := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, invoiceResponse(inv))
	}
	writeJSON(w, http.StatusOK, items)
}
