package service

import (
	"context"
	"log/slog"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/repository"
	"github.com/mathachew7/JoslaSync/internal/tenant"
)

// InvoiceService manages invoices inside a tenant database.
type InvoiceService struct {
	logger *slog.Logger
}

// NewInvoiceService creates the invoice service
func NewInvoiceService(logger *slog.Logger) *InvoiceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceService{logger: logger}
}

// Create stores a new invoice. Status defaults to Outstanding.
func (s *InvoiceService) Create(ctx context.Context, sess *tenant.Session, inv *domain.Invoice) (*domain.Invoice, error) {
	if inv.ClientName == "" {
		return nil, &domain.ValidationError{Field: "client_name", Reason: "client name is required"}
	}
	if len(inv.LineItems) == 0 {
		return nil, &domain.ValidationError{Field: "line_items", Reason: "at least one line item is required"}
	}
	for _, item := range inv.LineItems {
		if item.Description == "" {
			return nil, &domain.ValidationError{Field: "line_items", Reason: "line item description is required"}
		}
		if item.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "line_items", Reason: "line item quantity must be positive"}
		}
	}

	repo := repository.NewPostgresInvoiceRepository(sess, s.logger)
	if err := repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("invoice created",
		slog.Int64("id", inv.ID),
		slog.String("client_name", inv.ClientName),
	)
	return inv, nil
}

// Get returns one invoice by id.
func (s *InvoiceService) Get(ctx context.Context, sess *tenant.Session, id int64) (*domain.Invoice, error) {
	repo := repository.NewPostgresInvoiceRepository(sess, s.logger)
	return repo.Get(ctx, id)
}

// List returns a page of invoices, newest first.
func (s *InvoiceService) List(ctx context.Context, sess *tenant.Session, page, pageSize int) ([]*domain.Invoice, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	repo := repository.NewPostgresInvoiceRepository(sess, s.logger)
	return repo.List(ctx, (page-1)*pageSize, pageSize)
}
