package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

// PostgresInvoiceRepository stores invoices in a tenant database.
type PostgresInvoiceRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewPostgresInvoiceRepository creates an invoice repository over a tenant session
func NewPostgresInvoiceRepository(db Querier, logger *slog.Logger) *PostgresInvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresInvoiceRepository{db: db, logger: logger}
}

// Create inserts a new invoice with its line items serialized as JSONB.
func (r *PostgresInvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.Status == "" {
		inv.Status = "Outstanding"
	}
	items, err := json.Marshal(inv.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}
	query := `
		INSERT INTO invoices (client_name, invoice_title, invoice_date, status, line_items, discount, tax, total, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		inv.ClientName, inv.InvoiceTitle, inv.InvoiceDate, inv.Status,
		items, inv.Discount, inv.Tax, inv.Total, inv.Notes,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create invoice",
			slog.String("client_name", inv.ClientName),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// Get retrieves an invoice by ID
func (r *PostgresInvoiceRepository) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, client_name, invoice_title, invoice_date, status, line_items, discount, tax, total, notes, created_at
		FROM invoices WHERE id = $1
	`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

// List returns invoices ordered by creation, newest first.
func (r *PostgresInvoiceRepository) List(ctx context.Context, offset, limit int) ([]*domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_name, invoice_title, invoice_date, status, line_items, discount, tax, total, notes, created_at
		FROM invoices ORDER BY created_at DESC OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var out []*domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	var title, notes sql.NullString
	var items []byte
	err := row.Scan(
		&inv.ID, &inv.ClientName, &title, &inv.InvoiceDate, &inv.Status,
		&items, &inv.Discount, &inv.Tax, &inv.Total, &notes, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.InvoiceTitle = title.String
	inv.Notes = notes.String
	if err := json.Unmarshal(items, &inv.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode line items: %w", err)
	}
	return inv, nil
}
