package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

const clientColumns = `id, name, email, phone, company, notes, joined_date,
	address_line1, address_line2, city, state, postal_code, country,
	tax_id, default_currency, default_tax_rate, payment_terms, discount_rate,
	status, created_by, created_at, updated_at`

// PostgresClientRepository stores clients in a tenant database.
type PostgresClientRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewPostgresClientRepository creates a client repository over a tenant session
func NewPostgresClientRepository(db Querier, logger *slog.Logger) *PostgresClientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClientRepository{db: db, logger: logger}
}

// List returns a filtered, paginated page of clients plus the total count.
func (r *PostgresClientRepository) List(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, int, error) {
	where := []string{}
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+strings.TrimSpace(filter.Query)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", n, n, n))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM clients` + clause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := `SELECT ` + clientColumns + ` FROM clients` + clause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var out []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Get retrieves a client by ID
func (r *PostgresClientRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// Create inserts a new client row
func (r *PostgresClientRepository) Create(ctx context.Context, c *domain.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = domain.ClientStatusActive
	}
	query := `
		INSERT INTO clients (
			id, name, email, phone, company, notes, joined_date,
			address_line1, address_line2, city, state, postal_code, country,
			tax_id, default_currency, default_tax_rate, payment_terms, discount_rate,
			status, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Notes, c.JoinedDate,
		c.AddressLine1, c.AddressLine2, c.City, c.State, c.PostalCode, c.Country,
		c.TaxID, c.DefaultCurrency, c.DefaultTaxRate, c.PaymentTerms, c.DiscountRate,
		c.Status, c.CreatedBy,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create client",
			slog.String("name", c.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// Update applies only the fields present in patch and stamps updated_at.
func (r *PostgresClientRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ClientPatch) (*domain.Client, error) {
	set := []string{"updated_at = now()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Company != nil {
		add("company", *patch.Company)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.JoinedDate != nil {
		add("joined_date", *patch.JoinedDate)
	}
	if patch.AddressLine1 != nil {
		add("address_line1", *patch.AddressLine1)
	}
	if patch.AddressLine2 != nil {
		add("address_line2", *patch.AddressLine2)
	}
	if patch.City != nil {
		add("city", *patch.City)
	}
	if patch.State != nil {
		add("state", *patch.State)
	}
	if patch.PostalCode != nil {
		add("postal_code", *patch.PostalCode)
	}
	if patch.Country != nil {
		add("country", *patch.Country)
	}
	if patch.TaxID != nil {
		add("tax_id", *patch.TaxID)
	}
	if patch.DefaultCurrency != nil {
		add("default_currency", *patch.DefaultCurrency)
	}
	if patch.DefaultTaxRate != nil {
		add("default_tax_rate", *patch.DefaultTaxRate)
	}
	if patch.PaymentTerms != nil {
		add("payment_terms", *patch.PaymentTerms)
	}
	if patch.DiscountRate != nil {
		add("discount_rate", *patch.DiscountRate)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE clients SET %s WHERE id = $%d RETURNING `+clientColumns,
		strings.Join(set, ", "), len(args))

	row := r.db.QueryRowContext(ctx, query, args...)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return c, nil
}

// Delete removes a client row
func (r *PostgresClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*domain.Client, error) {
	c := &domain.Client{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.JoinedDate,
		&c.AddressLine1, &c.AddressLine2, &c.City, &c.State, &c.PostalCode, &c.Country,
		&c.TaxID, &c.DefaultCurrency, &c.DefaultTaxRate, &c.PaymentTerms, &c.DiscountRate,
		&c.Status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
