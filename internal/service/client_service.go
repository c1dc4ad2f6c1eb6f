package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/repository"
	"github.com/mathachew7/JoslaSync/internal/tenant"
)

// ClientService manages billable clients inside a tenant database.
type ClientService struct {
	logger *slog.Logger
}

// NewClientService creates the client service
func NewClientService(logger *slog.Logger) *ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientService{logger: logger}
}

// normalizeStatus title-cases a submitted status ("active" -> "Active") and
// validates it against the allowed set.
func normalizeStatus(status string) (string, error) {
	s := strings.TrimSpace(status)
	if s == "" {
		return "", nil
	}
	s = strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	if !domain.ValidClientStatus(s) {
		return "", &domain.ValidationError{
			Field:  "status",
			Reason: "status must be one of " + strings.Join(domain.ClientStatuses, ", "),
		}
	}
	return s, nil
}

// List returns a page of clients matching the filter plus the total count.
func (s *ClientService) List(ctx context.Context, sess *tenant.Session, filter domain.ClientFilter) ([]*domain.Client, int, error) {
	if filter.Status != "" {
		normalized, err := normalizeStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = normalized
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	repo := repository.NewPostgresClientRepository(sess, s.logger)
	return repo.List(ctx, filter)
}

// Get returns one client by id.
func (s *ClientService) Get(ctx context.Context, sess *tenant.Session, id uuid.UUID) (*domain.Client, error) {
	repo := repository.NewPostgresClientRepository(sess, s.logger)
	return repo.Get(ctx, id)
}

// Create stores a new client. An omitted status defaults to Active; the
// creator's username is stamped onto the row.
func (s *ClientService) Create(ctx context.Context, sess *tenant.Session, client *domain.Client, createdBy string) (*domain.Client, error) {
	if client.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "name is required"}
	}
	if err := validateEmail(client.Email); err != nil {
		return nil, &domain.ValidationError{Field: "email", Reason: "invalid email format"}
	}

	normalized, err := normalizeStatus(client.Status)
	if err != nil {
		return nil, err
	}
	client.Status = normalized
	client.CreatedBy = createdBy

	repo := repository.NewPostgresClientRepository(sess, s.logger)
	if err := repo.Create(ctx, client); err != nil {
		return nil, err
	}
	s.logger.Info("client created",
		slog.String("id", client.ID.String()),
		slog.String("name", client.Name),
		slog.String("created_by", createdBy),
	)
	return client, nil
}

// Update applies a partial update to a client.
func (s *ClientService) Update(ctx context.Context, sess *tenant.Session, id uuid.UUID, patch domain.ClientPatch) (*domain.Client, error) {
	if patch.Status != nil {
		normalized, err := normalizeStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &normalized
	}
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, &domain.ValidationError{Field: "email", Reason: "invalid email format"}
		}
	}

	repo := repository.NewPostgresClientRepository(sess, s.logger)
	return repo.Update(ctx, id, patch)
}

// Delete removes a client by id.
func (s *ClientService) Delete(ctx context.Context, sess *tenant.Session, id uuid.UUID) error {
	repo := repository.NewPostgresClientRepository(sess, s.logger)
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", slog.String("id", id.String()))
	return nil
}
