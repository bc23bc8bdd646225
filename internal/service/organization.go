// Package service holds the business logic between the HTTP handlers and the
// repositories. Services own error classification: repository sentinels pass
// through untouched, everything else is folded into ErrStoreUnavailable so
// handlers never see driver-level errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sahkanishk01/organization-management-api/internal/auth"
	"github.com/sahkanishk01/organization-management-api/internal/db/models"
	"github.com/sahkanishk01/organization-management-api/internal/db/repositories"
)

// OrganizationStore is the subset of the organization repository the service
// depends on.
type OrganizationStore interface {
	Create(ctx context.Context, params repositories.CreateParams) (*models.Organization, error)
	GetByName(ctx context.Context, name string) (*models.Organization, error)
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	Update(ctx context.Context, name string, params repositories.UpdateParams) (*models.Organization, error)
	Delete(ctx context.Context, name string) error
}

type OrganizationService struct {
	store        OrganizationStore
	logger       *slog.Logger
	queryTimeout time.Duration
}

func NewOrganizationService(store OrganizationStore, logger *slog.Logger, queryTimeout time.Duration) *OrganizationService {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &OrganizationService{store: store, logger: logger, queryTimeout: queryTimeout}
}

// CreateOrganizationInput carries the fields needed to register a new
// organization together with its admin account.
type CreateOrganizationInput struct {
	Name          string
	AdminEmail    string
	AdminPassword string
}

// Create registers an organization, its admin account, and its dedicated
// data collection in one transaction. The plaintext password is hashed here
// so it never reaches the store layer.
func (s *OrganizationService) Create(ctx context.Context, input CreateOrganizationInput) (*models.Organization, error) {
	hash, err := auth.HashPassword(input.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	org, err := s.store.Create(ctx, repositories.CreateParams{
		Name:         input.Name,
		AdminEmail:   input.AdminEmail,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, s.classify(err, "create organization", slog.String("organization", input.Name))
	}

	s.logger.Info("organization created",
		slog.String("organization", org.Name),
		slog.String("collection", org.CollectionName))
	return org, nil
}

// Get fetches an organization by its unique name.
func (s *OrganizationService) Get(ctx context.Context, name string) (*models.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	org, err := s.store.GetByName(ctx, name)
	if err != nil {
		return nil, s.classify(err, "get organization", slog.String("organization", name))
	}
	return org, nil
}

// UpdateOrganizationInput lists the mutable fields of an organization. Nil
// pointers leave the corresponding field unchanged.
type UpdateOrganizationInput struct {
	NewName     *string
	NewEmail    *string
	NewPassword *string
}

func (in UpdateOrganizationInput) empty() bool {
	return in.NewName == nil && in.NewEmail == nil && in.NewPassword == nil
}

// Update applies a partial update to the organization named name. The actor
// claims must belong to that same organization; renames never touch the data
// collection because it is keyed by the immutable organization ID.
func (s *OrganizationService) Update(ctx context.Context, actor *auth.Claims, name string, input UpdateOrganizationInput) (*models.Organization, error) {
	if input.empty() {
		return nil, &ValidationError{Field: "body", Reason: "at least one field must be provided"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.authorize(ctx, actor, name); err != nil {
		return nil, err
	}

	params := repositories.UpdateParams{
		NewName:  input.NewName,
		NewEmail: input.NewEmail,
	}
	if input.NewPassword != nil {
		hash, err := auth.HashPassword(*input.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		params.NewPasswordHash = &hash
	}

	org, err := s.store.Update(ctx, name, params)
	if err != nil {
		return nil, s.classify(err, "update organization", slog.String("organization", name))
	}

	s.logger.Info("organization updated",
		slog.String("organization", org.Name),
		slog.String("admin_id", actor.AdminID))
	return org, nil
}

// Delete removes the organization, its admin account, and its data
// collection. The actor claims must belong to the organization being deleted.
func (s *OrganizationService) Delete(ctx context.Context, actor *auth.Claims, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.authorize(ctx, actor, name); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, name); err != nil {
		return s.classify(err, "delete organization", slog.String("organization", name))
	}

	s.logger.Info("organization deleted",
		slog.String("organization", name),
		slog.String("admin_id", actor.AdminID))
	return nil
}

// authorize checks that the actor's token was issued for the organization
// named name. The check compares organization IDs rather than names so a
// token issued before a rename stays valid for its own organization.
func (s *OrganizationService) authorize(ctx context.Context, actor *auth.Claims, name string) error {
	org, err := s.store.GetByName(ctx, name)
	if err != nil {
		return s.classify(err, "authorize", slog.String("organization", name))
	}
	if actor == nil || actor.OrganizationID != org.ID {
		return ErrUnauthorized
	}
	return nil
}

// classify passes domain sentinels through and downgrades everything else to
// ErrStoreUnavailable, logging the underlying cause once at this boundary.
func (s *OrganizationService) classify(err error, op string, attrs ...any) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, repositories.ErrDuplicateOrganization),
		errors.Is(err, repositories.ErrDuplicateAdminEmail),
		errors.Is(err, repositories.ErrMigrationFailed):
		return err
	}
	s.logger.Error("store operation failed", append(attrs, slog.String("op", op), slog.Any("error", err))...)
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
