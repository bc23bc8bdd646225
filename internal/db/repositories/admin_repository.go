// admin_repository.go implements AdminRepository, the credential lookup used
// by the login flow. It is sqlx-based: admin rows map straight onto the model
// via db struct tags instead of hand-written Scan lists.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sahkanishk01/organization-management-api/internal/db/models"
)

// AdminRepository handles database operations for admin credentials
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetByEmail retrieves an admin by email address
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, organization_id, created_at, updated_at
		FROM admins
		WHERE email = $1
	`

	admin := &models.Admin{}
	if err := r.db.GetContext(ctx, admin, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	return admin, nil
}

// GetByOrganizationID retrieves the admin owning the given organization
func (r *AdminRepository) GetByOrganizationID(ctx context.Context, orgID string) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, organization_id, created_at, updated_at
		FROM admins
		WHERE organization_id = $1
	`

	admin := &models.Admin{}
	if err := r.db.GetContext(ctx, admin, query, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	return admin, nil
}
