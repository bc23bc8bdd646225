// organization_repository.go implements OrganizationRepository, providing
// database operations for organization CRUD together with lifecycle management
// of the per-tenant document collection.
//
// Creating an organization has three effects: the organization row, the admin
// row, and the tenant collection (a JSONB document table). All three happen in
// one transaction; PostgreSQL DDL is transactional, so a failure at any point
// rolls back everything and the store never holds a partial organization.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sahkanishk01/organization-management-api/internal/db/models"
)

// OrganizationRepository handles database operations for organizations
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// CollectionName derives the tenant collection identifier from an organization
// ID. The ID is generated once at creation and immutable, so the collection
// name survives renames. Keying collections by the mutable
// organization name would make every rename a migration hazard.
func CollectionName(orgID string) string {
	return "org_" + strings.ReplaceAll(orgID, "-", "")
}

// CreateParams holds the inputs for Create
type CreateParams struct {
	Name         string
	AdminEmail   string
	PasswordHash string
}

// Create inserts the organization row, the admin row, and provisions the
// tenant collection in a single transaction. A duplicate name returns
// ErrDuplicateOrganization, a duplicate admin email ErrDuplicateAdminEmail;
// both leave the store untouched.
func (r *OrganizationRepository) Create(ctx context.Context, params CreateParams) (*models.Organization, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	org := &models.Organization{
		ID:         uuid.New().String(),
		Name:       params.Name,
		AdminEmail: params.AdminEmail,
	}
	org.CollectionName = CollectionName(org.ID)

	query := `
		INSERT INTO organizations (id, name, collection_name, admin_email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query, org.ID, org.Name, org.CollectionName, org.AdminEmail).
		Scan(&org.CreatedAt)
	if err != nil {
		if constraintViolated(err, "organizations_name_key") {
			return nil, ErrDuplicateOrganization
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	query = `
		INSERT INTO admins (id, email, password_hash, organization_id)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, query, uuid.New().String(), params.AdminEmail, params.PasswordHash, org.ID)
	if err != nil {
		if constraintViolated(err, "admins_email_key") {
			return nil, ErrDuplicateAdminEmail
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	if err := provisionCollection(ctx, tx, org); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return org, nil
}

// provisionCollection creates the tenant document table and seeds it with a
// metadata document recording the organization name and schema version.
func provisionCollection(ctx context.Context, tx *sql.Tx, org *models.Organization) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE %s (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			doc        JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, pq.QuoteIdentifier(org.CollectionName))

	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create tenant collection: %w", err)
	}

	meta, err := json.Marshal(map[string]interface{}{
		"_type":             "metadata",
		"organization_name": org.Name,
		"initialized_at":    time.Now().UTC().Format(time.RFC3339),
		"schema_version":    "1.0",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata document: %w", err)
	}

	seed := fmt.Sprintf(`INSERT INTO %s (doc) VALUES ($1)`, pq.QuoteIdentifier(org.CollectionName))
	if _, err := tx.ExecContext(ctx, seed, meta); err != nil {
		return fmt.Errorf("failed to seed tenant collection: %w", err)
	}

	return nil
}

// GetByName retrieves an organization by its name
func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	query := `
		SELECT id, name, collection_name, admin_email, created_at, updated_at
		FROM organizations
		WHERE name = $1
	`

	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&org.ID,
		&org.Name,
		&org.CollectionName,
		&org.AdminEmail,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	query := `
		SELECT id, name, collection_name, admin_email, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.CollectionName,
		&org.AdminEmail,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// List returns all organizations, newest first.
func (r *OrganizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	query := `
		SELECT id, name, collection_name, admin_email, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org := &models.Organization{}
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.CollectionName,
			&org.AdminEmail,
			&org.CreatedAt,
			&org.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// UpdateParams holds the optional fields for Update. Nil fields are untouched.
type UpdateParams struct {
	NewName         *string
	NewEmail        *string
	NewPasswordHash *string
}

// Update rewrites organization metadata and admin credentials in one
// transaction. Renames never touch the tenant collection: its identifier is
// derived from the immutable organization ID, so no visible partial-rename
// state can exist. A rename to a taken name returns ErrDuplicateOrganization.
func (r *OrganizationRepository) Update(ctx context.Context, name string, params UpdateParams) (*models.Organization, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// Lock the row so concurrent updates of the same organization serialize.
	var orgID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM organizations WHERE name = $1 FOR UPDATE`, name).Scan(&orgID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock organization: %w", err)
	}

	org := &models.Organization{}
	query := `
		UPDATE organizations
		SET name = COALESCE($2, name),
		    admin_email = COALESCE($3, admin_email),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, collection_name, admin_email, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query, orgID, params.NewName, params.NewEmail).Scan(
		&org.ID,
		&org.Name,
		&org.CollectionName,
		&org.AdminEmail,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if constraintViolated(err, "organizations_name_key") {
			return nil, ErrDuplicateOrganization
		}
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	if params.NewEmail != nil || params.NewPasswordHash != nil {
		query = `
			UPDATE admins
			SET email = COALESCE($2, email),
			    password_hash = COALESCE($3, password_hash),
			    updated_at = NOW()
			WHERE organization_id = $1
		`
		_, err = tx.ExecContext(ctx, query, orgID, params.NewEmail, params.NewPasswordHash)
		if err != nil {
			if constraintViolated(err, "admins_email_key") {
				return nil, ErrDuplicateAdminEmail
			}
			return nil, fmt.Errorf("failed to update admin: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return org, nil
}

// Delete removes the organization row (the admin cascades) and drops the
// tenant collection in one transaction. A failed drop rolls back the metadata
// delete, so orphaned collections cannot occur.
func (r *OrganizationRepository) Delete(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var orgID, collectionName string
	err = tx.QueryRowContext(ctx,
		`SELECT id, collection_name FROM organizations WHERE name = $1 FOR UPDATE`, name).
		Scan(&orgID, &collectionName)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock organization: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	drop := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, pq.QuoteIdentifier(collectionName))
	if _, err := tx.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CollectionExists reports whether the named tenant collection is present.
// Used by health tooling and tests; normal request paths never need it.
func (r *OrganizationRepository) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
		collectionName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check collection: %w", err)
	}
	return exists, nil
}
