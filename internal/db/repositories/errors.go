// Package repositories implements database access for organizations and admin
// credentials, including lifecycle management of the per-tenant document
// collections. Callers match failures with errors.Is against the sentinel
// errors below.
package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("organization not found")

	// ErrDuplicateOrganization is returned when an organization name is
	// already taken. Uniqueness is enforced by the database constraint, so
	// concurrent creates of the same name resolve to exactly one winner.
	ErrDuplicateOrganization = errors.New("organization with this name already exists")

	// ErrDuplicateAdminEmail is returned when an admin email is already in use.
	ErrDuplicateAdminEmail = errors.New("admin with this email already exists")

	// ErrMigrationFailed wraps failures while provisioning or dropping a
	// per-tenant collection. The surrounding transaction is rolled back, so
	// metadata and collection never diverge.
	ErrMigrationFailed = errors.New("tenant collection migration failed")
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// constraintViolated reports whether err is a unique violation on the named constraint
func constraintViolated(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && pqErr.Constraint == constraint
}
