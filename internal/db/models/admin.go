// admin.go defines the Admin credential record. Exactly one admin exists per
// organization; the record is created with the organization and cascades on
// delete.
package models

import "time"

// Admin represents an organization administrator account
type Admin struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	OrganizationID string     `db:"organization_id" json:"organization_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at"`
}
