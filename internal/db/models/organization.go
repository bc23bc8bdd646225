// Package models - organization.go defines the Organization record stored in the
// master database. Each organization owns exactly one admin and one per-tenant
// document collection.
package models

import "time"

// Organization represents an organization in the master database.
//
// CollectionName is derived once from the generated ID at creation time and
// never changes afterwards. Renaming an organization does not rename its
// collection, so renames need no data migration.
type Organization struct {
	ID             string     `json:"id"`
	Name           string     `json:"organization_name"`
	CollectionName string     `json:"collection_name"`
	AdminEmail     string     `json:"admin_email"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}
