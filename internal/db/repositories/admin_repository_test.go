package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var adminCols = []string{"id", "email", "password_hash", "organization_id", "created_at", "updated_at"}

func sampleAdminRow() *sqlmock.Rows {
	return sqlmock.NewRows(adminCols).
		AddRow("adm-1", "admin@acme.com", "$2a$12$hash", "org-1", time.Now(), nil)
}

func newAdminRepo(t *testing.T) (*AdminRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAdminRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newAdminRepo(t)
	mock.ExpectQuery(`(?s)SELECT.*FROM admins.*WHERE email`).
		WithArgs("admin@acme.com").
		WillReturnRows(sampleAdminRow())

	admin, err := repo.GetByEmail(context.Background(), "admin@acme.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.OrganizationID != "org-1" {
		t.Errorf("OrganizationID = %s, want org-1", admin.OrganizationID)
	}
	if admin.PasswordHash == "" {
		t.Error("PasswordHash is empty")
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newAdminRepo(t)
	mock.ExpectQuery(`(?s)SELECT.*FROM admins.*WHERE email`).
		WithArgs("ghost@acme.com").
		WillReturnRows(sqlmock.NewRows(adminCols))

	_, err := repo.GetByEmail(context.Background(), "ghost@acme.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestGetByOrganizationID_Found(t *testing.T) {
	repo, mock := newAdminRepo(t)
	mock.ExpectQuery(`(?s)SELECT.*FROM admins.*WHERE organization_id`).
		WithArgs("org-1").
		WillReturnRows(sampleAdminRow())

	admin, err := repo.GetByOrganizationID(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.Email != "admin@acme.com" {
		t.Errorf("Email = %s", admin.Email)
	}
}

func TestGetByOrganizationID_NotFound(t *testing.T) {
	repo, mock := newAdminRepo(t)
	mock.ExpectQuery(`(?s)SELECT.*FROM admins.*WHERE organization_id`).
		WithArgs("org-missing").
		WillReturnRows(sqlmock.NewRows(adminCols))

	_, err := repo.GetByOrganizationID(context.Background(), "org-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByOrganizationID() error = %v, want ErrNotFound", err)
	}
}
