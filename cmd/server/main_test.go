package main

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var driftOrgCols = []string{"id", "name", "collection_name", "admin_email", "created_at", "updated_at"}

func TestCheckTenantCollections_ReportsMissingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Now()
	mock.ExpectQuery(`(?s)SELECT.*FROM organizations.*ORDER BY created_at`).
		WillReturnRows(sqlmock.NewRows(driftOrgCols).
			AddRow("org-1", "Acme", "org_3f2c1d2eaaaabbbbcccc000000000001", "admin@acme.com", now, now).
			AddRow("org-2", "Globex", "org_deadbeefdeadbeefdeadbeef00000002", "root@globex.com", now, now))

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("org_3f2c1d2eaaaabbbbcccc000000000001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	// The second organization's table is gone, so the owning admin is looked
	// up to name a restore contact.
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("org_deadbeefdeadbeefdeadbeef00000002").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`(?s)SELECT.*FROM admins.*WHERE organization_id`).
		WithArgs("org-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "organization_id", "created_at", "updated_at"}).
			AddRow("adm-2", "root@globex.com", "hash", "org-2", now, now))

	if err := checkTenantCollections(db); err != nil {
		t.Fatalf("checkTenantCollections: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCheckTenantCollections_ListFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery(`(?s)SELECT.*FROM organizations`).
		WillReturnError(sqlmock.ErrCancelled)

	if err := checkTenantCollections(db); err == nil {
		t.Fatal("checkTenantCollections returned nil for a failing list query")
	}
}

func TestGenerateEphemeralSecret(t *testing.T) {
	s1, err := generateEphemeralSecret()
	if err != nil {
		t.Fatalf("generateEphemeralSecret: %v", err)
	}
	s2, err := generateEphemeralSecret()
	if err != nil {
		t.Fatalf("generateEphemeralSecret: %v", err)
	}
	if s1 == s2 {
		t.Error("two generated secrets are identical")
	}
	if len(s1) < 32 {
		t.Errorf("secret too short: %d chars", len(s1))
	}
}
