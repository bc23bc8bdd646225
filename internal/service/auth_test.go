package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahkanishk01/organization-management-api/internal/auth"
	"github.com/sahkanishk01/organization-management-api/internal/db/models"
	"github.com/sahkanishk01/organization-management-api/internal/db/repositories"
)

type fakeAdminStore struct {
	getFn func(ctx context.Context, email string) (*models.Admin, error)
}

func (f *fakeAdminStore) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return f.getFn(ctx, email)
}

func acmeAdmin(t *testing.T, password string) *models.Admin {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.Admin{
		ID:             "adm-1",
		Email:          "admin@acme.com",
		PasswordHash:   hash,
		OrganizationID: "org-1",
		CreatedAt:      time.Now(),
	}
}

func newAuthService(admins AdminStore, orgs OrganizationStore) *AuthService {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour, "test")
	return NewAuthService(admins, orgs, issuer, testLogger(), 0)
}

func TestLogin_Success(t *testing.T) {
	admins := &fakeAdminStore{
		getFn: func(_ context.Context, email string) (*models.Admin, error) {
			assert.Equal(t, "admin@acme.com", email)
			return acmeAdmin(t, "s3cret-pw"), nil
		},
	}
	orgs := &fakeOrgStore{
		getIDFn: func(_ context.Context, id string) (*models.Organization, error) {
			assert.Equal(t, "org-1", id)
			return acmeOrg(), nil
		},
	}
	svc := newAuthService(admins, orgs)

	result, err := svc.Login(context.Background(), "admin@acme.com", "s3cret-pw")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "Acme", result.OrganizationName)
	assert.Equal(t, "admin@acme.com", result.AdminEmail)

	claims, err := auth.NewTokenIssuer("test-secret", time.Hour, "test").Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.Equal(t, "Acme", claims.OrganizationName)
	assert.Equal(t, "adm-1", claims.AdminID)
}

func TestLogin_UnknownEmail(t *testing.T) {
	admins := &fakeAdminStore{
		getFn: func(context.Context, string) (*models.Admin, error) {
			return nil, repositories.ErrNotFound
		},
	}
	svc := newAuthService(admins, &fakeOrgStore{})

	_, err := svc.Login(context.Background(), "ghost@acme.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	admins := &fakeAdminStore{
		getFn: func(context.Context, string) (*models.Admin, error) {
			return acmeAdmin(t, "s3cret-pw"), nil
		},
	}
	svc := newAuthService(admins, &fakeOrgStore{})

	_, err := svc.Login(context.Background(), "admin@acme.com", "wrong-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StoreFailure(t *testing.T) {
	admins := &fakeAdminStore{
		getFn: func(context.Context, string) (*models.Admin, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newAuthService(admins, &fakeOrgStore{})

	_, err := svc.Login(context.Background(), "admin@acme.com", "s3cret-pw")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
