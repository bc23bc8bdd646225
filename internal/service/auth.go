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

// AdminStore is the subset of the admin repository the auth service uses.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// Issuer mints signed tokens for authenticated admins.
type Issuer interface {
	Issue(adminID, email, orgID, orgName string) (string, error)
}

type AuthService struct {
	admins       AdminStore
	orgs         OrganizationStore
	issuer       Issuer
	logger       *slog.Logger
	queryTimeout time.Duration
}

func NewAuthService(admins AdminStore, orgs OrganizationStore, issuer Issuer, logger *slog.Logger, queryTimeout time.Duration) *AuthService {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &AuthService{admins: admins, orgs: orgs, issuer: issuer, logger: logger, queryTimeout: queryTimeout}
}

// LoginResult carries the signed token together with the identity it was
// minted for, so callers can echo both back to the client.
type LoginResult struct {
	Token            string
	OrganizationName string
	AdminEmail       string
}

// Login verifies the admin credentials and returns a signed bearer token
// scoped to the admin's organization. Unknown email and wrong password both
// map to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Burn a bcrypt comparison so unknown emails take as long as
			// wrong passwords.
			auth.CheckPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("admin lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !auth.CheckPassword(password, admin.PasswordHash) {
		s.logger.Warn("login rejected", slog.String("admin_id", admin.ID))
		return nil, ErrInvalidCredentials
	}

	org, err := s.orgs.GetByID(ctx, admin.OrganizationID)
	if err != nil {
		s.logger.Error("organization lookup failed",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	token, err := s.issuer.Issue(admin.ID, admin.Email, org.ID, org.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("admin logged in",
		slog.String("admin_id", admin.ID),
		slog.String("organization", org.Name))
	return &LoginResult{
		Token:            token,
		OrganizationName: org.Name,
		AdminEmail:       admin.Email,
	}, nil
}

// dummyHash is a bcrypt digest of a throwaway string, used only to keep the
// unknown-email path from returning faster than the wrong-password path.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
