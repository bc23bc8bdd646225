// jwt.go handles session token creation, signing, and verification using a
// shared HMAC secret injected at construction time.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for malformed tokens, bad signatures, and
	// unexpected signing methods.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when the token's exp claim has passed.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the session token claims structure
type Claims struct {
	AdminID          string `json:"admin_id"`
	Email            string `json:"email"`
	OrganizationID   string `json:"org_id"`
	OrganizationName string `json:"org_name"`
	jwt.RegisteredClaims
}

// TokenIssuer issues and verifies signed session tokens. The secret and TTL
// come from configuration; the issuer carries no other state, so a single
// instance is shared across all requests.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenIssuer creates a TokenIssuer with the given HMAC secret, token
// lifetime, and iss claim value.
func NewTokenIssuer(secret string, ttl time.Duration, issuer string) *TokenIssuer {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
	}
}

// Issue creates a signed session token for an authenticated admin, scoped to
// the admin's organization.
func (t *TokenIssuer) Issue(adminID, email, orgID, orgName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		AdminID:          adminID,
		Email:            email,
		OrganizationID:   orgID,
		OrganizationName: orgName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.issuer,
			Subject:   adminID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(t.secret)
}

// Verify parses and validates a session token. It returns ErrExpiredToken for
// tokens past their expiry and ErrInvalidToken for everything else that fails
// verification.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
