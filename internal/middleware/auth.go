package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sahkanishk01/organization-management-api/internal/auth"
)

const (
	// ClaimsKey is the gin.Context key under which verified token claims are
	// stored for handlers.
	ClaimsKey = "claims"

	// AdminIDKey duplicates the admin ID from the claims so rate limiting can
	// key on it without a type assertion on the full claims struct.
	AdminIDKey = "admin_id"
)

// Auth validates the bearer token on protected routes and stores the verified
// claims in the request context. Missing or malformed headers, bad
// signatures, and expired tokens all abort with 401.
func Auth(verifier *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(AdminIDKey, claims.AdminID)

		c.Next()
	}
}

// ClaimsFromContext retrieves the claims stored by Auth. The second return is
// false on routes where the middleware did not run.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
