// Package middleware provides the Gin HTTP middleware chain. Ordering is
// enforced in internal/api/router.go:
//
//	Recovery → RequestID → Metrics → Logger → CORS → SecurityHeaders → [RateLimit] → [Auth] → Handler
//
// Security headers run on every response including errors. Rate limiting on
// the login route runs before authentication so brute-force traffic is shed
// before any bcrypt work. Auth populates the admin claims that handlers read
// for ownership checks.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sahkanishk01/organization-management-api/internal/telemetry"
)

// Metrics records http_requests_total and http_request_duration_seconds for
// every request. The path label is set from c.FullPath(), the matched route
// template, rather than the raw URL; requests that match no route use the
// literal "<no-route>" so unhandled paths cannot inflate label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
