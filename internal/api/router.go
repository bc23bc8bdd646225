// Package api wires together all HTTP routes.
//
// Route grouping:
//   - /org/create and /org/get are unauthenticated. Creation is the
//     first-admin bootstrap path and lookup is public read-only data.
//   - /org/update and /org/delete require a bearer token scoped to the
//     organization being modified.
//   - /admin/login is unauthenticated but carries a strict rate limit since
//     every request costs a bcrypt comparison.
package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/sahkanishk01/organization-management-api/internal/auth"
	"github.com/sahkanishk01/organization-management-api/internal/config"
	"github.com/sahkanishk01/organization-management-api/internal/db/repositories"
	"github.com/sahkanishk01/organization-management-api/internal/middleware"
	"github.com/sahkanishk01/organization-management-api/internal/service"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) invokes Shutdown after the HTTP server
// has drained in-flight requests.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, database *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	orgRepo := repositories.NewOrganizationRepository(database)
	adminRepo := repositories.NewAdminRepository(sqlx.NewDb(database, "postgres"))

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	orgSvc := service.NewOrganizationService(orgRepo, slog.Default(), cfg.Database.QueryTimeout)
	authSvc := service.NewAuthService(adminRepo, orgRepo, issuer, slog.Default(), cfg.Database.QueryTimeout)

	orgHandlers := NewOrganizationHandlers(orgSvc)
	authHandlers := NewAuthHandlers(authSvc)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeaders(middleware.APISecurityHeadersConfig()))

	router.GET("/health", healthCheckHandler(database))
	router.GET("/version", versionHandler())

	bg := &BackgroundServices{}

	generalLimiter := middleware.NewRateLimiter(generalRateLimitConfig(cfg))
	authLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
	bg.rateLimiters = append(bg.rateLimiters, generalLimiter, authLimiter)

	org := router.Group("/org")
	{
		public := org.Group("")
		if cfg.Security.RateLimiting.Enabled {
			public.Use(middleware.RateLimit(generalLimiter))
		}
		public.POST("/create", orgHandlers.Create)
		public.GET("/get", orgHandlers.Get)

		protected := org.Group("")
		protected.Use(middleware.Auth(issuer))
		if cfg.Security.RateLimiting.Enabled {
			protected.Use(middleware.RateLimit(generalLimiter))
		}
		protected.PUT("/update", orgHandlers.Update)
		protected.DELETE("/delete", orgHandlers.Delete)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.RateLimit(authLimiter))
	{
		admin.POST("/login", authHandlers.Login)
	}

	return router, bg
}

// generalRateLimitConfig maps the configured limits onto the limiter,
// falling back to defaults for unset values.
func generalRateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rlc := middleware.DefaultRateLimitConfig()
	if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		rlc.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
	}
	if cfg.Security.RateLimiting.Burst > 0 {
		rlc.BurstSize = cfg.Security.RateLimiting.Burst
	}
	return rlc
}

func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware emits one structured log record per request.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles cross-origin requests against the configured
// allow-list.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
