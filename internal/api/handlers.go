package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahkanishk01/organization-management-api/internal/db/repositories"
	"github.com/sahkanishk01/organization-management-api/internal/middleware"
	"github.com/sahkanishk01/organization-management-api/internal/service"
	"github.com/sahkanishk01/organization-management-api/internal/telemetry"
)

// ---------------------------------------------------------------------------
// Request bodies
// ---------------------------------------------------------------------------

type createOrganizationRequest struct {
	OrganizationName string `json:"organization_name" binding:"required,min=2,max=100"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
}

type updateOrganizationRequest struct {
	NewName     *string `json:"new_name" binding:"omitempty,min=2,max=100"`
	NewEmail    *string `json:"new_email" binding:"omitempty,email"`
	NewPassword *string `json:"new_password" binding:"omitempty,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ---------------------------------------------------------------------------
// Organization handlers
// ---------------------------------------------------------------------------

type OrganizationHandlers struct {
	svc *service.OrganizationService
}

func NewOrganizationHandlers(svc *service.OrganizationService) *OrganizationHandlers {
	return &OrganizationHandlers{svc: svc}
}

// Create handles POST /org/create. No authentication: this is the first-admin
// bootstrap path.
func (h *OrganizationHandlers) Create(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	org, err := h.svc.Create(c.Request.Context(), service.CreateOrganizationInput{
		Name:          req.OrganizationName,
		AdminEmail:    req.Email,
		AdminPassword: req.Password,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	telemetry.OrganizationsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, org)
}

// Get handles GET /org/get?organization_name=<name>.
func (h *OrganizationHandlers) Get(c *gin.Context) {
	name := c.Query("organization_name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_name query parameter is required"})
		return
	}

	org, err := h.svc.Get(c.Request.Context(), name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// Update handles PUT /org/update?organization_name=<name>. The bearer token
// must belong to the organization being updated.
func (h *OrganizationHandlers) Update(c *gin.Context) {
	name := c.Query("organization_name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_name query parameter is required"})
		return
	}

	var req updateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	claims, _ := middleware.ClaimsFromContext(c)
	org, err := h.svc.Update(c.Request.Context(), claims, name, service.UpdateOrganizationInput{
		NewName:     req.NewName,
		NewEmail:    req.NewEmail,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// Delete handles DELETE /org/delete?organization_name=<name>. On success the
// organization, its admin, and its data collection are gone and the response
// carries no body.
func (h *OrganizationHandlers) Delete(c *gin.Context) {
	name := c.Query("organization_name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_name query parameter is required"})
		return
	}

	claims, _ := middleware.ClaimsFromContext(c)
	if err := h.svc.Delete(c.Request.Context(), claims, name); err != nil {
		writeServiceError(c, err)
		return
	}

	telemetry.OrganizationsDeletedTotal.Inc()
	c.Status(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Auth handlers
// ---------------------------------------------------------------------------

type AuthHandlers struct {
	svc *service.AuthService
}

func NewAuthHandlers(svc *service.AuthService) *AuthHandlers {
	return &AuthHandlers{svc: svc}
}

// Login handles POST /admin/login.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		telemetry.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		writeServiceError(c, err)
		return
	}

	telemetry.LoginAttemptsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"token":             result.Token,
		"token_type":        "bearer",
		"organization_name": result.OrganizationName,
		"admin_email":       result.AdminEmail,
	})
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// writeServiceError translates service and repository errors into HTTP
// responses. Anything unrecognised becomes a 500 with a generic message so
// driver details never leak to clients.
func writeServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, repositories.ErrDuplicateOrganization):
		c.JSON(http.StatusConflict, gin.H{"error": "Organization name already exists"})
	case errors.Is(err, repositories.ErrDuplicateAdminEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "Admin email already in use"})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Token does not grant access to this organization"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
