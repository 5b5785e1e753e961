package handlers

import (
	"errors"
	"net/http"

	"studiokit/internal/common"
	"studiokit/internal/repositories"
	"studiokit/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// AdminHandlers handles platform-operator routes.
type AdminHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
	tenantRepo  repositories.TenantRepository
}

func NewAdminHandlers(authService services.AuthService, userRepo repositories.UserRepository, tenantRepo repositories.TenantRepository) *AdminHandlers {
	return &AdminHandlers{
		authService: authService,
		userRepo:    userRepo,
		tenantRepo:  tenantRepo,
	}
}

type ImpersonateRequest struct {
	UserID string `json:"user_id"`
}

// Impersonate issues a token acting as another user, with the real
// operator recorded in the impersonatorId claim.
func (h *AdminHandlers) Impersonate(c echo.Context) error {
	var req ImpersonateRequest
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return common.SendValidationError(c, "user_id", "user_id is required")
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		return common.SendValidationError(c, "user_id", "Invalid user id")
	}

	ctx := c.Request().Context()
	ac, _ := common.GetAuthContext(ctx)

	if _, err := h.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to look up user")
	}

	tokens, err := h.authService.GenerateImpersonationToken(ctx, targetID, ac.Claims.UserID)
	if err != nil {
		return common.SendServerError(c, "Failed to issue impersonation token")
	}
	return c.JSON(http.StatusOK, tokens)
}

type ListTenantsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListTenants lists all tenants on the platform.
func (h *AdminHandlers) ListTenants(c echo.Context) error {
	var req ListTenantsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "query", "Invalid query parameters")
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	tenants, err := h.tenantRepo.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list tenants")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}
