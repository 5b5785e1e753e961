package handlers

import (
	"errors"
	"net/http"

	"studiokit/internal/common"
	"studiokit/internal/models"
	"studiokit/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// CustomRoleHandlers handles tenant-defined permission bundles.
type CustomRoleHandlers struct {
	customRoleRepo repositories.CustomRoleRepository
	membershipRepo repositories.MembershipRepository
}

func NewCustomRoleHandlers(customRoleRepo repositories.CustomRoleRepository, membershipRepo repositories.MembershipRepository) *CustomRoleHandlers {
	return &CustomRoleHandlers{
		customRoleRepo: customRoleRepo,
		membershipRepo: membershipRepo,
	}
}

// ListCustomRoles lists the tenant's custom roles.
func (h *CustomRoleHandlers) ListCustomRoles(c echo.Context) error {
	ac, _ := common.GetAuthContext(c.Request().Context())
	roles, err := h.customRoleRepo.ListByTenant(c.Request().Context(), ac.Tenant.ID)
	if err != nil {
		return common.SendServerError(c, "Failed to list custom roles")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"custom_roles": roles})
}

type CustomRoleRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// CreateCustomRole creates a custom role for the tenant.
func (h *CustomRoleHandlers) CreateCustomRole(c echo.Context) error {
	var req CustomRoleRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}

	ac, _ := common.GetAuthContext(c.Request().Context())
	role := &models.CustomRole{
		ID:          uuid.New(),
		TenantID:    ac.Tenant.ID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}
	if err := h.customRoleRepo.Create(c.Request().Context(), role); err != nil {
		return common.SendServerError(c, "Failed to create custom role")
	}
	return c.JSON(http.StatusCreated, role)
}

// UpdateCustomRole updates a custom role's name and permissions.
func (h *CustomRoleHandlers) UpdateCustomRole(c echo.Context) error {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid role id")
	}

	var req CustomRoleRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}

	ctx := c.Request().Context()
	ac, _ := common.GetAuthContext(ctx)

	role, err := h.customRoleRepo.GetByID(ctx, ac.Tenant.ID, roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Custom role")
		}
		return common.SendServerError(c, "Failed to look up custom role")
	}

	role.Name = req.Name
	role.Description = req.Description
	role.Permissions = req.Permissions
	if err := h.customRoleRepo.Update(ctx, role); err != nil {
		return common.SendServerError(c, "Failed to update custom role")
	}
	return c.JSON(http.StatusOK, role)
}

// DeleteCustomRole deletes a custom role.
func (h *CustomRoleHandlers) DeleteCustomRole(c echo.Context) error {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid role id")
	}

	ac, _ := common.GetAuthContext(c.Request().Context())
	if err := h.customRoleRepo.Delete(c.Request().Context(), ac.Tenant.ID, roleID); err != nil {
		return common.SendServerError(c, "Failed to delete custom role")
	}
	return c.NoContent(http.StatusNoContent)
}

// AttachCustomRole attaches a custom role to a membership.
func (h *CustomRoleHandlers) AttachCustomRole(c echo.Context) error {
	return h.toggleAttachment(c, true)
}

// DetachCustomRole detaches a custom role from a membership.
func (h *CustomRoleHandlers) DetachCustomRole(c echo.Context) error {
	return h.toggleAttachment(c, false)
}

func (h *CustomRoleHandlers) toggleAttachment(c echo.Context, attach bool) error {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid role id")
	}
	membershipID, err := uuid.Parse(c.Param("membershipId"))
	if err != nil {
		return common.SendValidationError(c, "membershipId", "Invalid membership id")
	}

	ctx := c.Request().Context()
	ac, _ := common.GetAuthContext(ctx)

	if _, err := h.customRoleRepo.GetByID(ctx, ac.Tenant.ID, roleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Custom role")
		}
		return common.SendServerError(c, "Failed to look up custom role")
	}
	if _, err := h.membershipRepo.GetByID(ctx, ac.Tenant.ID, membershipID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Membership")
		}
		return common.SendServerError(c, "Failed to look up membership")
	}

	if attach {
		err = h.customRoleRepo.Attach(ctx, membershipID, roleID)
	} else {
		err = h.customRoleRepo.Detach(ctx, membershipID, roleID)
	}
	if err != nil {
		return common.SendServerError(c, "Failed to update attachment")
	}
	return c.NoContent(http.StatusNoContent)
}
