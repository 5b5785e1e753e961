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

// MemberHandlers handles a tenant's memberships and role assignments.
type MemberHandlers struct {
	membershipRepo repositories.MembershipRepository
	assignmentRepo repositories.RoleAssignmentRepository
	userRepo       repositories.UserRepository
}

func NewMemberHandlers(membershipRepo repositories.MembershipRepository, assignmentRepo repositories.RoleAssignmentRepository, userRepo repositories.UserRepository) *MemberHandlers {
	return &MemberHandlers{
		membershipRepo: membershipRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
	}
}

type ListMembersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListMembers lists the tenant's memberships.
func (h *MemberHandlers) ListMembers(c echo.Context) error {
	var req ListMembersRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "query", "Invalid query parameters")
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	ac, _ := common.GetAuthContext(c.Request().Context())
	members, err := h.membershipRepo.ListByTenant(c.Request().Context(), ac.Tenant.ID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list members")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"members": members,
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}

type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AddMember creates a membership for an existing user, with a role.
func (h *MemberHandlers) AddMember(c echo.Context) error {
	var req AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if req.Email == "" {
		return common.SendValidationError(c, "email", "email is required")
	}
	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	if !models.ValidRole(req.Role) {
		return common.SendValidationError(c, "role", "unknown role")
	}

	ctx := c.Request().Context()
	ac, _ := common.GetAuthContext(ctx)

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to look up user")
	}

	membership := &models.Membership{
		ID:       uuid.New(),
		TenantID: ac.Tenant.ID,
		UserID:   user.ID,
		Status:   models.MembershipStatusActive,
	}
	if err := h.membershipRepo.Create(ctx, membership); err != nil {
		return common.SendServerError(c, "Failed to create membership")
	}

	assignment := &models.RoleAssignment{
		ID:           uuid.New(),
		MembershipID: membership.ID,
		Role:         req.Role,
	}
	if err := h.assignmentRepo.Create(ctx, assignment); err != nil {
		return common.SendServerError(c, "Failed to assign role")
	}

	return c.JSON(http.StatusCreated, membership)
}

// RemoveMember archives a membership; the row persists for audit.
func (h *MemberHandlers) RemoveMember(c echo.Context) error {
	membershipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid membership id")
	}

	ac, _ := common.GetAuthContext(c.Request().Context())
	if err := h.membershipRepo.SetStatus(c.Request().Context(), ac.Tenant.ID, membershipID, models.MembershipStatusArchived); err != nil {
		return common.SendServerError(c, "Failed to remove member")
	}
	return c.NoContent(http.StatusNoContent)
}

type AssignRoleRequest struct {
	Role string `json:"role"`
	// Permissions are explicit grants on top of the role's defaults.
	Permissions []string `json:"permissions,omitempty"`
}

// AssignRole attaches a role assignment to a membership.
func (h *MemberHandlers) AssignRole(c echo.Context) error {
	membershipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid membership id")
	}

	var req AssignRoleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if !models.ValidRole(req.Role) {
		return common.SendValidationError(c, "role", "unknown role")
	}

	ctx := c.Request().Context()
	ac, _ := common.GetAuthContext(ctx)

	// Verify the membership belongs to this tenant.
	if _, err := h.membershipRepo.GetByID(ctx, ac.Tenant.ID, membershipID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Membership")
		}
		return common.SendServerError(c, "Failed to look up membership")
	}

	assignment := &models.RoleAssignment{
		ID:           uuid.New(),
		MembershipID: membershipID,
		Role:         req.Role,
		Permissions:  req.Permissions,
	}
	if err := h.assignmentRepo.Create(ctx, assignment); err != nil {
		return common.SendServerError(c, "Failed to assign role")
	}
	return c.JSON(http.StatusCreated, assignment)
}

// RevokeRole removes a role assignment from a membership.
func (h *MemberHandlers) RevokeRole(c echo.Context) error {
	membershipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid membership id")
	}
	assignmentID, err := uuid.Parse(c.Param("assignmentId"))
	if err != nil {
		return common.SendValidationError(c, "assignmentId", "Invalid assignment id")
	}

	if err := h.assignmentRepo.Delete(c.Request().Context(), membershipID, assignmentID); err != nil {
		return common.SendServerError(c, "Failed to revoke role")
	}
	return c.NoContent(http.StatusNoContent)
}
