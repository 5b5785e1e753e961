package authflow

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"studiokit/internal/common"
	"studiokit/internal/models"
	"studiokit/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// membershipStage finds the caller's membership in the tenant and the
// roles attached to it. Platform admins without a real row get a
// synthetic in-memory membership so downstream code treats admin access
// uniformly with member access; the synthetic row is never persisted.
type membershipStage struct {
	memberships repositories.MembershipRepository
	assignments repositories.RoleAssignmentRepository
}

func (s *membershipStage) Name() string { return "membership" }

func (s *membershipStage) Run(c echo.Context, ac *common.AuthContext) error {
	if !ac.Authenticated() {
		return nil
	}
	ctx := c.Request().Context()

	membership, err := s.memberships.GetByTenantAndUser(ctx, ac.Tenant.ID, ac.Claims.UserID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		membership = nil
	}

	// Only an active row grants access. Archived and inactive rows are
	// kept for audit but count as no membership at all, so removal takes
	// effect on the very next request.
	if membership != nil && membership.Status != models.MembershipStatusActive {
		membership = nil
	}

	if membership == nil {
		if !ac.IsPlatformAdmin {
			return &Terminal{
				Status:  http.StatusUnauthorized,
				Code:    common.CodeUnauthorized,
				Message: "No membership in this studio",
			}
		}
		now := time.Now()
		ac.Membership = &models.Membership{
			ID:        uuid.New(),
			TenantID:  ac.Tenant.ID,
			UserID:    ac.Claims.UserID,
			Status:    models.MembershipStatusActive,
			JoinedAt:  now,
			CreatedAt: now,
			UpdatedAt: now,
			Synthetic: true,
		}
		return nil
	}

	ac.Membership = membership

	assignments, err := s.assignments.ListByMembership(ctx, membership.ID)
	if err != nil {
		return err
	}
	ac.RoleAssignments = assignments

	// The view-as override pins the role set; persisted roles must not
	// widen it back up.
	if ac.RoleOverride != "" {
		return nil
	}
	for _, a := range assignments {
		if !slices.Contains(ac.Roles, a.Role) {
			ac.Roles = append(ac.Roles, a.Role)
		}
	}
	return nil
}
