package authflow

import (
	"studiokit/internal/common"
	"studiokit/internal/models"
	"studiokit/internal/repositories"

	"github.com/labstack/echo/v4"
)

// rolePermissions is the fixed role → default permission set table.
// Owner is a superset of admin, admin of instructor; student grants
// nothing by default. Permissions are only ever added, never subtracted;
// there is no deny primitive.
var rolePermissions = func() map[string][]string {
	instructor := []string{
		common.PermViewSchedule,
		common.PermManageSchedule,
		common.PermViewMembers,
	}
	admin := append([]string{
		common.PermManageMembers,
		common.PermManageBookings,
		common.PermViewReports,
		common.PermManageSettings,
	}, instructor...)
	owner := append([]string{
		common.PermManageBilling,
		common.PermRunPayroll,
		common.PermManageRoles,
		common.PermManageFeatures,
	}, admin...)

	return map[string][]string{
		models.RoleStudent:    {},
		models.RoleInstructor: instructor,
		models.RoleAdmin:      admin,
		models.RoleOwner:      owner,
	}
}()

// RolePermissions returns the default permission keys for a fixed role.
func RolePermissions(role string) []string {
	return rolePermissions[role]
}

// permissionStage merges role defaults, per-assignment overrides and
// custom-role grants into the immutable permission set. Until it runs,
// the zero-value set on the context denies everything.
type permissionStage struct {
	customRoles repositories.CustomRoleRepository
}

func (s *permissionStage) Name() string { return "permissions" }

func (s *permissionStage) Run(c echo.Context, ac *common.AuthContext) error {
	if ac.Membership == nil {
		ac.Permissions = common.NewPermissionSet()
		return nil
	}

	groups := make([][]string, 0, len(ac.Roles)+len(ac.RoleAssignments)+1)
	for _, role := range ac.Roles {
		groups = append(groups, rolePermissions[role])
	}

	// A view-as session shows exactly what the chosen role sees, so the
	// membership's explicit grants are not applied on top of it.
	if ac.RoleOverride == "" {
		for _, a := range ac.RoleAssignments {
			groups = append(groups, a.Permissions)
		}

		if !ac.Membership.Synthetic {
			customRoles, err := s.customRoles.ListByMembership(c.Request().Context(), ac.Membership.ID)
			if err != nil {
				return err
			}
			for _, cr := range customRoles {
				groups = append(groups, cr.Permissions)
			}
		}
	}

	ac.Permissions = common.NewPermissionSet(groups...)
	return nil
}
