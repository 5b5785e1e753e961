package authflow

import (
	"errors"
	"net/http"
	"slices"

	"studiokit/internal/common"
	"studiokit/internal/models"
	"studiokit/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// RoleOverrideCookie lets a platform admin view a tenant as a specific
// role for support purposes.
const RoleOverrideCookie = "__impersonate_role"

// Legacy global role values that also denote a platform admin. The
// is_platform_admin flag and this legacy string are two historically
// independent signals; both are honored, OR'd together.
var legacyAdminRoles = []string{"owner", "admin", "system_admin", "platform_admin"}

// principalStage determines whether the authenticated caller operates
// the platform itself. Administrative privilege follows the real
// operator through an impersonation chain, but is never inferred from
// merely impersonating a privileged account.
type principalStage struct {
	users repositories.UserRepository
}

func (s *principalStage) Name() string { return "principal" }

func (s *principalStage) Run(c echo.Context, ac *common.AuthContext) error {
	if !ac.Authenticated() {
		return nil
	}
	ctx := c.Request().Context()

	user, err := s.users.GetByID(ctx, ac.Claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Terminal{
				Status:  http.StatusUnauthorized,
				Code:    common.CodeUnauthorized,
				Message: "Unknown user",
			}
		}
		return err
	}
	ac.User = user

	ac.IsPlatformAdmin = isPlatformAdmin(user)
	if !ac.IsPlatformAdmin && ac.Claims.Impersonated() {
		impersonator, err := s.users.GetByID(ctx, *ac.Claims.ImpersonatorID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if impersonator != nil {
			ac.IsPlatformAdmin = isPlatformAdmin(impersonator)
		}
	}

	if !ac.IsPlatformAdmin {
		return nil
	}

	// View-as override: the resolved role set becomes exactly the cookie
	// role. Otherwise platform admins enter every tenant as owner.
	if cookie, err := c.Cookie(RoleOverrideCookie); err == nil && models.ValidRole(cookie.Value) {
		ac.RoleOverride = cookie.Value
		ac.Roles = []string{cookie.Value}
	} else {
		ac.Roles = []string{models.RoleOwner}
	}
	return nil
}

func isPlatformAdmin(user *models.User) bool {
	return user.IsPlatformAdmin || slices.Contains(legacyAdminRoles, user.Role)
}
