package authflow

import (
	"context"
	"net/http"
	"time"

	"studiokit/internal/common"
	"studiokit/internal/config"
	"studiokit/internal/models"
	"studiokit/internal/repositories"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MFAGracePeriod is the window after account creation during which an
// owner without MFA is still let through, to allow time for setup.
const MFAGracePeriod = 7 * 24 * time.Hour

const (
	// HeaderMFAWarning is set when an owner without MFA passes on grace.
	HeaderMFAWarning = "X-MFA-Warning"
	// HeaderMFAEnforcement is set when a non-production environment
	// bypasses the block.
	HeaderMFAEnforcement = "X-MFA-Enforcement"

	// mePath is the bootstrap endpoint the frontend needs to render the
	// MFA setup UI, so it is always let through.
	mePath = "/v1/me"
)

// securityStage enforces the MFA-for-owners policy and the tenant
// lifecycle restrictions, in that order, after permissions are resolved.
type securityStage struct {
	cfg    *config.Config
	users  repositories.UserRepository
	tasks  *common.TaskRunner
	logger *zap.Logger
}

func (s *securityStage) Name() string { return "security" }

func (s *securityStage) Run(c echo.Context, ac *common.AuthContext) error {
	if err := s.enforceOwnerMFA(c, ac); err != nil {
		return err
	}
	return s.enforceTenantLifecycle(ac)
}

// enforceOwnerMFA requires a second factor from owners. Impersonation
// sessions are exempt: the security requirement binds the impersonated
// principal, not the admin viewing as them.
func (s *securityStage) enforceOwnerMFA(c echo.Context, ac *common.AuthContext) error {
	if !ac.Authenticated() || !ac.HasRole(models.RoleOwner) || ac.Impersonated() {
		return nil
	}

	if ac.Claims.MFASatisfied() {
		// The stored record may lag behind the claims; converge it off
		// the request path. Failure is logged by the task, never here.
		if ac.User != nil && !ac.User.MFAEnabled {
			userID := ac.User.ID
			s.tasks.Go("mfa-status-sync", func(ctx context.Context) error {
				return s.users.SetMFAEnabled(ctx, userID, true)
			})
		}
		return nil
	}

	if c.Request().URL.Path == mePath {
		return nil
	}

	if ac.User != nil && time.Since(ac.User.CreatedAt) < MFAGracePeriod {
		deadline := ac.User.CreatedAt.Add(MFAGracePeriod)
		c.Response().Header().Set(HeaderMFAWarning, "MFA setup required before "+deadline.UTC().Format(time.RFC3339))
		return nil
	}

	if !s.cfg.Production() {
		c.Response().Header().Set(HeaderMFAEnforcement, "disabled")
		return nil
	}

	return &Terminal{
		Status:  http.StatusForbidden,
		Code:    common.CodeMFARequired,
		Message: "Multi-factor authentication is required for owner accounts",
	}
}

// enforceTenantLifecycle applies to every request, authenticated or not.
func (s *securityStage) enforceTenantLifecycle(ac *common.AuthContext) error {
	if ac.Tenant.Archived() && !ac.IsPlatformAdmin {
		return &Terminal{
			Status:  http.StatusForbidden,
			Code:    common.CodeTenantArchived,
			Message: "This studio has been archived",
		}
	}

	if ac.Tenant.StudentAccessDisabled && !ac.Staff() {
		return &Terminal{
			Status:  http.StatusForbidden,
			Code:    common.CodeStudentAccessDisabled,
			Message: "Student access is currently disabled for this studio",
		}
	}

	return nil
}
