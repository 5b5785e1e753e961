// Package authflow implements the per-request tenant and authorization
// context pipeline: which tenant the request belongs to, who the caller
// is, what they may do, and whether the request is let through at all.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"studiokit/internal/common"
	"studiokit/internal/config"
	"studiokit/internal/repositories"
	"studiokit/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Stage is one step of the pipeline. A stage either enriches the auth
// context and returns nil, or returns an error: a *Terminal carries the
// short-circuit HTTP response, any other error is a fatal store failure
// rendered as a 500. No stage may read a field a later stage populates.
type Stage interface {
	Name() string
	Run(c echo.Context, ac *common.AuthContext) error
}

// Terminal is a stage's short-circuit response.
type Terminal struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
}

func (t *Terminal) Error() string {
	return fmt.Sprintf("%d %s: %s", t.Status, t.Code, t.Message)
}

// Pipeline runs the stages strictly in order for every request. Each
// later stage depends on state set by an earlier one, so the ordering is
// structural, not cosmetic.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// Deps bundles everything the stages need.
type Deps struct {
	Config          *config.Config
	Logger          *zap.Logger
	Tasks           *common.TaskRunner
	Vault           services.VaultService
	TenantRepo      repositories.TenantRepository
	UserRepo        repositories.UserRepository
	MembershipRepo  repositories.MembershipRepository
	AssignmentRepo  repositories.RoleAssignmentRepository
	CustomRoleRepo  repositories.CustomRoleRepository
	FeatureFlagRepo repositories.FeatureFlagRepository
}

func New(d Deps) *Pipeline {
	return &Pipeline{
		logger: d.Logger,
		stages: []Stage{
			&tenantStage{tenants: d.TenantRepo},
			&vaultStage{vault: d.Vault, logger: d.Logger},
			&featureStage{flags: d.FeatureFlagRepo},
			&principalStage{users: d.UserRepo},
			&membershipStage{memberships: d.MembershipRepo, assignments: d.AssignmentRepo},
			&permissionStage{customRoles: d.CustomRoleRepo},
			&securityStage{cfg: d.Config, users: d.UserRepo, tasks: d.Tasks, logger: d.Logger},
		},
	}
}

// Middleware exposes the pipeline to echo. On success the finished
// AuthContext is attached to the request context; downstream handlers
// only ever read it.
func (p *Pipeline) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac := &common.AuthContext{
				Claims: common.GetClaims(c.Request().Context()),
			}
			for _, stage := range p.stages {
				if err := stage.Run(c, ac); err != nil {
					var term *Terminal
					if errors.As(err, &term) {
						return c.JSON(term.Status, common.CreateErrorResponse(term.Code, term.Message, term.Details))
					}
					if errors.Is(err, context.Canceled) {
						// Client went away mid-resolution; nothing to render.
						return err
					}
					p.logger.Error("auth pipeline stage failed",
						zap.String("stage", stage.Name()),
						zap.Error(err),
					)
					return c.JSON(http.StatusInternalServerError,
						common.CreateErrorResponse(common.CodeServerError, "Internal error", nil))
				}
			}

			ctx := common.WithAuthContext(c.Request().Context(), ac)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
