package middleware

import (
	"github.com/labstack/echo/v4"

	"studiokit/internal/common"
)

// RBACMiddleware guards routes with capability checks against the
// finished auth context. It never resolves anything itself.
type RBACMiddleware struct{}

func NewRBACMiddleware() *RBACMiddleware {
	return &RBACMiddleware{}
}

// RequirePermission allows the request only when the resolved permission
// set grants the given permission.
func (m *RBACMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := common.GetAuthContext(c.Request().Context())
			if !ok || !ac.Authenticated() {
				return common.SendUnauthorizedError(c)
			}
			if !ac.Can(permission) {
				return common.SendForbiddenError(c, common.CodeForbidden, "Insufficient permissions", map[string]string{
					"permission": permission,
				})
			}
			return next(c)
		}
	}
}

// RequireRole allows the request only when the caller holds the role.
func (m *RBACMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := common.GetAuthContext(c.Request().Context())
			if !ok || !ac.Authenticated() {
				return common.SendUnauthorizedError(c)
			}
			if !ac.HasRole(role) {
				return common.SendForbiddenError(c, common.CodeInsufficientRole, "Insufficient role", map[string]string{
					"role": role,
				})
			}
			return next(c)
		}
	}
}

// RequirePlatformAdmin restricts a route to platform operators.
func (m *RBACMiddleware) RequirePlatformAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := common.GetAuthContext(c.Request().Context())
			if !ok || !ac.Authenticated() {
				return common.SendUnauthorizedError(c)
			}
			if !ac.IsPlatformAdmin {
				return common.SendForbiddenError(c, common.CodeForbidden, "Platform administrator access required", nil)
			}
			return next(c)
		}
	}
}
