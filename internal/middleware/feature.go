package middleware

import (
	"github.com/labstack/echo/v4"

	"studiokit/internal/common"
)

// RequireFeature blocks the route unless the tenant has the feature
// enabled. Platform admins bypass the check so they can operate surfaces
// a tenant has not paid for yet.
func RequireFeature(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := common.GetAuthContext(c.Request().Context())
			if !ok {
				return common.SendServerError(c, "Auth context missing")
			}
			if ac.IsPlatformAdmin || ac.Features.Has(key) {
				return next(c)
			}
			return common.SendForbiddenError(c, common.FeatureDisabledCode(key),
				"This feature is not enabled for your studio", map[string]string{
					"feature": key,
				})
		}
	}
}
