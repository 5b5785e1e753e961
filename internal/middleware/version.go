package middleware

import (
	"net/http"
	"strings"

	"studiokit/internal/common"

	"github.com/labstack/echo/v4"
)

// VersionMiddleware rejects requests for API versions this binary does
// not serve and stamps responses with the version that handled them.
type VersionMiddleware struct {
	supported      map[string]struct{}
	defaultVersion string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supported:      map[string]struct{}{"v1": {}},
		defaultVersion: "v1",
	}
}

// APIVersionResolver extracts the version prefix from the path and
// stores it on the context. Unversioned paths fall back to the default;
// unknown versions get a 404 before any handler runs.
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := versionFromPath(c.Request().URL.Path)
			if version == "" {
				c.Set("api_version", vm.defaultVersion)
				return next(c)
			}
			if _, ok := vm.supported[version]; !ok {
				return common.SendError(c, http.StatusNotFound, common.CodeNotFound,
					"Unsupported API version", map[string]string{"version": version})
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// VersionHeader stamps every response in a route group.
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}

func versionFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	segment, _, _ := strings.Cut(trimmed, "/")
	if len(segment) >= 2 && segment[0] == 'v' && segment[1] >= '1' && segment[1] <= '9' {
		return segment
	}
	return ""
}
