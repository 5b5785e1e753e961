package middleware

import (
	"net/http"
	"time"

	"studiokit/internal/common"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuditMiddleware logs write operations and failures with the resolved
// tenant and caller attached, so the real actor behind an impersonation
// session is always recoverable in the logs.
type AuditMiddleware struct {
	logger *zap.Logger
}

func NewAuditMiddleware(logger *zap.Logger) *AuditMiddleware {
	return &AuditMiddleware{logger: logger}
}

func (m *AuditMiddleware) AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			method := c.Request().Method
			if method == http.MethodGet && err == nil {
				return nil
			}

			fields := []zap.Field{
				zap.String("method", method),
				zap.String("path", c.Request().URL.Path),
				zap.String("client_ip", clientIP(c)),
				zap.Duration("duration", time.Since(start)),
			}

			if ac, ok := common.GetAuthContext(c.Request().Context()); ok {
				if ac.Tenant != nil {
					fields = append(fields, zap.String("tenant_id", ac.Tenant.ID.String()))
				}
				if ac.Claims != nil {
					fields = append(fields, zap.String("user_id", ac.Claims.UserID.String()))
					if ac.Claims.Impersonated() {
						fields = append(fields, zap.String("impersonator_id", ac.Claims.ImpersonatorID.String()))
					}
				}
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				m.logger.Warn("request failed", fields...)
			} else {
				m.logger.Info("request", fields...)
			}
			return err
		}
	}
}

// clientIP prefers the forwarded-for header set by the edge proxy.
func clientIP(c echo.Context) string {
	if ip := c.Request().Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return c.RealIP()
}
