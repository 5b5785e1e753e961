package authflow

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"studiokit/internal/common"
	"studiokit/internal/models"
	"studiokit/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

const (
	HeaderTenantID   = "X-Tenant-ID"
	HeaderTenantSlug = "X-Tenant-Slug"
)

// tenantStage resolves the active tenant. Strategies are tried strictly
// in order and never mixed: tenant-id header, tenant-slug header, query
// parameters (upgraded connections only), custom domain, subdomain.
type tenantStage struct {
	tenants repositories.TenantRepository
}

func (s *tenantStage) Name() string { return "tenant" }

func (s *tenantStage) Run(c echo.Context, ac *common.AuthContext) error {
	ctx := c.Request().Context()
	host := hostWithoutPort(c.Request().Host)

	// Diagnostics for the 404; must never contain secrets.
	tried := map[string]string{"host": host}

	lookups := []func() (*models.Tenant, error){
		func() (*models.Tenant, error) {
			raw := c.Request().Header.Get(HeaderTenantID)
			if raw == "" {
				return nil, nil
			}
			tried["tenant_id_header"] = raw
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, nil
			}
			return s.tenants.GetByID(ctx, id)
		},
		func() (*models.Tenant, error) {
			slug := c.Request().Header.Get(HeaderTenantSlug)
			if slug == "" {
				return nil, nil
			}
			tried["tenant_slug_header"] = slug
			return s.tenants.GetBySlug(ctx, slug)
		},
		func() (*models.Tenant, error) {
			if !upgradeRequest(c.Request()) {
				return nil, nil
			}
			if slug := c.QueryParam("tenantSlug"); slug != "" {
				tried["tenant_slug_query"] = slug
				return s.tenants.GetBySlug(ctx, slug)
			}
			if raw := c.QueryParam("tenantId"); raw != "" {
				tried["tenant_id_query"] = raw
				id, err := uuid.Parse(raw)
				if err != nil {
					return nil, nil
				}
				return s.tenants.GetByID(ctx, id)
			}
			return nil, nil
		},
		func() (*models.Tenant, error) {
			if host == "" {
				return nil, nil
			}
			return s.tenants.GetByCustomDomain(ctx, host)
		},
		func() (*models.Tenant, error) {
			labels := strings.Split(host, ".")
			if len(labels) <= 2 {
				return nil, nil
			}
			tried["subdomain"] = labels[0]
			return s.tenants.GetBySlug(ctx, labels[0])
		},
	}

	for _, lookup := range lookups {
		tenant, err := lookup()
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return err
		}
		if tenant != nil {
			ac.Tenant = tenant
			return nil
		}
	}

	return &Terminal{
		Status:  http.StatusNotFound,
		Code:    common.CodeTenantNotFound,
		Message: "Tenant could not be resolved from the request",
		Details: tried,
	}
}

func hostWithoutPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return strings.ToLower(h)
	}
	return strings.ToLower(host)
}

// upgradeRequest reports whether this is a connection-upgrade (streaming)
// request, the only case where query-string tenant resolution applies.
func upgradeRequest(r *http.Request) bool {
	if r.Header.Get("Upgrade") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}
