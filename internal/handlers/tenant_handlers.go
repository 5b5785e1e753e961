package handlers

import (
	"net/http"

	"studiokit/internal/common"
	"studiokit/internal/models"
	"studiokit/internal/repositories"
	"studiokit/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers handles settings and lifecycle for the current tenant.
type TenantHandlers struct {
	tenantRepo repositories.TenantRepository
	flagRepo   repositories.FeatureFlagRepository
	vault      services.VaultService
}

func NewTenantHandlers(tenantRepo repositories.TenantRepository, flagRepo repositories.FeatureFlagRepository, vault services.VaultService) *TenantHandlers {
	return &TenantHandlers{
		tenantRepo: tenantRepo,
		flagRepo:   flagRepo,
		vault:      vault,
	}
}

// GetTenant returns the resolved tenant.
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	ac, _ := common.GetAuthContext(c.Request().Context())
	return c.JSON(http.StatusOK, ac.Tenant)
}

type UpdateTenantRequest struct {
	Name                  *string `json:"name"`
	CustomDomain          *string `json:"custom_domain"`
	StudentAccessDisabled *bool   `json:"student_access_disabled"`
}

// UpdateTenant updates the tenant's settings envelope.
func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	var req UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	ac, _ := common.GetAuthContext(c.Request().Context())
	tenant := ac.Tenant
	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.CustomDomain != nil {
		tenant.CustomDomain = req.CustomDomain
	}
	if req.StudentAccessDisabled != nil {
		tenant.StudentAccessDisabled = *req.StudentAccessDisabled
	}

	if err := h.tenantRepo.Update(c.Request().Context(), tenant); err != nil {
		return common.SendServerError(c, "Failed to update studio")
	}
	return c.JSON(http.StatusOK, tenant)
}

type SetCredentialsRequest struct {
	// Plaintext JSON credential documents; stored encrypted.
	Email *common.EmailCredentials `json:"email"`
	SMS   *common.SMSCredentials   `json:"sms"`
}

// SetCredentials encrypts and stores the tenant's outbound channel
// credentials. New ciphertext is always written in the salted form.
func (h *TenantHandlers) SetCredentials(c echo.Context) error {
	var req SetCredentialsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	ac, _ := common.GetAuthContext(c.Request().Context())
	tenant := ac.Tenant

	if req.Email != nil {
		blob, err := encryptJSON(h.vault, req.Email)
		if err != nil {
			return common.SendServerError(c, "Failed to encrypt email credentials")
		}
		tenant.EmailCredentials = &blob
	}
	if req.SMS != nil {
		blob, err := encryptJSON(h.vault, req.SMS)
		if err != nil {
			return common.SendServerError(c, "Failed to encrypt sms credentials")
		}
		tenant.SMSCredentials = &blob
	}

	if err := h.tenantRepo.Update(c.Request().Context(), tenant); err != nil {
		return common.SendServerError(c, "Failed to store credentials")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFeatures lists all of the tenant's feature flags.
func (h *TenantHandlers) ListFeatures(c echo.Context) error {
	ac, _ := common.GetAuthContext(c.Request().Context())
	flags, err := h.flagRepo.ListByTenant(c.Request().Context(), ac.Tenant.ID)
	if err != nil {
		return common.SendServerError(c, "Failed to list features")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"features": flags})
}

type SetFeatureRequest struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// SetFeature toggles a feature flag for the tenant.
func (h *TenantHandlers) SetFeature(c echo.Context) error {
	var req SetFeatureRequest
	if err := c.Bind(&req); err != nil || req.Key == "" {
		return common.SendValidationError(c, "key", "key is required")
	}

	ac, _ := common.GetAuthContext(c.Request().Context())
	if err := h.flagRepo.Set(c.Request().Context(), ac.Tenant.ID, req.Key, req.Enabled); err != nil {
		return common.SendServerError(c, "Failed to update feature")
	}
	return c.NoContent(http.StatusNoContent)
}

// ArchiveTenant moves the tenant to archived. Platform admin only; the
// lifecycle gate lets admins back in afterwards to restore it.
func (h *TenantHandlers) ArchiveTenant(c echo.Context) error {
	ac, _ := common.GetAuthContext(c.Request().Context())
	if err := h.tenantRepo.SetStatus(c.Request().Context(), ac.Tenant.ID, models.TenantStatusArchived); err != nil {
		return common.SendServerError(c, "Failed to archive studio")
	}
	return c.NoContent(http.StatusNoContent)
}

// RestoreTenant moves an archived tenant back to active.
func (h *TenantHandlers) RestoreTenant(c echo.Context) error {
	ac, _ := common.GetAuthContext(c.Request().Context())
	if err := h.tenantRepo.SetStatus(c.Request().Context(), ac.Tenant.ID, models.TenantStatusActive); err != nil {
		return common.SendServerError(c, "Failed to restore studio")
	}
	return c.NoContent(http.StatusNoContent)
}

func encryptJSON(vault services.VaultService, v interface{}) (string, error) {
	data, err := marshalJSON(v)
	if err != nil {
		return "", err
	}
	return vault.Encrypt(data)
}
