package authflow

import (
	"net/http"

	"studiokit/internal/common"
	"studiokit/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// vaultStage decrypts the tenant's outbound email and SMS credentials.
// A per-tenant decryption failure leaves that channel unconfigured and
// the request proceeds; a missing process-wide encryption secret is a
// deployment error and fails the request.
type vaultStage struct {
	vault  services.VaultService
	logger *zap.Logger
}

func (s *vaultStage) Name() string { return "vault" }

func (s *vaultStage) Run(c echo.Context, ac *common.AuthContext) error {
	if !s.vault.Ready() {
		return &Terminal{
			Status:  http.StatusInternalServerError,
			Code:    common.CodeConfigurationError,
			Message: "Encryption secret is not configured",
		}
	}

	if blob := ac.Tenant.EmailCredentials; blob != nil && *blob != "" {
		creds, err := s.vault.DecryptEmailCredentials(*blob)
		if err != nil {
			s.logger.Warn("failed to decrypt tenant email credentials",
				zap.String("tenant_id", ac.Tenant.ID.String()),
				zap.Error(err),
			)
		} else {
			ac.Email = creds
		}
	}

	if blob := ac.Tenant.SMSCredentials; blob != nil && *blob != "" {
		creds, err := s.vault.DecryptSMSCredentials(*blob)
		if err != nil {
			s.logger.Warn("failed to decrypt tenant sms credentials",
				zap.String("tenant_id", ac.Tenant.ID.String()),
				zap.Error(err),
			)
		} else {
			ac.SMS = creds
		}
	}

	return nil
}
