package authflow

import (
	"studiokit/internal/common"
	"studiokit/internal/repositories"

	"github.com/labstack/echo/v4"
)

// featureStage loads the tenant's enabled feature keys. Only rows
// explicitly marked enabled count. The platform-admin bypass lives in
// the route guard, not here.
type featureStage struct {
	flags repositories.FeatureFlagRepository
}

func (s *featureStage) Name() string { return "features" }

func (s *featureStage) Run(c echo.Context, ac *common.AuthContext) error {
	keys, err := s.flags.ListEnabledKeys(c.Request().Context(), ac.Tenant.ID)
	if err != nil {
		return err
	}

	features := make(common.FeatureSet, len(keys))
	for _, key := range keys {
		features[key] = struct{}{}
	}
	ac.Features = features
	return nil
}
