package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"studiokit/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFeatureGuard(t *testing.T, ac *common.AuthContext, key string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/custom-roles", nil)
	req = req.WithContext(common.WithAuthContext(req.Context(), ac))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nextCalled := false
	handler := RequireFeature(key)(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, nextCalled
}

func TestRequireFeature_EnabledPasses(t *testing.T) {
	ac := &common.AuthContext{Features: common.FeatureSet{"custom_roles": {}}}
	_, nextCalled := runFeatureGuard(t, ac, "custom_roles")
	assert.True(t, nextCalled)
}

func TestRequireFeature_DisabledCodeCarriesKey(t *testing.T) {
	rec, nextCalled := runFeatureGuard(t, &common.AuthContext{}, "custom_roles")

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"feature_not_enabled:custom_roles"`)
}

func TestRequireFeature_PlatformAdminBypasses(t *testing.T) {
	ac := &common.AuthContext{IsPlatformAdmin: true}
	_, nextCalled := runFeatureGuard(t, ac, "custom_roles")
	assert.True(t, nextCalled)
}
