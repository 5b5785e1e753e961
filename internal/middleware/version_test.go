package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runResolver(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nextCalled := false
	handler := NewVersionMiddleware().APIVersionResolver()(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return c, rec, nextCalled
}

func TestAPIVersionResolver_KnownVersion(t *testing.T) {
	c, _, nextCalled := runResolver(t, "/v1/me")
	assert.True(t, nextCalled)
	assert.Equal(t, "v1", c.Get("api_version"))
}

func TestAPIVersionResolver_UnversionedPathDefaults(t *testing.T) {
	c, _, nextCalled := runResolver(t, "/health")
	assert.True(t, nextCalled)
	assert.Equal(t, "v1", c.Get("api_version"))
}

func TestAPIVersionResolver_UnknownVersionRejected(t *testing.T) {
	_, rec, nextCalled := runResolver(t, "/v9/me")
	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"v9"`)
}

func TestVersionHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewVersionMiddleware().VersionHeader("v1")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
}
