package authflow

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studiokit/internal/common"
	"studiokit/internal/config"
	"studiokit/internal/models"
	"studiokit/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pipelineMocks struct {
	tenants     *MockTenantRepository
	users       *MockUserRepository
	memberships *MockMembershipRepository
	assignments *MockRoleAssignmentRepository
	customRoles *MockCustomRoleRepository
	flags       *MockFeatureFlagRepository
}

func newTestPipeline(t *testing.T) (*Pipeline, *pipelineMocks) {
	t.Helper()
	m := &pipelineMocks{
		tenants:     new(MockTenantRepository),
		users:       new(MockUserRepository),
		memberships: new(MockMembershipRepository),
		assignments: new(MockRoleAssignmentRepository),
		customRoles: new(MockCustomRoleRepository),
		flags:       new(MockFeatureFlagRepository),
	}
	logger := zap.NewNop()
	p := New(Deps{
		Config:          &config.Config{Environment: "production", EncryptionSecret: "pipeline-test-secret"},
		Logger:          logger,
		Tasks:           common.NewTaskRunner(logger, time.Second),
		Vault:           services.NewVaultService("pipeline-test-secret"),
		TenantRepo:      m.tenants,
		UserRepo:        m.users,
		MembershipRepo:  m.memberships,
		AssignmentRepo:  m.assignments,
		CustomRoleRepo:  m.customRoles,
		FeatureFlagRepo: m.flags,
	})
	return p, m
}

func runPipeline(t *testing.T, p *Pipeline, req *http.Request) (*common.AuthContext, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *common.AuthContext
	handler := p.Middleware()(func(c echo.Context) error {
		ac, ok := common.GetAuthContext(c.Request().Context())
		require.True(t, ok)
		captured = ac
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return captured, rec
}

func TestPipeline_AnonymousRequest(t *testing.T) {
	p, m := newTestPipeline(t)
	tenant := activeTenant()
	m.tenants.On("GetBySlug", mock.Anything, tenant.Slug).Return(tenant, nil)
	m.flags.On("ListEnabledKeys", mock.Anything, tenant.ID).Return([]string{"online_booking"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/schedule", nil)
	req.Header.Set(HeaderTenantSlug, tenant.Slug)
	ac, rec := runPipeline(t, p, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ac)
	assert.False(t, ac.Authenticated())
	assert.True(t, ac.Features.Has("online_booking"))
	assert.Zero(t, ac.Permissions.Len())
	assert.Nil(t, ac.Membership)
}

func TestPipeline_AuthenticatedMemberEndToEnd(t *testing.T) {
	p, m := newTestPipeline(t)
	tenant := activeTenant()
	user := plainUser()
	user.MFAEnabled = true
	membership := activeMembership(tenant.ID, user.ID)

	m.tenants.On("GetBySlug", mock.Anything, tenant.Slug).Return(tenant, nil)
	m.flags.On("ListEnabledKeys", mock.Anything, tenant.ID).Return([]string{}, nil)
	m.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	m.memberships.On("GetByTenantAndUser", mock.Anything, tenant.ID, user.ID).Return(membership, nil)
	m.assignments.On("ListByMembership", mock.Anything, membership.ID).Return([]*models.RoleAssignment{
		{MembershipID: membership.ID, Role: models.RoleAdmin},
	}, nil)
	m.customRoles.On("ListByMembership", mock.Anything, membership.ID).Return([]*models.CustomRole{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/members", nil)
	req.Header.Set(HeaderTenantSlug, tenant.Slug)
	req = req.WithContext(common.WithClaims(req.Context(), &common.Claims{UserID: user.ID, AMR: []string{"pwd", "otp"}}))
	ac, rec := runPipeline(t, p, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ac)
	assert.True(t, ac.HasRole(models.RoleAdmin))
	assert.True(t, ac.Can(common.PermManageMembers))
	assert.False(t, ac.Can(common.PermManageBilling))
}

func TestPipeline_ShortCircuitRendersEnvelope(t *testing.T) {
	p, m := newTestPipeline(t)
	m.tenants.On("GetByCustomDomain", mock.Anything, "unknown.example.com").Return(nil, pgx.ErrNoRows)
	m.tenants.On("GetBySlug", mock.Anything, "unknown").Return(nil, pgx.ErrNoRows)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Host = "unknown.example.com"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nextCalled := false
	handler := p.Middleware()(func(c echo.Context) error {
		nextCalled = true
		return nil
	})
	require.NoError(t, handler(c))

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"`+common.CodeTenantNotFound+`"`)
}

func TestPipeline_StoreFailureIsServerError(t *testing.T) {
	p, m := newTestPipeline(t)
	tenant := activeTenant()
	m.tenants.On("GetBySlug", mock.Anything, tenant.Slug).Return(tenant, nil)
	m.flags.On("ListEnabledKeys", mock.Anything, tenant.ID).Return(nil, assert.AnError)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(HeaderTenantSlug, tenant.Slug)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := p.Middleware()(func(c echo.Context) error { return nil })
	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), common.CodeServerError))
}
