package authflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studiokit/internal/common"
	"studiokit/internal/config"
	"studiokit/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSecurityStage(cfg *config.Config, users *MockUserRepository) (*securityStage, *common.TaskRunner) {
	tasks := common.NewTaskRunner(zap.NewNop(), time.Second)
	return &securityStage{
		cfg:    cfg,
		users:  users,
		tasks:  tasks,
		logger: zap.NewNop(),
	}, tasks
}

func prodConfig() *config.Config {
	return &config.Config{Environment: "production"}
}

func ownerContext(user *models.User) *common.AuthContext {
	tenant := activeTenant()
	return &common.AuthContext{
		Tenant:     tenant,
		Claims:     &common.Claims{UserID: user.ID},
		User:       user,
		Membership: activeMembership(tenant.ID, user.ID),
		Roles:      []string{models.RoleOwner},
	}
}

func TestSecurityStage_OwnerWithoutMFABlocked(t *testing.T) {
	user := plainUser()
	user.CreatedAt = time.Now().Add(-30 * 24 * time.Hour)
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	err := stage.Run(c, ownerContext(user))

	var term *Terminal
	require.ErrorAs(t, err, &term)
	assert.Equal(t, http.StatusForbidden, term.Status)
	assert.Equal(t, common.CodeMFARequired, term.Code)
}

func TestSecurityStage_MFASatisfiedPasses(t *testing.T) {
	user := plainUser()
	user.MFAEnabled = true
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))

	ac := ownerContext(user)
	ac.Claims.AMR = []string{"pwd", "otp"}
	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	require.NoError(t, stage.Run(c, ac))
}

func TestSecurityStage_MFASyncConvergesStoredFlag(t *testing.T) {
	user := plainUser()
	user.MFAEnabled = false
	users := new(MockUserRepository)
	users.On("SetMFAEnabled", mock.Anything, user.ID, true).Return(nil)
	stage, tasks := newSecurityStage(prodConfig(), users)

	ac := ownerContext(user)
	ac.Claims.AMR = []string{"mfa"}
	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	require.NoError(t, stage.Run(c, ac))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tasks.Wait(ctx))
	users.AssertExpectations(t)
}

func TestSecurityStage_GracePeriodWarns(t *testing.T) {
	user := plainUser()
	user.CreatedAt = time.Now().Add(-24 * time.Hour)
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))

	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	require.NoError(t, stage.Run(c, ownerContext(user)))

	assert.NotEmpty(t, rec.Header().Get(HeaderMFAWarning))
}

func TestSecurityStage_MePathAlwaysAllowed(t *testing.T) {
	user := plainUser()
	user.CreatedAt = time.Now().Add(-30 * 24 * time.Hour)
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, mePath, nil))
	require.NoError(t, stage.Run(c, ownerContext(user)))
}

func TestSecurityStage_NonProductionBypasses(t *testing.T) {
	user := plainUser()
	user.CreatedAt = time.Now().Add(-30 * 24 * time.Hour)
	stage, _ := newSecurityStage(&config.Config{Environment: "development"}, new(MockUserRepository))

	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	require.NoError(t, stage.Run(c, ownerContext(user)))

	assert.Equal(t, "disabled", rec.Header().Get(HeaderMFAEnforcement))
}

func TestSecurityStage_ImpersonationExempt(t *testing.T) {
	user := plainUser()
	user.CreatedAt = time.Now().Add(-30 * 24 * time.Hour)
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))

	ac := ownerContext(user)
	impersonatorID := uuid.New()
	ac.Claims.ImpersonatorID = &impersonatorID
	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	require.NoError(t, stage.Run(c, ac))
}

func TestSecurityStage_NonOwnersUnaffected(t *testing.T) {
	user := plainUser()
	user.CreatedAt = time.Now().Add(-365 * 24 * time.Hour)
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))

	ac := ownerContext(user)
	ac.Roles = []string{models.RoleAdmin}
	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	require.NoError(t, stage.Run(c, ac))
}

func TestSecurityStage_ArchivedTenantBlocks(t *testing.T) {
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))
	tenant := activeTenant()
	tenant.Status = models.TenantStatusArchived

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	err := stage.Run(c, &common.AuthContext{Tenant: tenant})

	var term *Terminal
	require.ErrorAs(t, err, &term)
	assert.Equal(t, common.CodeTenantArchived, term.Code)
}

func TestSecurityStage_ArchivedTenantAllowsPlatformAdmin(t *testing.T) {
	user := plainUser()
	user.MFAEnabled = true
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))

	ac := ownerContext(user)
	ac.Claims.AMR = []string{"otp"}
	ac.IsPlatformAdmin = true
	ac.Tenant.Status = models.TenantStatusArchived

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	require.NoError(t, stage.Run(c, ac))
}

func TestSecurityStage_StudentAccessDisabled(t *testing.T) {
	stage, _ := newSecurityStage(prodConfig(), new(MockUserRepository))
	tenant := activeTenant()
	tenant.StudentAccessDisabled = true

	// A student is turned away.
	user := plainUser()
	ac := &common.AuthContext{
		Tenant:     tenant,
		Claims:     &common.Claims{UserID: user.ID},
		User:       user,
		Membership: activeMembership(tenant.ID, user.ID),
		Roles:      []string{models.RoleStudent},
	}
	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	err := stage.Run(c, ac)

	var term *Terminal
	require.ErrorAs(t, err, &term)
	assert.Equal(t, common.CodeStudentAccessDisabled, term.Code)

	// Staff still get in.
	ac.Roles = []string{models.RoleInstructor}
	c, _ = newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	require.NoError(t, stage.Run(c, ac))
}
