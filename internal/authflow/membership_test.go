package authflow

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"studiokit/internal/common"
	"studiokit/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func activeMembership(tenantID, userID uuid.UUID) *models.Membership {
	return &models.Membership{
		ID:       uuid.New(),
		TenantID: tenantID,
		UserID:   userID,
		Status:   models.MembershipStatusActive,
	}
}

func TestMembershipStage_RolesFromAssignments(t *testing.T) {
	tenant := activeTenant()
	userID := uuid.New()
	membership := activeMembership(tenant.ID, userID)

	memberships := new(MockMembershipRepository)
	memberships.On("GetByTenantAndUser", mock.Anything, tenant.ID, userID).Return(membership, nil)
	assignments := new(MockRoleAssignmentRepository)
	assignments.On("ListByMembership", mock.Anything, membership.ID).Return([]*models.RoleAssignment{
		{ID: uuid.New(), MembershipID: membership.ID, Role: models.RoleInstructor},
		{ID: uuid.New(), MembershipID: membership.ID, Role: models.RoleAdmin},
		{ID: uuid.New(), MembershipID: membership.ID, Role: models.RoleInstructor},
	}, nil)

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	stage := &membershipStage{memberships: memberships, assignments: assignments}
	ac := &common.AuthContext{Tenant: tenant, Claims: &common.Claims{UserID: userID}}
	require.NoError(t, stage.Run(c, ac))

	assert.Equal(t, membership.ID, ac.Membership.ID)
	assert.False(t, ac.Membership.Synthetic)
	assert.ElementsMatch(t, []string{models.RoleInstructor, models.RoleAdmin}, ac.Roles)
}

func TestMembershipStage_NoMembershipRejectsRegularUser(t *testing.T) {
	tenant := activeTenant()
	userID := uuid.New()

	memberships := new(MockMembershipRepository)
	memberships.On("GetByTenantAndUser", mock.Anything, tenant.ID, userID).Return(nil, pgx.ErrNoRows)

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	stage := &membershipStage{memberships: memberships, assignments: new(MockRoleAssignmentRepository)}
	ac := &common.AuthContext{Tenant: tenant, Claims: &common.Claims{UserID: userID}}

	err := stage.Run(c, ac)
	var term *Terminal
	require.ErrorAs(t, err, &term)
	assert.Equal(t, http.StatusUnauthorized, term.Status)
	assert.Nil(t, ac.Membership)
}

func TestMembershipStage_SyntheticForPlatformAdmin(t *testing.T) {
	tenant := activeTenant()
	userID := uuid.New()

	memberships := new(MockMembershipRepository)
	memberships.On("GetByTenantAndUser", mock.Anything, tenant.ID, userID).Return(nil, pgx.ErrNoRows)
	assignments := new(MockRoleAssignmentRepository)

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	stage := &membershipStage{memberships: memberships, assignments: assignments}
	ac := &common.AuthContext{
		Tenant:          tenant,
		Claims:          &common.Claims{UserID: userID},
		IsPlatformAdmin: true,
		Roles:           []string{models.RoleOwner},
	}
	require.NoError(t, stage.Run(c, ac))

	require.NotNil(t, ac.Membership)
	assert.True(t, ac.Membership.Synthetic)
	assert.Equal(t, tenant.ID, ac.Membership.TenantID)
	assert.Equal(t, models.MembershipStatusActive, ac.Membership.Status)
	// Nothing to persist and no roles to load for a synthetic row.
	memberships.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assignments.AssertNotCalled(t, "ListByMembership", mock.Anything, mock.Anything)
}

func TestMembershipStage_ViewAsPinsRoles(t *testing.T) {
	tenant := activeTenant()
	userID := uuid.New()
	membership := activeMembership(tenant.ID, userID)

	memberships := new(MockMembershipRepository)
	memberships.On("GetByTenantAndUser", mock.Anything, tenant.ID, userID).Return(membership, nil)
	assignments := new(MockRoleAssignmentRepository)
	assignments.On("ListByMembership", mock.Anything, membership.ID).Return([]*models.RoleAssignment{
		{ID: uuid.New(), MembershipID: membership.ID, Role: models.RoleOwner},
	}, nil)

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	stage := &membershipStage{memberships: memberships, assignments: assignments}
	ac := &common.AuthContext{
		Tenant:          tenant,
		Claims:          &common.Claims{UserID: userID},
		IsPlatformAdmin: true,
		RoleOverride:    models.RoleStudent,
		Roles:           []string{models.RoleStudent},
	}
	require.NoError(t, stage.Run(c, ac))

	// The persisted owner assignment must not widen the pinned role set.
	assert.Equal(t, []string{models.RoleStudent}, ac.Roles)
}

func TestMembershipStage_ArchivedMembershipRevokesAccess(t *testing.T) {
	tenant := activeTenant()
	userID := uuid.New()
	membership := activeMembership(tenant.ID, userID)
	membership.Status = models.MembershipStatusArchived

	memberships := new(MockMembershipRepository)
	memberships.On("GetByTenantAndUser", mock.Anything, tenant.ID, userID).Return(membership, nil)
	assignments := new(MockRoleAssignmentRepository)

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	stage := &membershipStage{memberships: memberships, assignments: assignments}
	ac := &common.AuthContext{Tenant: tenant, Claims: &common.Claims{UserID: userID}}

	// A removed member is indistinguishable from a non-member.
	err := stage.Run(c, ac)
	var term *Terminal
	require.ErrorAs(t, err, &term)
	assert.Equal(t, http.StatusUnauthorized, term.Status)
	assert.Nil(t, ac.Membership)
	assert.Empty(t, ac.Roles)
	assignments.AssertNotCalled(t, "ListByMembership", mock.Anything, mock.Anything)
}

func TestMembershipStage_ArchivedRowStillSyntheticForPlatformAdmin(t *testing.T) {
	tenant := activeTenant()
	userID := uuid.New()
	membership := activeMembership(tenant.ID, userID)
	membership.Status = models.MembershipStatusInactive

	memberships := new(MockMembershipRepository)
	memberships.On("GetByTenantAndUser", mock.Anything, tenant.ID, userID).Return(membership, nil)

	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	stage := &membershipStage{memberships: memberships, assignments: new(MockRoleAssignmentRepository)}
	ac := &common.AuthContext{
		Tenant:          tenant,
		Claims:          &common.Claims{UserID: userID},
		IsPlatformAdmin: true,
		Roles:           []string{models.RoleOwner},
	}
	require.NoError(t, stage.Run(c, ac))

	require.NotNil(t, ac.Membership)
	assert.True(t, ac.Membership.Synthetic)
}

func TestMembershipStage_SkipsUnauthenticated(t *testing.T) {
	memberships := new(MockMembershipRepository)
	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	stage := &membershipStage{memberships: memberships, assignments: new(MockRoleAssignmentRepository)}
	ac := &common.AuthContext{Tenant: activeTenant()}
	require.NoError(t, stage.Run(c, ac))

	assert.Nil(t, ac.Membership)
	memberships.AssertNotCalled(t, "GetByTenantAndUser", mock.Anything, mock.Anything, mock.Anything)
}
