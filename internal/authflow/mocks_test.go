package authflow

import (
	"context"

	"studiokit/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetByCustomDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetMFAEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *MockUserRepository) ListOwnersWithoutMFA(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Membership, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) GetByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.Membership, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Membership, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) SetStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

type MockRoleAssignmentRepository struct {
	mock.Mock
}

func (m *MockRoleAssignmentRepository) Create(ctx context.Context, assignment *models.RoleAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockRoleAssignmentRepository) Delete(ctx context.Context, membershipID, id uuid.UUID) error {
	args := m.Called(ctx, membershipID, id)
	return args.Error(0)
}

func (m *MockRoleAssignmentRepository) ListByMembership(ctx context.Context, membershipID uuid.UUID) ([]*models.RoleAssignment, error) {
	args := m.Called(ctx, membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RoleAssignment), args.Error(1)
}

type MockCustomRoleRepository struct {
	mock.Mock
}

func (m *MockCustomRoleRepository) Create(ctx context.Context, role *models.CustomRole) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockCustomRoleRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CustomRole, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomRole), args.Error(1)
}

func (m *MockCustomRoleRepository) Update(ctx context.Context, role *models.CustomRole) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockCustomRoleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCustomRoleRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.CustomRole, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.CustomRole), args.Error(1)
}

func (m *MockCustomRoleRepository) ListByMembership(ctx context.Context, membershipID uuid.UUID) ([]*models.CustomRole, error) {
	args := m.Called(ctx, membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CustomRole), args.Error(1)
}

func (m *MockCustomRoleRepository) Attach(ctx context.Context, membershipID, customRoleID uuid.UUID) error {
	args := m.Called(ctx, membershipID, customRoleID)
	return args.Error(0)
}

func (m *MockCustomRoleRepository) Detach(ctx context.Context, membershipID, customRoleID uuid.UUID) error {
	args := m.Called(ctx, membershipID, customRoleID)
	return args.Error(0)
}

type MockFeatureFlagRepository struct {
	mock.Mock
}

func (m *MockFeatureFlagRepository) ListEnabledKeys(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFeatureFlagRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.FeatureFlag, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.FeatureFlag), args.Error(1)
}

func (m *MockFeatureFlagRepository) Set(ctx context.Context, tenantID uuid.UUID, key string, enabled bool) error {
	args := m.Called(ctx, tenantID, key, enabled)
	return args.Error(0)
}
