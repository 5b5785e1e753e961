package repositories

import (
	"context"

	"studiokit/internal/models"

	"github.com/google/uuid"
)

type CustomRoleRepository interface {
	Create(ctx context.Context, role *models.CustomRole) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CustomRole, error)
	Update(ctx context.Context, role *models.CustomRole) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.CustomRole, error)
	ListByMembership(ctx context.Context, membershipID uuid.UUID) ([]*models.CustomRole, error)
	Attach(ctx context.Context, membershipID, customRoleID uuid.UUID) error
	Detach(ctx context.Context, membershipID, customRoleID uuid.UUID) error
}

type customRoleRepo struct {
	db DB
}

func NewCustomRoleRepository(db DB) CustomRoleRepository {
	return &customRoleRepo{db: db}
}

const customRoleColumns = `id, tenant_id, name, description, permissions, created_at, updated_at`

func (r *customRoleRepo) scanCustomRole(row interface{ Scan(...any) error }) (*models.CustomRole, error) {
	role := &models.CustomRole{}
	err := row.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *customRoleRepo) Create(ctx context.Context, role *models.CustomRole) error {
	query := `
		INSERT INTO custom_roles (id, tenant_id, name, description, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (tenant_id, name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.TenantID, role.Name, role.Description, role.Permissions)
	return err
}

func (r *customRoleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CustomRole, error) {
	query := `
		SELECT ` + customRoleColumns + `
		FROM custom_roles
		WHERE tenant_id = $1 AND id = $2
	`
	return r.scanCustomRole(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *customRoleRepo) Update(ctx context.Context, role *models.CustomRole) error {
	query := `
		UPDATE custom_roles
		SET name = $1, description = $2, permissions = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, role.Name, role.Description, role.Permissions, role.TenantID, role.ID)
	return err
}

func (r *customRoleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		DELETE FROM custom_roles
		WHERE tenant_id = $1 AND id = $2
	`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *customRoleRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.CustomRole, error) {
	query := `
		SELECT ` + customRoleColumns + `
		FROM custom_roles
		WHERE tenant_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.CustomRole
	for rows.Next() {
		role, err := r.scanCustomRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *customRoleRepo) ListByMembership(ctx context.Context, membershipID uuid.UUID) ([]*models.CustomRole, error) {
	query := `
		SELECT cr.id, cr.tenant_id, cr.name, cr.description, cr.permissions, cr.created_at, cr.updated_at
		FROM custom_roles cr
		JOIN membership_custom_roles mcr ON mcr.custom_role_id = cr.id
		WHERE mcr.membership_id = $1
		ORDER BY cr.name ASC
	`
	rows, err := r.db.Query(ctx, query, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.CustomRole
	for rows.Next() {
		role, err := r.scanCustomRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *customRoleRepo) Attach(ctx context.Context, membershipID, customRoleID uuid.UUID) error {
	query := `
		INSERT INTO membership_custom_roles (membership_id, custom_role_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (membership_id, custom_role_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, membershipID, customRoleID)
	return err
}

func (r *customRoleRepo) Detach(ctx context.Context, membershipID, customRoleID uuid.UUID) error {
	query := `
		DELETE FROM membership_custom_roles
		WHERE membership_id = $1 AND custom_role_id = $2
	`
	_, err := r.db.Exec(ctx, query, membershipID, customRoleID)
	return err
}
