package repositories

import (
	"context"
	"strings"

	"studiokit/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetByCustomDomain(ctx context.Context, domain string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db DB
}

func NewTenantRepository(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, slug, custom_domain, status, student_access_disabled, email_credentials, sms_credentials, settings, created_at, updated_at`

func (r *tenantRepo) scanTenant(row interface{ Scan(...any) error }) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := row.Scan(
		&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.CustomDomain,
		&tenant.Status, &tenant.StudentAccessDisabled,
		&tenant.EmailCredentials, &tenant.SMSCredentials,
		&tenant.Settings, &tenant.CreatedAt, &tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, custom_domain, status, student_access_disabled, email_credentials, sms_credentials, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		tenant.ID, tenant.Name, strings.ToLower(tenant.Slug), tenant.CustomDomain,
		tenant.Status, tenant.StudentAccessDisabled,
		tenant.EmailCredentials, tenant.SMSCredentials, tenant.Settings,
	)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE id = $1
	`
	return r.scanTenant(r.db.QueryRow(ctx, query, id))
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE slug = $1
	`
	return r.scanTenant(r.db.QueryRow(ctx, query, strings.ToLower(slug)))
}

func (r *tenantRepo) GetByCustomDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE custom_domain = $1
	`
	return r.scanTenant(r.db.QueryRow(ctx, query, strings.ToLower(domain)))
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, custom_domain = $2, student_access_disabled = $3, email_credentials = $4, sms_credentials = $5, settings = $6, updated_at = NOW()
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query,
		tenant.Name, tenant.CustomDomain, tenant.StudentAccessDisabled,
		tenant.EmailCredentials, tenant.SMSCredentials, tenant.Settings, tenant.ID,
	)
	return err
}

// SetStatus moves a tenant between active and archived. Tenants are never
// hard-deleted.
func (r *tenantRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE tenants
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := r.scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}
