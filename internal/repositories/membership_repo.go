package repositories

import (
	"context"

	"studiokit/internal/models"

	"github.com/google/uuid"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Membership, error)
	GetByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.Membership, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Membership, error)
	SetStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

type membershipRepo struct {
	db DB
}

func NewMembershipRepository(db DB) MembershipRepository {
	return &membershipRepo{db: db}
}

const membershipColumns = `id, tenant_id, user_id, status, joined_at, created_at, updated_at`

func (r *membershipRepo) scanMembership(row interface{ Scan(...any) error }) (*models.Membership, error) {
	m := &models.Membership{}
	err := row.Scan(&m.ID, &m.TenantID, &m.UserID, &m.Status, &m.JoinedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *membershipRepo) Create(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO memberships (id, tenant_id, user_id, status, joined_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), NOW())
		ON CONFLICT (tenant_id, user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, membership.ID, membership.TenantID, membership.UserID, membership.Status)
	return err
}

func (r *membershipRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE tenant_id = $1 AND id = $2
	`
	return r.scanMembership(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *membershipRepo) GetByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE tenant_id = $1 AND user_id = $2
		ORDER BY created_at ASC
		LIMIT 1
	`
	return r.scanMembership(r.db.QueryRow(ctx, query, tenantID, userID))
}

func (r *membershipRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m, err := r.scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// SetStatus archives or reactivates a membership. Rows persist for audit.
func (r *membershipRepo) SetStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `
		UPDATE memberships
		SET status = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, status, tenantID, id)
	return err
}
