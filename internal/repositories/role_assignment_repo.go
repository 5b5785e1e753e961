package repositories

import (
	"context"

	"studiokit/internal/models"

	"github.com/google/uuid"
)

type RoleAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.RoleAssignment) error
	Delete(ctx context.Context, membershipID, id uuid.UUID) error
	ListByMembership(ctx context.Context, membershipID uuid.UUID) ([]*models.RoleAssignment, error)
}

type roleAssignmentRepo struct {
	db DB
}

func NewRoleAssignmentRepository(db DB) RoleAssignmentRepository {
	return &roleAssignmentRepo{db: db}
}

func (r *roleAssignmentRepo) Create(ctx context.Context, assignment *models.RoleAssignment) error {
	query := `
		INSERT INTO role_assignments (id, membership_id, role, permissions, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (membership_id, role) DO UPDATE SET permissions = EXCLUDED.permissions
	`
	_, err := r.db.Exec(ctx, query, assignment.ID, assignment.MembershipID, assignment.Role, assignment.Permissions)
	return err
}

func (r *roleAssignmentRepo) Delete(ctx context.Context, membershipID, id uuid.UUID) error {
	query := `
		DELETE FROM role_assignments
		WHERE membership_id = $1 AND id = $2
	`
	_, err := r.db.Exec(ctx, query, membershipID, id)
	return err
}

func (r *roleAssignmentRepo) ListByMembership(ctx context.Context, membershipID uuid.UUID) ([]*models.RoleAssignment, error) {
	query := `
		SELECT id, membership_id, role, permissions, created_at
		FROM role_assignments
		WHERE membership_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.RoleAssignment
	for rows.Next() {
		a := &models.RoleAssignment{}
		if err := rows.Scan(&a.ID, &a.MembershipID, &a.Role, &a.Permissions, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
