package repositories

import (
	"context"
	"strings"

	"studiokit/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetMFAEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	ListOwnersWithoutMFA(ctx context.Context) ([]*models.User, error)
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, is_platform_admin, role, mfa_enabled, created_at, updated_at`

func (r *userRepo) scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.IsPlatformAdmin, &user.Role, &user.MFAEnabled,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, is_platform_admin, role, mfa_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, strings.ToLower(user.Email), user.PasswordHash,
		user.FirstName, user.LastName, user.IsPlatformAdmin, user.Role, user.MFAEnabled,
	)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, role = $3, mfa_enabled = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, user.FirstName, user.LastName, user.Role, user.MFAEnabled, user.ID)
	return err
}

func (r *userRepo) SetMFAEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `
		UPDATE users
		SET mfa_enabled = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, enabled, id)
	return err
}

// ListOwnersWithoutMFA returns users who hold an owner role in at least
// one active membership but have not enabled MFA. Feeds the grace-period
// reminder job.
func (r *userRepo) ListOwnersWithoutMFA(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT DISTINCT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.is_platform_admin, u.role, u.mfa_enabled, u.created_at, u.updated_at
		FROM users u
		JOIN memberships m ON m.user_id = u.id AND m.status = 'active'
		JOIN role_assignments ra ON ra.membership_id = m.id AND ra.role = 'owner'
		WHERE u.mfa_enabled = false
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
