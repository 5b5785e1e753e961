package repositories

import (
	"context"

	"studiokit/internal/models"

	"github.com/google/uuid"
)

type FeatureFlagRepository interface {
	ListEnabledKeys(ctx context.Context, tenantID uuid.UUID) ([]string, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.FeatureFlag, error)
	Set(ctx context.Context, tenantID uuid.UUID, key string, enabled bool) error
}

type featureFlagRepo struct {
	db DB
}

func NewFeatureFlagRepository(db DB) FeatureFlagRepository {
	return &featureFlagRepo{db: db}
}

// ListEnabledKeys returns only keys explicitly marked enabled.
func (r *featureFlagRepo) ListEnabledKeys(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	query := `
		SELECT key
		FROM feature_flags
		WHERE tenant_id = $1 AND enabled = true
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *featureFlagRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.FeatureFlag, error) {
	query := `
		SELECT id, tenant_id, key, enabled, created_at, updated_at
		FROM feature_flags
		WHERE tenant_id = $1
		ORDER BY key ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []*models.FeatureFlag
	for rows.Next() {
		flag := &models.FeatureFlag{}
		if err := rows.Scan(&flag.ID, &flag.TenantID, &flag.Key, &flag.Enabled, &flag.CreatedAt, &flag.UpdatedAt); err != nil {
			return nil, err
		}
		flags = append(flags, flag)
	}
	return flags, rows.Err()
}

func (r *featureFlagRepo) Set(ctx context.Context, tenantID uuid.UUID, key string, enabled bool) error {
	query := `
		INSERT INTO feature_flags (id, tenant_id, key, enabled, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW(), NOW())
		ON CONFLICT (tenant_id, key) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, tenantID, key, enabled)
	return err
}
