package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingRepository struct {
	db *database.DB
}

func NewSettingRepository(db *database.DB) setting.SettingRepository {
	return &settingRepository{db: db}
}

// Get implements setting.SettingRepository.
func (r *settingRepository) Get(ctx context.Context, key string) (setting.Setting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT key, value, description, updated_by, created_at, updated_at
		FROM settings
		WHERE key = $1
	`

	var s setting.Setting
	err := q.QueryRow(ctx, query, key).Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return setting.Setting{}, setting.ErrSettingNotFound
		}
		return setting.Setting{}, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return s, nil
}

// List implements setting.SettingRepository.
func (r *settingRepository) List(ctx context.Context) ([]setting.Setting, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT key, value, description, updated_by, created_at, updated_at
		FROM settings
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := make([]setting.Setting, 0)
	for rows.Next() {
		var s setting.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return settings, nil
}

// Upsert implements setting.SettingRepository. A nil description keeps the stored one.
func (r *settingRepository) Upsert(ctx context.Context, s setting.Setting) (setting.Setting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO settings (key, value, description, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
			description = COALESCE(EXCLUDED.description, settings.description),
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING key, value, description, updated_by, created_at, updated_at
	`

	var out setting.Setting
	err := q.QueryRow(ctx, query, s.Key, s.Value, s.Description, s.UpdatedBy).Scan(
		&out.Key, &out.Value, &out.Description, &out.UpdatedBy, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return setting.Setting{}, fmt.Errorf("failed to upsert setting %s: %w", s.Key, err)
	}
	return out, nil
}
