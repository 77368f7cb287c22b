package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"baobyte/internal/models"
)

type AuthConfigRepository interface {
	Get() (*models.AuthConfig, error)
	Update(cfg *models.AuthConfig) error
}

type authConfigRepository struct {
	DB *sql.DB
}

func NewAuthConfigRepository(db *sql.DB) AuthConfigRepository {
	return &authConfigRepository{DB: db}
}

// Get returns the single config row, or conservative defaults (everything
// off) when the table is still empty.
func (r *authConfigRepository) Get() (*models.AuthConfig, error) {
	const q = `
		SELECT id, enable_google_login, enable_password_reset, updated_at
		FROM auth_config
		ORDER BY id
		LIMIT 1
	`
	cfg := &models.AuthConfig{}
	err := r.DB.QueryRow(q).Scan(&cfg.ID, &cfg.EnableGoogleLogin, &cfg.EnablePasswordReset, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.AuthConfig{EnablePasswordReset: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth config get: %w", err)
	}
	return cfg, nil
}

// Update upserts the single row.
func (r *authConfigRepository) Update(cfg *models.AuthConfig) error {
	const q = `
		INSERT INTO auth_config (id, enable_google_login, enable_password_reset, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET enable_google_login = $1, enable_password_reset = $2, updated_at = NOW()
		RETURNING id, updated_at
	`
	if err := r.DB.QueryRow(q, cfg.EnableGoogleLogin, cfg.EnablePasswordReset).Scan(&cfg.ID, &cfg.UpdatedAt); err != nil {
		return fmt.Errorf("auth config update: %w", err)
	}
	return nil
}
