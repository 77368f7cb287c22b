package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"baobyte/internal/models"
)

type PasswordResetLogRepository interface {
	Create(log *models.PasswordResetLog) error
	CountRecentByEmail(email string, since time.Time) (int, error)
	MarkSuccessful(email string) error
}

type passwordResetLogRepository struct {
	DB *sql.DB
}

func NewPasswordResetLogRepository(db *sql.DB) PasswordResetLogRepository {
	return &passwordResetLogRepository{DB: db}
}

func (r *passwordResetLogRepository) Create(log *models.PasswordResetLog) error {
	const q = `
		INSERT INTO password_reset_logs (email, successful, ip_address, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q, log.Email, log.Successful, log.IPAddress, log.UserAgent).
		Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("reset log create: %w", err)
	}
	return nil
}

// CountRecentByEmail counts reset requests in the rate-limit window.
func (r *passwordResetLogRepository) CountRecentByEmail(email string, since time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM password_reset_logs
		WHERE email = $1 AND created_at >= $2
	`
	var c int
	if err := r.DB.QueryRow(q, email, since).Scan(&c); err != nil {
		return 0, fmt.Errorf("reset log count recent: %w", err)
	}
	return c, nil
}

// MarkSuccessful flips all open attempts for the email once a reset lands.
func (r *passwordResetLogRepository) MarkSuccessful(email string) error {
	const q = `
		UPDATE password_reset_logs SET successful = TRUE
		WHERE email = $1 AND successful = FALSE
	`
	_, err := r.DB.Exec(q, email)
	return err
}
