package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"baobyte/internal/models"
)

// ErrEmailTaken surfaces the users.email unique constraint. The database is
// the single source of truth for "does this account exist": duplicate-email
// races lose at INSERT time, never by a stale pre-check.
var ErrEmailTaken = errors.New("email already registered")

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdatePassword(userID int, passwordHash string) error
	MarkVerified(userID int, verifiedAt time.Time) error

	// refresh helpers
	UpdateRefresh(userID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, username, first_name, last_name, email, password_hash, role_id,
	is_verified, terms_accepted, verified_at, created_at,
	refresh_token, refresh_expires_at, refresh_revoked
`

// Create inserts the account in a single statement: afterwards it either
// exists fully (verified flag and terms included) or not at all.
func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			username, first_name, last_name, email, password_hash, role_id,
			is_verified, terms_accepted, verified_at,
			refresh_token, refresh_expires_at, refresh_revoked
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULL,NULL,FALSE)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.RoleID,
		user.IsVerified,
		user.TermsAccepted,
		user.VerifiedAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrEmailTaken
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.DB.QueryRow(q, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.DB.QueryRow(q, email))
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	return nil
}

func (r *userRepository) MarkVerified(userID int, verifiedAt time.Time) error {
	const q = `UPDATE users SET is_verified = TRUE, verified_at = $2 WHERE id = $1`
	if _, err := r.DB.Exec(q, userID, verifiedAt); err != nil {
		return fmt.Errorf("user mark verified: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token = $1, refresh_expires_at = $2, refresh_revoked = FALSE
		WHERE id = $3
	`
	_, err := r.DB.Exec(q, token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("user update refresh: %w", err)
	}
	return nil
}

// RotateRefresh swaps the stored refresh token in one statement so a stolen
// old token cannot be replayed after rotation.
func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	const q = `
		UPDATE users
		SET refresh_token = $2, refresh_expires_at = $3
		WHERE refresh_token = $1 AND refresh_revoked = FALSE
		RETURNING ` + userColumns
	return r.scanOne(r.DB.QueryRow(q, oldToken, newToken, newExpiresAt))
}

func (r *userRepository) ClearRefresh(userID int) error {
	const q = `
		UPDATE users
		SET refresh_token = NULL, refresh_expires_at = NULL, refresh_revoked = FALSE
		WHERE id = $1
	`
	_, err := r.DB.Exec(q, userID)
	return err
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return r.scanOne(r.DB.QueryRow(q, token))
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var verifiedAt, refreshExpiresAt sql.NullTime
	var refreshToken sql.NullString
	err := row.Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.RoleID,
		&u.IsVerified, &u.TermsAccepted, &verifiedAt, &u.CreatedAt,
		&refreshToken, &refreshExpiresAt, &u.RefreshRevoked,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	if verifiedAt.Valid {
		u.VerifiedAt = &verifiedAt.Time
	}
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	if refreshExpiresAt.Valid {
		u.RefreshExpiresAt = &refreshExpiresAt.Time
	}
	return u, nil
}
