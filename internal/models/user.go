package models

import "time"

type User struct {
	ID            int    `json:"id"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"` // never serialized
	RoleID        int    `json:"role_id"`
	IsVerified    bool   `json:"is_verified"`
	TermsAccepted bool   `json:"terms_accepted"`

	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	// opaque refresh token stored on the user row
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	Remember        bool   `json:"remember"`
	CaptchaResponse string `json:"captcha_response"`
}
