package models

import "time"

// PasswordResetLog records every reset request for rate limiting and audit.
// Rows are flipped to successful once the matching confirmation lands.
type PasswordResetLog struct {
	ID         int       `json:"id"`
	Email      string    `json:"email"`
	Successful bool      `json:"successful"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

type PasswordResetRequest struct {
	Email           string `json:"email" binding:"required"`
	CaptchaResponse string `json:"captcha_response"`
}

type PasswordResetConfirmRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}
