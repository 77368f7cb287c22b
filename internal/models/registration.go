package models

import "time"

// RegistrationData holds the captured form fields of a registration that has
// not been materialized into a User yet. The password is kept only as a
// bcrypt hash from the moment the form is accepted.
type RegistrationData struct {
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	PasswordHash  string `json:"password_hash"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// Registration step names as stored in the session.
const (
	StepForm    = "form"
	StepVerify  = "verify"
	StepBlocked = "blocked"
)

// PendingRegistration is the per-session verification state. Exactly one may
// be live per session. The abandon counter is NOT part of this struct: it is
// stored under its own session key so it survives the pending blob being
// cleared, and is removed only on a fully successful verification.
type PendingRegistration struct {
	Step           string           `json:"step"`
	UserData       RegistrationData `json:"user_data"`
	Code           string           `json:"code"`
	IssuedAt       time.Time        `json:"issued_at"`
	VerifyAttempts int              `json:"verify_attempts"` // wrong codes since last (re)issue
	ResendCount    int              `json:"resend_count"`    // never reset within one registration
}

// RegisterRequest is the submit-registration-form payload.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	TermsAccepted   bool   `json:"terms_accepted"`
	CaptchaResponse string `json:"captcha_response"`
}

// ConfirmRequest is the submit-verification-code payload.
type ConfirmRequest struct {
	Code string `json:"code" binding:"required"`
}

// RegistrationStatus is the check-status payload. Polling it never mutates
// session state.
type RegistrationStatus struct {
	Valid         bool `json:"valid"`
	TimeRemaining int  `json:"time_remaining"`
	Expired       bool `json:"expired"`
}
