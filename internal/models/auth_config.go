package models

import "time"

// AuthConfig is the single-row, admin-editable set of authentication feature
// toggles. Handlers consult it on every request rather than caching it, so a
// toggle flip takes effect immediately.
type AuthConfig struct {
	ID                  int       `json:"id"`
	EnableGoogleLogin   bool      `json:"enable_google_login"`
	EnablePasswordReset bool      `json:"enable_password_reset"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type AuthConfigUpdate struct {
	EnableGoogleLogin   *bool `json:"enable_google_login"`
	EnablePasswordReset *bool `json:"enable_password_reset"`
}
