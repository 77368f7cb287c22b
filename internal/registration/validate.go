package registration

import (
	"net/mail"
	"regexp"
	"strings"

	"baobyte/internal/messages"
	"baobyte/internal/models"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_.-]{3,30}$`)

// FieldErrors maps form field names to catalog messages; an empty map means
// the form passed in a single validation pass.
type FieldErrors map[string]string

// ValidateForm normalizes and validates the registration form. Email and
// username are lowercased before any check so lookups and uniqueness behave
// case-insensitively.
func ValidateForm(req *models.RegisterRequest) FieldErrors {
	errs := FieldErrors{}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if !usernameRe.MatchString(req.Username) {
		errs["username"] = "Username must be 3-30 characters: lowercase letters, digits, '.', '-' or '_'."
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs["email"] = "Enter a valid email address."
	}
	if len(req.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters."
	}
	if req.Password != req.PasswordConfirm {
		errs["password_confirm"] = messages.Text(messages.PasswordMismatch)
	}
	if !req.TermsAccepted {
		errs["terms_accepted"] = messages.Text(messages.TermsRequired)
	}
	return errs
}
