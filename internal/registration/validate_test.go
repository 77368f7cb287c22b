package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"baobyte/internal/models"
)

func TestValidateFormNormalizes(t *testing.T) {
	req := &models.RegisterRequest{
		Username:        "  Alice.Doe  ",
		Email:           " Alice@EXAMPLE.com ",
		Password:        "sup3r-secret",
		PasswordConfirm: "sup3r-secret",
		TermsAccepted:   true,
	}

	errs := ValidateForm(req)

	assert.Empty(t, errs)
	assert.Equal(t, "alice.doe", req.Username)
	assert.Equal(t, "alice@example.com", req.Email)
}

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RegisterRequest)
		field  string
	}{
		{"username too short", func(r *models.RegisterRequest) { r.Username = "ab" }, "username"},
		{"username bad chars", func(r *models.RegisterRequest) { r.Username = "al ice!" }, "username"},
		{"invalid email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *models.RegisterRequest) { r.Password, r.PasswordConfirm = "short", "short" }, "password"},
		{"password mismatch", func(r *models.RegisterRequest) { r.PasswordConfirm = "different-pass" }, "password_confirm"},
		{"terms not accepted", func(r *models.RegisterRequest) { r.TermsAccepted = false }, "terms_accepted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &models.RegisterRequest{
				Username:        "alice",
				Email:           "alice@example.com",
				Password:        "sup3r-secret",
				PasswordConfirm: "sup3r-secret",
				TermsAccepted:   true,
			}
			tt.mutate(req)

			errs := ValidateForm(req)

			assert.Contains(t, errs, tt.field)
		})
	}
}
