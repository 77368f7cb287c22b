package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baobyte/internal/models"
)

type fakeAuthConfigRepo struct {
	cfg *models.AuthConfig
	err error
}

func (r *fakeAuthConfigRepo) Get() (*models.AuthConfig, error) {
	if r.err != nil {
		return nil, r.err
	}
	cp := *r.cfg
	return &cp, nil
}

func (r *fakeAuthConfigRepo) Update(cfg *models.AuthConfig) error {
	if r.err != nil {
		return r.err
	}
	r.cfg = cfg
	return nil
}

func boolPtr(v bool) *bool { return &v }

func TestAuthConfigPartialUpdate(t *testing.T) {
	repo := &fakeAuthConfigRepo{cfg: &models.AuthConfig{EnableGoogleLogin: true, EnablePasswordReset: true}}
	svc := NewAuthConfigService(repo)

	cfg, err := svc.Update(models.AuthConfigUpdate{EnablePasswordReset: boolPtr(false)})
	require.NoError(t, err)

	assert.True(t, cfg.EnableGoogleLogin, "untouched toggle keeps its value")
	assert.False(t, cfg.EnablePasswordReset)
	assert.False(t, svc.PasswordResetEnabled())
	assert.True(t, svc.GoogleLoginEnabled())
}

func TestTogglesFailClosed(t *testing.T) {
	repo := &fakeAuthConfigRepo{err: errors.New("connection refused")}
	svc := NewAuthConfigService(repo)

	assert.False(t, svc.GoogleLoginEnabled())
	assert.False(t, svc.PasswordResetEnabled())
}
