package services

import (
	"log"

	"baobyte/internal/models"
	"baobyte/internal/repositories"
)

// AuthConfigService exposes the admin-editable feature toggles.
type AuthConfigService interface {
	Get() (*models.AuthConfig, error)
	Update(update models.AuthConfigUpdate) (*models.AuthConfig, error)
	GoogleLoginEnabled() bool
	PasswordResetEnabled() bool
}

type authConfigService struct {
	repo repositories.AuthConfigRepository
}

func NewAuthConfigService(repo repositories.AuthConfigRepository) AuthConfigService {
	return &authConfigService{repo: repo}
}

func (s *authConfigService) Get() (*models.AuthConfig, error) {
	return s.repo.Get()
}

func (s *authConfigService) Update(update models.AuthConfigUpdate) (*models.AuthConfig, error) {
	cfg, err := s.repo.Get()
	if err != nil {
		return nil, err
	}
	if update.EnableGoogleLogin != nil {
		cfg.EnableGoogleLogin = *update.EnableGoogleLogin
	}
	if update.EnablePasswordReset != nil {
		cfg.EnablePasswordReset = *update.EnablePasswordReset
	}
	if err := s.repo.Update(cfg); err != nil {
		return nil, err
	}
	log.Printf("[authconfig][update] google_login=%v password_reset=%v",
		cfg.EnableGoogleLogin, cfg.EnablePasswordReset)
	return cfg, nil
}

// toggle reads fall back to "off" on storage errors: an unreadable config
// must never open a disabled login path.
func (s *authConfigService) GoogleLoginEnabled() bool {
	cfg, err := s.repo.Get()
	if err != nil {
		log.Printf("[authconfig][read] failed, treating google login as disabled: %v", err)
		return false
	}
	return cfg.EnableGoogleLogin
}

func (s *authConfigService) PasswordResetEnabled() bool {
	cfg, err := s.repo.Get()
	if err != nil {
		log.Printf("[authconfig][read] failed, treating password reset as disabled: %v", err)
		return false
	}
	return cfg.EnablePasswordReset
}
