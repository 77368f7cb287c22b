package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"baobyte/internal/authz"
	"baobyte/internal/models"
	"baobyte/internal/repositories"
)

// ErrEmailTaken re-exports the repository conflict so callers outside the
// persistence layer do not import it directly.
var ErrEmailTaken = repositories.ErrEmailTaken

type UserService interface {
	// CreateVerifiedUser materializes a fully-validated pending registration
	// into a persistent, already-verified account.
	CreateVerifiedUser(data models.RegistrationData) (*models.User, error)
	// GetOrCreateGoogleUser backs the OAuth callback: accounts created this
	// way are verified by construction (Google owns the mailbox).
	GetOrCreateGoogleUser(email, firstName, lastName string) (*models.User, error)
	MarkVerified(userID int) error
	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdatePassword(userID int, passwordHash string) error

	UpdateRefresh(userID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
}

func NewUserService(repo repositories.UserRepository, emailService EmailService) UserService {
	return &userService{repo: repo, emailService: emailService}
}

func (s *userService) CreateVerifiedUser(data models.RegistrationData) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		Username:      strings.ToLower(strings.TrimSpace(data.Username)),
		FirstName:     data.FirstName,
		LastName:      data.LastName,
		Email:         strings.ToLower(strings.TrimSpace(data.Email)),
		PasswordHash:  data.PasswordHash,
		RoleID:        authz.RoleUser,
		IsVerified:    true,
		TermsAccepted: data.TermsAccepted,
		VerifiedAt:    &now,
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("materialize account: %w", err)
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Username); err != nil {
			// warn but do not fail creation
			log.Printf("[users][create] welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) GetOrCreateGoogleUser(email, firstName, lastName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	now := time.Now()
	user = &models.User{
		Username:   email,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		RoleID:     authz.RoleUser,
		IsVerified: true,
		VerifiedAt: &now,
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			// lost a race with a concurrent first login; the row exists now
			return s.repo.GetByEmail(email)
		}
		return nil, err
	}
	log.Printf("[users][oauth] created user id=%d via google", user.ID)
	return user, nil
}

func (s *userService) MarkVerified(userID int) error {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d not found", userID)
	}
	if user.IsVerified {
		return nil
	}
	return s.repo.MarkVerified(userID, time.Now())
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
}

func (s *userService) UpdatePassword(userID int, passwordHash string) error {
	return s.repo.UpdatePassword(userID, passwordHash)
}

func (s *userService) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(userID, token, expiresAt)
}

func (s *userService) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(oldToken, newToken, newExpiresAt)
}

func (s *userService) ClearRefresh(userID int) error {
	return s.repo.ClearRefresh(userID)
}

func (s *userService) GetByRefreshToken(token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(token)
}
