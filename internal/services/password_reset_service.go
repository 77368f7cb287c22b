package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"baobyte/internal/models"
	"baobyte/internal/repositories"
	"baobyte/internal/token"
)

var (
	ErrResetThrottled = errors.New("too many reset requests")
	ErrWeakPassword   = errors.New("password must be at least 8 characters")
)

type PasswordResetService interface {
	// RequestReset sends a reset link if the account exists. Existence is
	// never revealed to the caller.
	RequestReset(email, remoteIP, userAgent string) error
	ResetPassword(tok, newPassword string) error
}

type passwordResetService struct {
	userRepo    repositories.UserRepository
	logRepo     repositories.PasswordResetLogRepository
	emails      EmailService
	auth        AuthService
	codec       *token.Codec
	siteDomain  string
	tokenExpiry time.Duration
	maxAttempts int
	blockWindow time.Duration
}

func NewPasswordResetService(
	userRepo repositories.UserRepository,
	logRepo repositories.PasswordResetLogRepository,
	emails EmailService,
	auth AuthService,
	codec *token.Codec,
	siteDomain string,
	tokenExpiry time.Duration,
	maxAttempts int,
	blockWindow time.Duration,
) PasswordResetService {
	return &passwordResetService{
		userRepo:    userRepo,
		logRepo:     logRepo,
		emails:      emails,
		auth:        auth,
		codec:       codec,
		siteDomain:  siteDomain,
		tokenExpiry: tokenExpiry,
		maxAttempts: maxAttempts,
		blockWindow: blockWindow,
	}
}

func (s *passwordResetService) RequestReset(email, remoteIP, userAgent string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	// rate limit per email, counted over the block window
	since := time.Now().Add(-s.blockWindow)
	recent, err := s.logRepo.CountRecentByEmail(email, since)
	if err != nil {
		return err
	}
	if recent >= s.maxAttempts {
		return ErrResetThrottled
	}

	entry := &models.PasswordResetLog{Email: email, IPAddress: remoteIP, UserAgent: userAgent}
	if err := s.logRepo.Create(entry); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil || user == nil {
		// don't leak existence
		log.Printf("[password-reset][request] %q: no matching account (err=%v)", email, err)
		return nil
	}

	signed, err := s.codec.Encode(token.Claims{
		Email:   user.Email,
		UserID:  user.ID,
		Purpose: token.PurposePasswordReset,
	})
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/password-reset/confirm?token=%s", s.siteDomain, signed)
	if err := s.emails.SendPasswordResetEmail(user.Email, resetURL); err != nil {
		log.Printf("[password-reset][request] send to %s failed: %v", user.Email, err)
		return err
	}
	log.Printf("[password-reset][request] sent to %s", user.Email)
	return nil
}

func (s *passwordResetService) ResetPassword(tok, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	claims, err := s.codec.Decode(strings.TrimSpace(tok), s.tokenExpiry)
	if err != nil {
		return err // token.ErrTokenExpired / token.ErrBadSignature
	}
	if claims.Purpose != token.PurposePasswordReset {
		return token.ErrBadSignature
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil || user == nil {
		return fmt.Errorf("reset: user not found")
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hash); err != nil {
		return err
	}
	if err := s.logRepo.MarkSuccessful(user.Email); err != nil {
		log.Printf("[password-reset][confirm] mark log for %s failed: %v", user.Email, err)
	}
	log.Printf("[password-reset][confirm] password changed for user id=%d", user.ID)
	return nil
}
