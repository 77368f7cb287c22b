package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"baobyte/internal/models"
	"baobyte/internal/token"
)

// ErrAlreadyActivated is returned when the linked account is verified already.
var ErrAlreadyActivated = errors.New("account already activated")

// ActivationService issues and redeems signed activation links for accounts
// that exist but are not yet verified.
type ActivationService struct {
	users      UserService
	emails     EmailService
	codec      *token.Codec
	siteDomain string
	expiry     time.Duration
}

func NewActivationService(users UserService, emails EmailService, codec *token.Codec, siteDomain string, expiry time.Duration) *ActivationService {
	return &ActivationService{
		users:      users,
		emails:     emails,
		codec:      codec,
		siteDomain: siteDomain,
		expiry:     expiry,
	}
}

func (s *ActivationService) SendActivationLink(user *models.User) error {
	signed, err := s.codec.Encode(token.Claims{
		Email:   user.Email,
		UserID:  user.ID,
		Purpose: token.PurposeActivate,
	})
	if err != nil {
		return err
	}
	activationURL := fmt.Sprintf("%s/activate?token=%s", s.siteDomain, signed)
	if err := s.emails.SendActivationEmail(user.Email, activationURL); err != nil {
		return err
	}
	log.Printf("[activation][send] link sent to %s", user.Email)
	return nil
}

// Activate redeems a signed link and marks the account verified.
func (s *ActivationService) Activate(tok string) (*models.User, error) {
	claims, err := s.codec.Decode(strings.TrimSpace(tok), s.expiry)
	if err != nil {
		return nil, err // token.ErrTokenExpired / token.ErrBadSignature
	}
	if claims.Purpose != token.PurposeActivate {
		return nil, token.ErrBadSignature
	}

	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil || user == nil {
		return nil, fmt.Errorf("activation: user not found")
	}
	if user.IsVerified {
		return user, ErrAlreadyActivated
	}
	if err := s.users.MarkVerified(user.ID); err != nil {
		return nil, err
	}
	user.IsVerified = true
	log.Printf("[activation][redeem] user id=%d activated", user.ID)
	return user, nil
}
