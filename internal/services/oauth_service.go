package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"baobyte/internal/session"
	"baobyte/internal/utils"
)

const (
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"
	oauthStateKey     = "google_oauth_state"
)

var ErrInvalidOAuthState = errors.New("oauth state mismatch")

// GoogleUserInfo is the subset of the userinfo payload we consume.
type GoogleUserInfo struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// OAuthService drives the Google OAuth2 login flow. The CSRF state value is
// kept in the caller's session and consumed exactly once on callback.
type OAuthService interface {
	AuthURL(ctx context.Context, sessionID string) (string, error)
	Exchange(ctx context.Context, sessionID, state, code string) (*GoogleUserInfo, error)
}

type oauthService struct {
	config   *oauth2.Config
	sessions session.Store
}

func NewOAuthService(clientID, clientSecret, redirectURL string, sessions session.Store) OAuthService {
	return &oauthService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				"openid",
			},
			Endpoint: google.Endpoint,
		},
		sessions: sessions,
	}
}

func (s *oauthService) AuthURL(ctx context.Context, sessionID string) (string, error) {
	state, err := utils.NewRandomToken(32)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Set(ctx, sessionID, oauthStateKey, state); err != nil {
		return "", err
	}
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (s *oauthService) Exchange(ctx context.Context, sessionID, state, code string) (*GoogleUserInfo, error) {
	stored, err := s.sessions.Pop(ctx, sessionID, oauthStateKey)
	if err != nil || stored == "" || stored != state {
		return nil, ErrInvalidOAuthState
	}

	tok, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}

	client := s.config.Client(ctx, tok)
	client.Timeout = 10 * time.Second
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("oauth userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth userinfo: status %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("oauth userinfo decode: %w", err)
	}
	return &info, nil
}
