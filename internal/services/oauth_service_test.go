package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baobyte/internal/session"
)

func newOAuthFixture() (OAuthService, session.Store) {
	store := session.NewMemoryStore(time.Hour)
	svc := NewOAuthService("client-id", "client-secret", "http://localhost:8080/auth/google/callback", store)
	return svc, store
}

// stateOf pulls the state parameter back out of the consent URL.
func stateOf(t *testing.T, authURL string) string {
	t.Helper()
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestOAuthAuthURLStoresStateInSession(t *testing.T) {
	svc, store := newOAuthFixture()
	ctx := context.Background()

	authURL, err := svc.AuthURL(ctx, "sess-1")
	require.NoError(t, err)
	assert.Contains(t, authURL, "accounts.google.com")

	stored, err := store.Get(ctx, "sess-1", "google_oauth_state")
	require.NoError(t, err)
	assert.Equal(t, stateOf(t, authURL), stored)
}

func TestOAuthAuthURLMintsDistinctStates(t *testing.T) {
	svc, _ := newOAuthFixture()
	ctx := context.Background()

	first, err := svc.AuthURL(ctx, "sess-1")
	require.NoError(t, err)
	second, err := svc.AuthURL(ctx, "sess-2")
	require.NoError(t, err)

	assert.NotEqual(t, stateOf(t, first), stateOf(t, second))
}

func TestOAuthExchangeRejectsWrongState(t *testing.T) {
	svc, _ := newOAuthFixture()
	ctx := context.Background()

	_, err := svc.AuthURL(ctx, "sess-1")
	require.NoError(t, err)

	// state check fails before any call to Google
	info, err := svc.Exchange(ctx, "sess-1", "forged-state", "code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
	assert.Nil(t, info)
}

func TestOAuthExchangeConsumesStateOnce(t *testing.T) {
	svc, store := newOAuthFixture()
	ctx := context.Background()

	authURL, err := svc.AuthURL(ctx, "sess-1")
	require.NoError(t, err)
	state := stateOf(t, authURL)

	// a forged attempt burns the stored state
	_, err = svc.Exchange(ctx, "sess-1", "forged-state", "code")
	require.ErrorIs(t, err, ErrInvalidOAuthState)

	// the genuine state no longer matches anything
	_, err = svc.Exchange(ctx, "sess-1", state, "code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)

	_, err = store.Get(ctx, "sess-1", "google_oauth_state")
	assert.Error(t, err, "the state must be gone from the session")
}

func TestOAuthExchangeWithoutPriorAuthURL(t *testing.T) {
	svc, _ := newOAuthFixture()

	info, err := svc.Exchange(context.Background(), "sess-unknown", "any-state", "code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
	assert.Nil(t, info)
}

func TestOAuthStatesAreBoundToTheirSession(t *testing.T) {
	svc, _ := newOAuthFixture()
	ctx := context.Background()

	authURL, err := svc.AuthURL(ctx, "sess-1")
	require.NoError(t, err)

	// replaying the state under a different session fails
	_, err = svc.Exchange(ctx, "sess-2", stateOf(t, authURL), "code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
}
