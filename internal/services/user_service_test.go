package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baobyte/internal/authz"
	"baobyte/internal/models"
)

func TestCreateVerifiedUser(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	svc := NewUserService(repo, mailer)

	user, err := svc.CreateVerifiedUser(models.RegistrationData{
		Username:      "Alice",
		FirstName:     "Alice",
		LastName:      "Doe",
		Email:         "Alice@Example.com",
		PasswordHash:  "$2a$10$fakehash",
		TermsAccepted: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, authz.RoleUser, user.RoleID)
	assert.True(t, user.IsVerified, "code-verified registrations are born verified")
	assert.NotNil(t, user.VerifiedAt)
	assert.True(t, user.TermsAccepted)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "welcome", mailer.sent[0].kind)
}

func TestCreateVerifiedUserDuplicate(t *testing.T) {
	repo := newFakeUserRepo(aliceUser())
	svc := NewUserService(repo, &recordingMailer{})

	_, err := svc.CreateVerifiedUser(models.RegistrationData{
		Username:     "alice2",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$fakehash",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetOrCreateGoogleUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &recordingMailer{})

	user, err := svc.GetOrCreateGoogleUser("Carol@Example.com", "Carol", "Smith")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.True(t, user.IsVerified, "google owns the mailbox, no code needed")
	assert.Equal(t, authz.RoleUser, user.RoleID)

	// second login returns the same account
	again, err := svc.GetOrCreateGoogleUser("carol@example.com", "Carol", "Smith")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, repo.users, 1)
}

func TestGetOrCreateGoogleUserExistingPasswordAccount(t *testing.T) {
	existing := aliceUser()
	repo := newFakeUserRepo(existing)
	svc := NewUserService(repo, &recordingMailer{})

	user, err := svc.GetOrCreateGoogleUser("alice@example.com", "Alice", "Doe")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID, "google login reuses the password account for the same address")
}
