package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baobyte/internal/messages"
	"baobyte/internal/models"
	"baobyte/internal/services"
	"baobyte/internal/session"
)

// --- fakes ---

type fakeCaptcha struct {
	ok  bool
	err error
}

func (f *fakeCaptcha) Verify(context.Context, string, string) (bool, error) { return f.ok, f.err }

type fakeAuth struct{}

func (fakeAuth) HashPassword(plain string) (string, error)   { return "hashed:" + plain, nil }
func (fakeAuth) CheckPassword(hash, plain string) bool       { return hash == "hashed:"+plain }
func (fakeAuth) NewAccessToken(*models.User) (string, error) { return "jwt", nil }

type sentMail struct {
	email string
	code  string
}

type fakeMailer struct {
	sent    []sentMail
	failing bool
}

func (f *fakeMailer) SendVerificationCode(email, code string, _ int) error {
	if f.failing {
		return errors.New("smtp: connection refused")
	}
	f.sent = append(f.sent, sentMail{email: email, code: code})
	return nil
}

func (f *fakeMailer) SendActivationEmail(string, string) error    { return nil }
func (f *fakeMailer) SendPasswordResetEmail(string, string) error { return nil }
func (f *fakeMailer) SendWelcomeEmail(string, string) error       { return nil }

type fakeUsers struct {
	services.UserService

	byEmail   map[string]*models.User
	created   []models.RegistrationData
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}}
}

func (f *fakeUsers) GetUserByEmail(email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUsers) CreateVerifiedUser(data models.RegistrationData) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, data)
	user := &models.User{ID: len(f.created), Email: data.Email, IsVerified: true}
	f.byEmail[data.Email] = user
	return user, nil
}

// --- harness ---

type flowFixture struct {
	flow    *Flow
	store   *session.MemoryStore
	mailer  *fakeMailer
	users   *fakeUsers
	captcha *fakeCaptcha
	clock   time.Time
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	fx := &flowFixture{
		store:   session.NewMemoryStore(time.Hour),
		mailer:  &fakeMailer{},
		users:   newFakeUsers(),
		captcha: &fakeCaptcha{ok: true},
		clock:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	machine := NewMachine(testLimits)
	fx.flow = NewFlow(machine, fx.store, fx.captcha, fakeAuth{}, fx.users, fx.mailer)
	fx.flow.SetClock(func() time.Time { return fx.clock })
	fx.store.SetClock(func() time.Time { return fx.clock })
	return fx
}

func (fx *flowFixture) advance(d time.Duration) { fx.clock = fx.clock.Add(d) }

func validRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		Username:        "Alice",
		FirstName:       "Alice",
		LastName:        "Doe",
		Email:           "Alice@Example.com",
		Password:        "sup3r-secret",
		PasswordConfirm: "sup3r-secret",
		TermsAccepted:   true,
	}
}

const sid = "session-1"

func (fx *flowFixture) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, fx.mailer.sent)
	return fx.mailer.sent[len(fx.mailer.sent)-1].code
}

// --- tests ---

func TestFlowHappyPath(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	result, fieldErrs, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, OutcomeVerify, result.Outcome)

	require.Len(t, fx.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", fx.mailer.sent[0].email)
	assert.Len(t, fx.mailer.sent[0].code, testLimits.CodeLength)

	result, err = fx.flow.SubmitCode(ctx, sid, fx.lastCode(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)

	require.Len(t, fx.users.created, 1)
	assert.Equal(t, "alice@example.com", fx.users.created[0].Email)
	assert.Equal(t, "hashed:sup3r-secret", fx.users.created[0].PasswordHash)

	// session fully cleared
	_, err = fx.store.Get(ctx, sid, pendingKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = fx.store.Get(ctx, sid, abandonKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFlowCaptchaFailure(t *testing.T) {
	fx := newFlowFixture(t)
	fx.captcha.ok = false

	_, _, err := fx.flow.SubmitForm(context.Background(), sid, "1.2.3.4", validRequest())

	assert.ErrorIs(t, err, ErrCaptchaFailed)
	assert.Empty(t, fx.mailer.sent, "no code may be sent before the captcha passes")
}

func TestFlowFieldErrors(t *testing.T) {
	fx := newFlowFixture(t)
	req := validRequest()
	req.PasswordConfirm = "different"
	req.TermsAccepted = false

	result, fieldErrs, err := fx.flow.SubmitForm(context.Background(), sid, "1.2.3.4", req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeForm, result.Outcome)
	assert.Contains(t, fieldErrs, "password_confirm")
	assert.Contains(t, fieldErrs, "terms_accepted")
	assert.Empty(t, fx.mailer.sent)
}

func TestFlowDuplicateEmailAdvisoryCheck(t *testing.T) {
	fx := newFlowFixture(t)
	fx.users.byEmail["alice@example.com"] = &models.User{ID: 7, Email: "alice@example.com"}

	result, fieldErrs, err := fx.flow.SubmitForm(context.Background(), sid, "1.2.3.4", validRequest())

	require.NoError(t, err)
	assert.Equal(t, OutcomeForm, result.Outcome)
	assert.Equal(t, messages.Text(messages.EmailAlreadyUsed), fieldErrs["email"])
	assert.Empty(t, fx.mailer.sent)
}

func TestFlowMailFailureRollsBack(t *testing.T) {
	fx := newFlowFixture(t)
	fx.mailer.failing = true
	ctx := context.Background()

	_, _, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())

	assert.ErrorIs(t, err, ErrMailTransport)

	// no pending state was persisted: the next submission starts clean
	_, err = fx.store.Get(ctx, sid, pendingKey)
	assert.ErrorIs(t, err, session.ErrNotFound)

	fx.mailer.failing = false
	result, fieldErrs, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, OutcomeVerify, result.Outcome)

	// and the failed attempt did not count as an abandon
	_, err = fx.store.Get(ctx, sid, abandonKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFlowWrongCodesUntilBlocked(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	_, _, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		result, err := fx.flow.SubmitCode(ctx, sid, "WRONG0000000000")
		require.NoError(t, err)
		assert.Equal(t, OutcomeCodeMismatch, result.Outcome)
	}

	result, err := fx.flow.SubmitCode(ctx, sid, "WRONG0000000000")
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)

	// the correct code is dead now, across requests
	result, err = fx.flow.SubmitCode(ctx, sid, fx.lastCode(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)
	assert.Empty(t, fx.users.created)
}

func TestFlowResendIssuesFreshCode(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	_, _, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)
	first := fx.lastCode(t)

	fx.advance(time.Minute)
	result, err := fx.flow.Resend(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResent, result.Outcome)
	require.Len(t, fx.mailer.sent, 2)
	second := fx.lastCode(t)
	assert.NotEqual(t, first, second)

	// old code no longer accepted, fresh one is
	result, err = fx.flow.SubmitCode(ctx, sid, first)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCodeMismatch, result.Outcome)

	result, err = fx.flow.SubmitCode(ctx, sid, second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
}

func TestFlowExpiredCodeThenResend(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	_, _, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)
	first := fx.lastCode(t)

	fx.advance(testLimits.CodeExpiry + time.Second)

	result, err := fx.flow.SubmitCode(ctx, sid, first)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExpired, result.Outcome)

	result, err = fx.flow.Resend(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResent, result.Outcome)

	result, err = fx.flow.SubmitCode(ctx, sid, fx.lastCode(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
}

func TestFlowCreateConflictReportsGenericFailure(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	_, _, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)

	// someone registered the address between form and confirmation
	fx.users.createErr = services.ErrEmailTaken

	result, err := fx.flow.SubmitCode(ctx, sid, fx.lastCode(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Equal(t, messages.GenericError, result.Message, "a conflict must never confirm the email exists")

	// the pending registration was not cleared by the failed attempt
	_, err = fx.store.Get(ctx, sid, pendingKey)
	assert.NoError(t, err)
}

func TestFlowAbandonCounterSurvivesRestarts(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	// abandon twice by resubmitting the form over a live verification
	for i := 0; i < 2; i++ {
		_, _, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
		require.NoError(t, err)
	}
	count, err := fx.store.Get(ctx, sid, abandonKey)
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	// third submission over a live verification is the last straw
	result, fieldErrs, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, OutcomeVerify, result.Outcome)

	result, _, err = fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)

	// entry stays refused without a pending blob
	result, _, err = fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)
	assert.Len(t, fx.mailer.sent, 3, "no code is sent once entry is refused")
}

func TestFlowRevisitAfterExpiry(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	_, _, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)

	fx.advance(testLimits.CodeExpiry + time.Second)

	result, err := fx.flow.Revisit(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, OutcomeForm, result.Outcome)
	assert.Equal(t, messages.CodeExpired, result.Message)

	count, err := fx.store.Get(ctx, sid, abandonKey)
	require.NoError(t, err)
	assert.Equal(t, "1", count)
}

func TestFlowStatusIsIdempotent(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	status, err := fx.flow.Status(ctx, sid)
	require.NoError(t, err)
	assert.False(t, status.Valid)

	_, _, err = fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)

	fx.advance(2 * time.Minute)
	status, err = fx.flow.Status(ctx, sid)
	require.NoError(t, err)
	assert.True(t, status.Valid)
	assert.Equal(t, 180, status.TimeRemaining)

	// polling again changes nothing
	again, err := fx.flow.Status(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, status, again)

	fx.advance(testLimits.CodeExpiry)
	status, err = fx.flow.Status(ctx, sid)
	require.NoError(t, err)
	assert.False(t, status.Valid)
	assert.True(t, status.Expired)
}

func TestFlowCorruptPendingBlobIsDropped(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.store.Set(ctx, sid, pendingKey, "{not json"))

	status, err := fx.flow.Status(ctx, sid)
	require.NoError(t, err)
	assert.False(t, status.Valid)

	// the flow recovers: a fresh registration works
	result, fieldErrs, err := fx.flow.SubmitForm(ctx, sid, "1.2.3.4", validRequest())
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, OutcomeVerify, result.Outcome)
}
