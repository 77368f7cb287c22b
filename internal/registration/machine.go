// Package registration implements the session-backed registration and email
// verification flow: a state machine over the pending-registration blob plus
// the abandon counter, and a flow service that executes its effects (send
// code, materialize account) against the real collaborators.
package registration

import (
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"baobyte/internal/messages"
	"baobyte/internal/models"
)

// Limits are the configured guards of the state machine.
type Limits struct {
	MaxAttempts     int           // wrong codes per issued code
	MaxResendCount  int           // resends per registration
	MaxAbandonCount int           // abandoned registrations per session
	CodeLength      int
	CodeExpiry      time.Duration
}

// State is everything the machine knows about one session. AbandonCount
// lives outside Pending because it must survive Pending being cleared.
type State struct {
	Pending      *models.PendingRegistration
	AbandonCount int
}

// Outcome classifies a transition result for the HTTP layer.
type Outcome int

const (
	OutcomeForm Outcome = iota // (re)render the form step
	OutcomeVerify              // code issued, render the verify step
	OutcomeCodeMismatch        // wrong code, attempts remain
	OutcomeExpired             // code expired, resend or restart
	OutcomeResent              // fresh code issued
	OutcomeSuccess             // account materialized
	OutcomeBlocked             // terminal for this session
	OutcomeSessionMissing      // no live registration in the session
	OutcomeFailure             // materialization failed, nothing persisted
)

// Result carries the outcome and the catalog message describing it.
type Result struct {
	Outcome Outcome
	Message messages.Key
	Fields  map[string]string
}

// Effects are side effects decided by the machine and executed by the flow
// service, keeping every transition a pure function of (State, Event).
type Effect interface{ isEffect() }

// SendCode means: deliver this code to this address, exactly once.
type SendCode struct {
	Email         string
	Code          string
	ExpiryMinutes int
}

// CreateAccount means: materialize the captured registration data.
type CreateAccount struct {
	Data models.RegistrationData
}

func (SendCode) isEffect()      {}
func (CreateAccount) isEffect() {}

// Machine holds the guards; it has no mutable state of its own.
type Machine struct {
	limits Limits
}

func NewMachine(limits Limits) *Machine {
	return &Machine{limits: limits}
}

func (m *Machine) Limits() Limits { return m.limits }

// entryRefused reports whether the session is locked out of the flow
// entirely. Only external intervention (session reset by support) clears it.
func (m *Machine) entryRefused(st State) bool {
	return st.AbandonCount >= m.limits.MaxAbandonCount
}

func blocked(msg messages.Key) Result {
	return Result{Outcome: OutcomeBlocked, Message: msg}
}

// SubmitForm handles a validated form submission. The caller has already
// verified the CAPTCHA, validated the fields, hashed the password, checked
// the email against the account store, and generated the code: the machine
// only decides state. Starting over while a verification is live counts as
// an abandon of the old registration.
func (m *Machine) SubmitForm(st State, data models.RegistrationData, code string, now time.Time) (State, []Effect, Result) {
	if m.entryRefused(st) {
		return st, nil, blocked(messages.RegistrationBlocked)
	}
	if st.Pending != nil && st.Pending.Step == models.StepBlocked {
		return st, nil, blocked(messages.RegistrationBlocked)
	}

	if st.Pending != nil && st.Pending.Step == models.StepVerify {
		st.AbandonCount++
		st.Pending = nil
		if m.entryRefused(st) {
			return st, nil, blocked(messages.RegistrationBlocked)
		}
	}

	st.Pending = &models.PendingRegistration{
		Step:     models.StepVerify,
		UserData: data,
		Code:     code,
		IssuedAt: now,
	}
	effects := []Effect{SendCode{
		Email:         data.Email,
		Code:          code,
		ExpiryMinutes: int(m.limits.CodeExpiry.Minutes()),
	}}
	return st, effects, Result{
		Outcome: OutcomeVerify,
		Message: messages.ActivationInstructions,
		Fields: map[string]string{
			"email":   data.Email,
			"minutes": strconv.Itoa(int(m.limits.CodeExpiry.Minutes())),
		},
	}
}

// SubmitCode evaluates a code submission. Expired codes are rejected without
// burning an attempt; a mismatch increments attempts; exhausting attempts
// clears everything except the abandon counter and blocks the registration.
func (m *Machine) SubmitCode(st State, code string, now time.Time) (State, []Effect, Result) {
	if m.entryRefused(st) {
		return st, nil, blocked(messages.RegistrationBlocked)
	}
	if st.Pending == nil {
		return st, nil, Result{Outcome: OutcomeSessionMissing, Message: messages.SessionEmailMissing}
	}
	if st.Pending.Step == models.StepBlocked {
		return st, nil, blocked(messages.RegistrationBlocked)
	}

	if st.Pending.VerifyAttempts >= m.limits.MaxAttempts {
		// should have been blocked already; treat defensively as terminal
		st.Pending = &models.PendingRegistration{Step: models.StepBlocked}
		return st, nil, blocked(messages.AttemptsExceeded)
	}

	if now.Sub(st.Pending.IssuedAt) >= m.limits.CodeExpiry {
		// no attempt increment: the user never got to prove anything
		return st, nil, Result{Outcome: OutcomeExpired, Message: messages.CodeExpired}
	}

	submitted := strings.ToUpper(strings.TrimSpace(code))
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(st.Pending.Code)) == 1 {
		data := st.Pending.UserData
		st.Pending = nil
		st.AbandonCount = 0 // full clear, including the abandon counter
		return st, []Effect{CreateAccount{Data: data}}, Result{
			Outcome: OutcomeSuccess,
			Message: messages.ActivationSuccess,
		}
	}

	st.Pending.VerifyAttempts++
	if st.Pending.VerifyAttempts >= m.limits.MaxAttempts {
		st.Pending = &models.PendingRegistration{Step: models.StepBlocked}
		return st, nil, blocked(messages.AttemptsExceeded)
	}
	remaining := m.limits.MaxAttempts - st.Pending.VerifyAttempts
	return st, nil, Result{
		Outcome: OutcomeCodeMismatch,
		Message: messages.CodeInvalid,
		Fields:  map[string]string{"remaining": strconv.Itoa(remaining)},
	}
}

// Resend issues a fresh code: attempts reset (a new code deserves a clean
// three tries), the resend budget does not. Exhausting the budget is
// terminal for this registration.
func (m *Machine) Resend(st State, newCode string, now time.Time) (State, []Effect, Result) {
	if m.entryRefused(st) {
		return st, nil, blocked(messages.RegistrationBlocked)
	}
	if st.Pending == nil {
		return st, nil, Result{Outcome: OutcomeSessionMissing, Message: messages.SessionEmailMissing}
	}
	if st.Pending.Step == models.StepBlocked {
		return st, nil, blocked(messages.RegistrationBlocked)
	}

	if st.Pending.ResendCount >= m.limits.MaxResendCount {
		st.Pending = &models.PendingRegistration{Step: models.StepBlocked}
		return st, nil, blocked(messages.ResendLimitExceeded)
	}

	email := st.Pending.UserData.Email
	st.Pending.Code = newCode
	st.Pending.IssuedAt = now
	st.Pending.VerifyAttempts = 0
	st.Pending.ResendCount++
	effects := []Effect{SendCode{
		Email:         email,
		Code:          newCode,
		ExpiryMinutes: int(m.limits.CodeExpiry.Minutes()),
	}}
	return st, effects, Result{
		Outcome: OutcomeResent,
		Message: messages.ActivationResent,
		Fields:  map[string]string{"email": email},
	}
}

// Revisit handles re-entering the flow (a GET of the registration page).
// Coming back to an expired verification counts as an abandon; the pending
// blob is discarded and the user starts over at the form, unless the abandon
// budget is now exhausted.
func (m *Machine) Revisit(st State, now time.Time) (State, Result) {
	if m.entryRefused(st) {
		return st, blocked(messages.RegistrationBlocked)
	}
	if st.Pending == nil {
		return st, Result{Outcome: OutcomeForm}
	}
	if st.Pending.Step == models.StepBlocked {
		return st, blocked(messages.RegistrationBlocked)
	}

	if now.Sub(st.Pending.IssuedAt) >= m.limits.CodeExpiry {
		st.Pending = nil
		st.AbandonCount++
		if m.entryRefused(st) {
			return st, blocked(messages.RegistrationBlocked)
		}
		return st, Result{Outcome: OutcomeForm, Message: messages.CodeExpired}
	}
	return st, Result{Outcome: OutcomeVerify}
}

// Status is a pure read of the current verification window.
func (m *Machine) Status(st State, now time.Time) models.RegistrationStatus {
	if st.Pending == nil || st.Pending.Step != models.StepVerify {
		return models.RegistrationStatus{}
	}
	remaining := m.limits.CodeExpiry - now.Sub(st.Pending.IssuedAt)
	if remaining <= 0 {
		return models.RegistrationStatus{Valid: false, Expired: true}
	}
	return models.RegistrationStatus{
		Valid:         true,
		TimeRemaining: int(remaining.Seconds()),
	}
}
