package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"baobyte/internal/messages"
	"baobyte/internal/models"
	"baobyte/internal/services"
	"baobyte/internal/session"
	"baobyte/internal/utils"
)

// Session keys. The abandon counter gets its own key on purpose: clearing
// the pending blob must not touch it.
const (
	pendingKey = "registration"
	abandonKey = "registration_abandons"
)

var (
	ErrCaptchaFailed = errors.New("captcha verification failed")
	ErrMailTransport = errors.New("could not send verification email")
)

// Flow drives the machine against the session store and executes its
// effects. All state mutations are persisted only after every effect of the
// transition succeeded, which is what rolls a failed email send back.
type Flow struct {
	machine  *Machine
	sessions session.Store
	captcha  services.CaptchaService
	auth     services.AuthService
	users    services.UserService
	emails   services.EmailService
	now      func() time.Time
}

func NewFlow(
	machine *Machine,
	sessions session.Store,
	captcha services.CaptchaService,
	auth services.AuthService,
	users services.UserService,
	emails services.EmailService,
) *Flow {
	return &Flow{
		machine:  machine,
		sessions: sessions,
		captcha:  captcha,
		auth:     auth,
		users:    users,
		emails:   emails,
		now:      time.Now,
	}
}

// SetClock overrides the time source for tests.
func (f *Flow) SetClock(now func() time.Time) { f.now = now }

func (f *Flow) loadState(ctx context.Context, sessionID string) (State, error) {
	var st State

	raw, err := f.sessions.Get(ctx, sessionID, pendingKey)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return st, err
	}
	if err == nil {
		var pending models.PendingRegistration
		if err := json.Unmarshal([]byte(raw), &pending); err != nil {
			// unreadable blob: drop it rather than wedge the session
			log.Printf("[register][state] dropping corrupt pending blob: %v", err)
		} else {
			st.Pending = &pending
		}
	}

	rawCount, err := f.sessions.Get(ctx, sessionID, abandonKey)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return st, err
	}
	if err == nil {
		if n, convErr := strconv.Atoi(rawCount); convErr == nil {
			st.AbandonCount = n
		}
	}
	return st, nil
}

func (f *Flow) saveState(ctx context.Context, sessionID string, st State) error {
	if st.Pending == nil {
		if err := f.sessions.Delete(ctx, sessionID, pendingKey); err != nil {
			return err
		}
	} else {
		blob, err := json.Marshal(st.Pending)
		if err != nil {
			return fmt.Errorf("encode pending registration: %w", err)
		}
		if err := f.sessions.Set(ctx, sessionID, pendingKey, string(blob)); err != nil {
			return err
		}
	}

	if st.AbandonCount <= 0 {
		return f.sessions.Delete(ctx, sessionID, abandonKey)
	}
	return f.sessions.Set(ctx, sessionID, abandonKey, strconv.Itoa(st.AbandonCount))
}

// SubmitForm is the submit-registration-form event. Guard order follows the
// original flow: CAPTCHA, then field validation, then the advisory duplicate
// check (the INSERT at materialization stays authoritative).
func (f *Flow) SubmitForm(ctx context.Context, sessionID, remoteIP string, req *models.RegisterRequest) (Result, FieldErrors, error) {
	st, err := f.loadState(ctx, sessionID)
	if err != nil {
		return Result{}, nil, err
	}
	if f.machine.entryRefused(st) {
		return blocked(messages.RegistrationBlocked), nil, nil
	}

	ok, err := f.captcha.Verify(ctx, req.CaptchaResponse, remoteIP)
	if err != nil {
		return Result{}, nil, fmt.Errorf("captcha: %w", err)
	}
	if !ok {
		return Result{}, nil, ErrCaptchaFailed
	}

	if errs := ValidateForm(req); len(errs) > 0 {
		return Result{Outcome: OutcomeForm}, errs, nil
	}

	existing, err := f.users.GetUserByEmail(req.Email)
	if err != nil {
		return Result{}, nil, err
	}
	if existing != nil {
		return Result{Outcome: OutcomeForm}, FieldErrors{
			"email": messages.Text(messages.EmailAlreadyUsed),
		}, nil
	}

	hash, err := f.auth.HashPassword(req.Password)
	if err != nil {
		return Result{}, nil, err
	}
	data := models.RegistrationData{
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PasswordHash:  hash,
		TermsAccepted: req.TermsAccepted,
	}

	code, err := utils.NewVerificationCode(f.machine.Limits().CodeLength)
	if err != nil {
		return Result{}, nil, err
	}

	next, effects, result := f.machine.SubmitForm(st, data, code, f.now())
	if err := f.runEffects(effects); err != nil {
		// transport failure: session stays at the pre-event state
		return Result{}, nil, err
	}
	if err := f.saveState(ctx, sessionID, next); err != nil {
		return Result{}, nil, err
	}
	log.Printf("[register][form] verification started email=%q outcome=%d", data.Email, result.Outcome)
	return result, nil, nil
}

// SubmitCode is the submit-verification-code event.
func (f *Flow) SubmitCode(ctx context.Context, sessionID, code string) (Result, error) {
	st, err := f.loadState(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	next, effects, result := f.machine.SubmitCode(st, code, f.now())
	if err := f.runEffects(effects); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			// lost the duplicate race at materialization: generic failure,
			// never a confirmation that the email exists
			log.Printf("[register][confirm] create conflict, reporting generic failure")
			return Result{Outcome: OutcomeFailure, Message: messages.GenericError}, nil
		}
		return Result{}, err
	}
	if err := f.saveState(ctx, sessionID, next); err != nil {
		if result.Outcome == OutcomeSuccess {
			// account exists; a stale session blob is an annoyance, not a loss
			log.Printf("[register][confirm] account created but session clear failed: %v", err)
			return result, nil
		}
		return Result{}, err
	}
	return result, nil
}

// Resend is the request-resend event. A failed send burns nothing.
func (f *Flow) Resend(ctx context.Context, sessionID string) (Result, error) {
	st, err := f.loadState(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	code, err := utils.NewVerificationCode(f.machine.Limits().CodeLength)
	if err != nil {
		return Result{}, err
	}

	next, effects, result := f.machine.Resend(st, code, f.now())
	if err := f.runEffects(effects); err != nil {
		return Result{}, err
	}
	if err := f.saveState(ctx, sessionID, next); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Revisit applies the abandon accounting for re-entering the flow.
func (f *Flow) Revisit(ctx context.Context, sessionID string) (Result, error) {
	st, err := f.loadState(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	next, result := f.machine.Revisit(st, f.now())
	if err := f.saveState(ctx, sessionID, next); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Status reports the verification window without mutating anything.
func (f *Flow) Status(ctx context.Context, sessionID string) (models.RegistrationStatus, error) {
	st, err := f.loadState(ctx, sessionID)
	if err != nil {
		return models.RegistrationStatus{}, err
	}
	return f.machine.Status(st, f.now()), nil
}

func (f *Flow) runEffects(effects []Effect) error {
	for _, effect := range effects {
		switch e := effect.(type) {
		case SendCode:
			if err := f.emails.SendVerificationCode(e.Email, e.Code, e.ExpiryMinutes); err != nil {
				log.Printf("[register][email] send to %s failed: %v", e.Email, err)
				return fmt.Errorf("%w: %v", ErrMailTransport, err)
			}
		case CreateAccount:
			if _, err := f.users.CreateVerifiedUser(e.Data); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown effect %T", effect)
		}
	}
	return nil
}
