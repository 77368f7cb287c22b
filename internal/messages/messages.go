package messages

import "strings"

// Key identifies a user-facing message in the catalog.
type Key string

// Catalog of all user-facing texts, centralized for easy maintenance and
// translation. Handlers never hardcode response texts.
const (
	LoginSuccess        Key = "LOGIN_SUCCESS"
	LoginFailed         Key = "LOGIN_FAILED"
	LogoutSuccess       Key = "LOGOUT_SUCCESS"
	RegisterSuccess     Key = "REGISTER_SUCCESS"
	EmailAlreadyUsed    Key = "EMAIL_ALREADY_USED"
	UsernameAlreadyUsed Key = "USERNAME_ALREADY_USED"
	TermsRequired       Key = "TERMS_REQUIRED"
	PasswordMismatch    Key = "PASSWORD_MISMATCH"
	PasswordChanged     Key = "PASSWORD_CHANGED"
	PasswordResetSent   Key = "PASSWORD_RESET_SENT"
	AccountNotActivated Key = "ACCOUNT_NOT_ACTIVATED"

	CaptchaRequired Key = "CAPTCHA_REQUIRED"
	CaptchaInvalid  Key = "CAPTCHA_INVALID"

	ActivationInstructions Key = "ACTIVATION_INSTRUCTIONS"
	ActivationResent       Key = "ACTIVATION_RESENT"
	ActivationSuccess      Key = "ACTIVATION_SUCCESS"
	ActivationSubject      Key = "ACTIVATION_SUBJECT"
	VerifiedMail           Key = "VERIFIED_MAIL"
	CodeInvalid            Key = "CODE_INVALID"
	CodeExpired            Key = "CODE_EXPIRED"
	TokenExpired           Key = "TOKEN_EXPIRED"
	InvalidToken           Key = "INVALID_TOKEN"
	AttemptsExceeded       Key = "ATTEMPTS_EXCEEDED"
	ResendLimitExceeded    Key = "RESEND_LIMIT_EXCEEDED"
	RegistrationBlocked    Key = "REGISTRATION_BLOCKED"
	SessionEmailMissing    Key = "SESSION_EMAIL_MISSING"

	InvalidState   Key = "INVALID_STATE"
	UserinfoFailed Key = "USERINFO_FAILED"
	NoGoogleEmail  Key = "NO_GOOGLE_EMAIL"

	GenericError Key = "GENERIC_ERROR"
	AccessDenied Key = "ACCESS_DENIED"
)

var catalog = map[Key]string{
	LoginSuccess:        "Welcome back! Auto-logout in 15 minutes of inactivity.",
	LoginFailed:         "Invalid credentials, please try again.",
	LogoutSuccess:       "You have been logged out successfully.",
	RegisterSuccess:     "Please, check your email to activate your account.",
	EmailAlreadyUsed:    "This email address is already registered.",
	UsernameAlreadyUsed: "This username is already taken.",
	TermsRequired:       "You must accept the Terms and Conditions.",
	PasswordMismatch:    "Passwords do not match.",
	PasswordChanged:     "Your password has been changed successfully.",
	PasswordResetSent:   "Password reset instructions have been sent to your email.",
	AccountNotActivated: "Your account is not activated yet. Please check your email and verify your account.",

	CaptchaRequired: "Please complete the reCAPTCHA.",
	CaptchaInvalid:  "reCAPTCHA validation failed. Please try again.",

	ActivationInstructions: "We sent a verification code to {email}. Enter it below within {minutes} minutes.",
	ActivationResent:       "A new verification code has been sent to {email}.",
	ActivationSuccess:      "Account successfully activated. You can now log in.",
	ActivationSubject:      "Activate your account",
	VerifiedMail:           "E-mail already verified.",
	CodeInvalid:            "Invalid verification code. {remaining} attempts remaining.",
	CodeExpired:            "The verification code has expired. Please request a new one.",
	TokenExpired:           "Activation link has expired. Please register again.",
	InvalidToken:           "Invalid or tampered activation link.",
	AttemptsExceeded:       "Too many incorrect codes. Registration has been blocked.",
	ResendLimitExceeded:    "Resend limit exceeded. Registration has been blocked.",
	RegistrationBlocked:    "Too many abandoned registrations. Please contact support.",
	SessionEmailMissing:    "Your registration session was lost. Please start again.",

	InvalidState:   "Invalid state parameter from Google login.",
	UserinfoFailed: "Failed to fetch user info from Google.",
	NoGoogleEmail:  "Email not provided by Google.",

	GenericError: "An unexpected error occurred. Please try again.",
	AccessDenied: "You do not have permission to access this page.",
}

// Text returns the raw catalog entry. Unknown keys fall back to GENERIC_ERROR
// so a missing entry never leaks the symbolic key to the user.
func Text(key Key) string {
	if msg, ok := catalog[key]; ok {
		return msg
	}
	return catalog[GenericError]
}

// Render substitutes {name} placeholders with the given fields.
func Render(key Key, fields map[string]string) string {
	msg := Text(key)
	if len(fields) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(fields)*2)
	for name, value := range fields {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
