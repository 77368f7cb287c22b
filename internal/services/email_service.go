package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"baobyte/internal/messages"
)

// EmailService is the outbound mail adapter. Sends are synchronous: callers
// must see the transport error before touching any session state.
type EmailService interface {
	SendVerificationCode(email, code string, expiryMinutes int) error
	SendActivationEmail(email, activationURL string) error
	SendPasswordResetEmail(email, resetURL string) error
	SendWelcomeEmail(email, username string) error
}

type emailService struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, fromName string) EmailService {
	return &emailService{
		dialer:   gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:     fromEmail,
		fromName: fromName,
	}
}

func (s *emailService) send(to, subject, htmlBody, textBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func (s *emailService) SendVerificationCode(email, code string, expiryMinutes int) error {
	html := fmt.Sprintf(`
		<h3>Verify your email address</h3>
		<p>Enter the following code on the registration page:</p>
		<p style="font-size:24px;letter-spacing:3px"><strong>%s</strong></p>
		<p>The code expires in %d minutes.</p>
		<p>If you did not start a registration, you can ignore this email.</p>
	`, code, expiryMinutes)
	text := fmt.Sprintf(
		"Verify your email address\n\nYour verification code: %s\nThe code expires in %d minutes.\n",
		code, expiryMinutes)
	return s.send(email, messages.Text(messages.ActivationSubject), html, text)
}

func (s *emailService) SendActivationEmail(email, activationURL string) error {
	html := fmt.Sprintf(`
		<h3>Activate your account</h3>
		<p>Click the link below to activate your account:</p>
		<p><a href="%s">%s</a></p>
		<p>The link expires shortly, so do not wait too long.</p>
	`, activationURL, activationURL)
	text := fmt.Sprintf("Activate your account\n\nOpen this link:\n%s\n", activationURL)
	return s.send(email, messages.Text(messages.ActivationSubject), html, text)
}

func (s *emailService) SendPasswordResetEmail(email, resetURL string) error {
	html := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p><a href="%s">Reset your password</a></p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, resetURL)
	text := fmt.Sprintf("Password reset requested\n\nOpen this link to reset your password:\n%s\n", resetURL)
	return s.send(email, "Password reset request", html, text)
}

func (s *emailService) SendWelcomeEmail(email, username string) error {
	html := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been activated. We're excited to have you on board.</p>
	`, username)
	text := fmt.Sprintf("Welcome, %s!\n\nYour account has been activated.\n", username)
	return s.send(email, "Welcome aboard", html, text)
}
