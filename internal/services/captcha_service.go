package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaService validates a reCAPTCHA response server-side. A transport
// failure is reported as an error, distinct from a clean "not a human".
type CaptchaService interface {
	Verify(ctx context.Context, userResponse, remoteIP string) (bool, error)
}

type captchaService struct {
	secretKey string
	dryRun    bool
	client    *http.Client
}

func NewCaptchaService(secretKey string, dryRun bool) CaptchaService {
	return &captchaService{
		secretKey: secretKey,
		dryRun:    dryRun,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *captchaService) Verify(ctx context.Context, userResponse, remoteIP string) (bool, error) {
	if s.dryRun {
		return true, nil
	}
	if strings.TrimSpace(userResponse) == "" {
		return false, nil
	}

	form := url.Values{
		"secret":   {s.secretKey},
		"response": {userResponse},
		"remoteip": {remoteIP},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recaptchaVerifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verify: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("captcha decode: %w", err)
	}
	if !result.Success && len(result.ErrorCodes) > 0 {
		log.Printf("[captcha][verify] rejected: codes=%v", result.ErrorCodes)
	}
	return result.Success, nil
}
