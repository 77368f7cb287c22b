package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"baobyte/internal/messages"
	"baobyte/internal/middleware"
	"baobyte/internal/models"
	"baobyte/internal/services"
	"baobyte/internal/session"
	"baobyte/internal/utils"
)

const (
	loginAttemptsKey = "login_attempts"
	// captcha becomes mandatory from this many failed logins
	captchaAfterFailures = 3

	refreshTTLRemembered = 30 * 24 * time.Hour
	refreshTTLDefault    = 24 * time.Hour
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
	captcha     services.CaptchaService
	activation  *services.ActivationService
	sessions    session.Store
}

func NewAuthHandler(
	userService services.UserService,
	authService services.AuthService,
	captcha services.CaptchaService,
	activation *services.ActivationService,
	sessions session.Store,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		captcha:     captcha,
		activation:  activation,
		sessions:    sessions,
	}
}

func (h *AuthHandler) failedAttempts(ctx context.Context, sid string) int {
	raw, err := h.sessions.Get(ctx, sid, loginAttemptsKey)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(raw)
	return n
}

func (h *AuthHandler) bumpFailedAttempts(ctx context.Context, sid string) {
	n := h.failedAttempts(ctx, sid) + 1
	if err := h.sessions.Set(ctx, sid, loginAttemptsKey, strconv.Itoa(n)); err != nil {
		log.Printf("[auth][login] store attempts failed: %v", err)
	}
	log.Printf("[auth][login] failed attempts for session: %d", n)
}

// @Summary      Log in
// @Description  Authenticates by email and password, returns access and refresh tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sid := middleware.SessionID(c)
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	log.Printf("[auth][login] attempt email=%q", email)

	// after repeated failures the captcha is no longer optional
	if h.failedAttempts(ctx, sid) >= captchaAfterFailures {
		ok, err := h.captcha.Verify(ctx, req.CaptchaResponse, c.ClientIP())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":            messages.Text(messages.CaptchaRequired),
				"captcha_required": true,
			})
			return
		}
	}

	user, err := h.userService.GetUserByEmail(email)
	if err != nil || user == nil || !h.authService.CheckPassword(user.PasswordHash, strings.TrimSpace(req.Password)) {
		h.bumpFailedAttempts(ctx, sid)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":            messages.Text(messages.LoginFailed),
			"captcha_required": h.failedAttempts(ctx, sid) >= captchaAfterFailures,
		})
		return
	}

	if !user.IsVerified {
		// nudge the activation link along; failure to send is not fatal here
		if err := h.activation.SendActivationLink(user); err != nil {
			log.Printf("[auth][login] activation resend to %s failed: %v", user.Email, err)
		}
		c.JSON(http.StatusForbidden, gin.H{"error": messages.Text(messages.AccountNotActivated)})
		return
	}

	tokens, err := h.issueTokens(user, req.Remember)
	if err != nil {
		log.Printf("[auth][login] token issue failed for userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
		return
	}

	if err := h.sessions.Delete(ctx, sid, loginAttemptsKey); err != nil {
		log.Printf("[auth][login] reset attempts failed: %v", err)
	}
	log.Printf("[auth][login] success userID=%d remember=%v", user.ID, req.Remember)

	c.JSON(http.StatusOK, gin.H{
		"message": messages.Text(messages.LoginSuccess),
		"user":    user, // PasswordHash is json:"-", never serialized
		"tokens":  tokens,
	})
}

func (h *AuthHandler) issueTokens(user *models.User, remember bool) (gin.H, error) {
	access, err := h.authService.NewAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRandomToken(32)
	if err != nil {
		return nil, err
	}
	ttl := refreshTTLDefault
	if remember {
		ttl = refreshTTLRemembered
	}
	if err := h.userService.UpdateRefresh(user.ID, refresh, time.Now().Add(ttl)); err != nil {
		return nil, err
	}
	return gin.H{"access_token": access, "refresh_token": refresh}, nil
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	old := strings.TrimSpace(req.RefreshToken)

	user, err := h.userService.GetByRefreshToken(old)
	if err != nil || user == nil || user.RefreshToken == nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	// rotate
	newRT, err := utils.NewRandomToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	rotated, err := h.userService.RotateRefresh(old, newRT, time.Now().Add(refreshTTLDefault))
	if err != nil || rotated == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	access, err := h.authService.NewAccessToken(rotated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access, "refresh_token": newRT})
}

// Logout clears the per-session counters and, when the client sends its
// refresh token along, revokes it. Access tokens simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req) // body is optional

	if tok := strings.TrimSpace(req.RefreshToken); tok != "" {
		if user, err := h.userService.GetByRefreshToken(tok); err == nil && user != nil {
			if err := h.userService.ClearRefresh(user.ID); err != nil {
				log.Printf("[auth][logout] clear refresh for userID=%d failed: %v", user.ID, err)
			}
		}
	}

	sid := middleware.SessionID(c)
	for _, key := range []string{loginAttemptsKey} {
		if err := h.sessions.Delete(c.Request.Context(), sid, key); err != nil && !errors.Is(err, session.ErrNotFound) {
			log.Printf("[auth][logout] clear %s failed: %v", key, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": messages.Text(messages.LogoutSuccess)})
}
