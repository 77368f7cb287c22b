package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"baobyte/internal/messages"
	"baobyte/internal/models"
	"baobyte/internal/services"
	"baobyte/internal/token"
)

type PasswordResetHandler struct {
	resets     services.PasswordResetService
	captcha    services.CaptchaService
	authConfig services.AuthConfigService
}

func NewPasswordResetHandler(resets services.PasswordResetService, captcha services.CaptchaService, authConfig services.AuthConfigService) *PasswordResetHandler {
	return &PasswordResetHandler{resets: resets, captcha: captcha, authConfig: authConfig}
}

// @Summary      Request a password reset link
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.PasswordResetRequest  true  "Account email"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Router       /password-reset [post]
func (h *PasswordResetHandler) Request(c *gin.Context) {
	if !h.authConfig.PasswordResetEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.Text(messages.AccessDenied)})
		return
	}

	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.captcha.Verify(c.Request.Context(), req.CaptchaResponse, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.CaptchaInvalid)})
		return
	}

	if err := h.resets.RequestReset(req.Email, c.ClientIP(), c.Request.UserAgent()); err != nil {
		if errors.Is(err, services.ErrResetThrottled) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": messages.Text(messages.GenericError)})
			return
		}
		log.Printf("[password-reset][request] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
		return
	}
	// identical answer whether or not the account exists
	c.JSON(http.StatusOK, gin.H{"message": messages.Text(messages.PasswordResetSent)})
}

// @Summary      Set a new password using a reset link
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.PasswordResetConfirmRequest  true  "Token and new password"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Router       /password-reset/confirm [post]
func (h *PasswordResetHandler) Confirm(c *gin.Context) {
	if !h.authConfig.PasswordResetEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.Text(messages.AccessDenied)})
		return
	}

	var req models.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.PasswordMismatch)})
		return
	}

	err := h.resets.ResetPassword(req.Token, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": messages.Text(messages.PasswordChanged)})
	case errors.Is(err, services.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, token.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.TokenExpired)})
	case errors.Is(err, token.ErrBadSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.InvalidToken)})
	default:
		log.Printf("[password-reset][confirm] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
	}
}
