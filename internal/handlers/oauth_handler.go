package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"baobyte/internal/messages"
	"baobyte/internal/middleware"
	"baobyte/internal/services"
)

type OAuthHandler struct {
	oauth      services.OAuthService
	users      services.UserService
	auth       *AuthHandler
	authConfig services.AuthConfigService
}

func NewOAuthHandler(oauth services.OAuthService, users services.UserService, auth *AuthHandler, authConfig services.AuthConfigService) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, users: users, auth: auth, authConfig: authConfig}
}

// @Summary      Start Google login
// @Tags         Auth
// @Produce      json
// @Success      302
// @Failure      404  {object}  map[string]string
// @Router       /auth/google [get]
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	if !h.authConfig.GoogleLoginEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.Text(messages.AccessDenied)})
		return
	}

	url, err := h.oauth.AuthURL(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		log.Printf("[oauth][start] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	if !h.authConfig.GoogleLoginEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.Text(messages.AccessDenied)})
		return
	}

	info, err := h.oauth.Exchange(c.Request.Context(), middleware.SessionID(c), c.Query("state"), c.Query("code"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidOAuthState) {
			c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.InvalidState)})
			return
		}
		log.Printf("[oauth][callback] error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": messages.Text(messages.UserinfoFailed)})
		return
	}
	if info.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.NoGoogleEmail)})
		return
	}

	user, err := h.users.GetOrCreateGoogleUser(info.Email, info.GivenName, info.FamilyName)
	if err != nil {
		log.Printf("[oauth][callback] user materialization failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
		return
	}

	tokens, err := h.auth.issueTokens(user, false)
	if err != nil {
		log.Printf("[oauth][callback] token issue failed for userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
		return
	}
	log.Printf("[oauth][callback] login success userID=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": messages.Text(messages.LoginSuccess),
		"user":    user,
		"tokens":  tokens,
	})
}
