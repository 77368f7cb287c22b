package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"baobyte/internal/messages"
	"baobyte/internal/services"
	"baobyte/internal/token"
)

type ActivationHandler struct {
	activation *services.ActivationService
}

func NewActivationHandler(activation *services.ActivationService) *ActivationHandler {
	return &ActivationHandler{activation: activation}
}

// @Summary      Activate account by emailed link
// @Tags         Registration
// @Produce      json
// @Param        token  query     string  true  "Signed activation token"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Router       /activate [get]
func (h *ActivationHandler) Activate(c *gin.Context) {
	tok := c.Query("token")
	if tok == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.InvalidToken)})
		return
	}

	_, err := h.activation.Activate(tok)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": messages.Text(messages.ActivationSuccess)})
	case errors.Is(err, services.ErrAlreadyActivated):
		c.JSON(http.StatusOK, gin.H{"message": messages.Text(messages.VerifiedMail)})
	case errors.Is(err, token.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.TokenExpired)})
	case errors.Is(err, token.ErrBadSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.Text(messages.InvalidToken)})
	default:
		log.Printf("[activation][redeem] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
	}
}
