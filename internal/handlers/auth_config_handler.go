package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"baobyte/internal/messages"
	"baobyte/internal/models"
	"baobyte/internal/services"
)

type AuthConfigHandler struct {
	service services.AuthConfigService
}

func NewAuthConfigHandler(service services.AuthConfigService) *AuthConfigHandler {
	return &AuthConfigHandler{service: service}
}

// @Summary      Read auth feature toggles
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.AuthConfig
// @Router       /admin/auth-config [get]
func (h *AuthConfigHandler) Get(c *gin.Context) {
	cfg, err := h.service.Get()
	if err != nil {
		log.Printf("[authconfig][get] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// @Summary      Update auth feature toggles
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        update  body      models.AuthConfigUpdate  true  "Fields to change"
// @Success      200     {object}  models.AuthConfig
// @Failure      400     {object}  map[string]string
// @Router       /admin/auth-config [put]
func (h *AuthConfigHandler) Update(c *gin.Context) {
	var update models.AuthConfigUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := h.service.Update(update)
	if err != nil {
		log.Printf("[authconfig][update] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.Text(messages.GenericError)})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
