package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"baobyte/internal/authz"
)

// RequireAdmin guards the admin surface (feature toggles).
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("role_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no role in context"})
			return
		}
		roleID, _ := v.(int)
		if !authz.IsAdmin(roleID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
