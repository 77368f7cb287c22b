package routes

import (
	"github.com/gin-gonic/gin"

	"baobyte/internal/handlers"
	"baobyte/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	registerHandler *handlers.RegisterHandler,
	activationHandler *handlers.ActivationHandler,
	passwordResetHandler *handlers.PasswordResetHandler,
	oauthHandler *handlers.OAuthHandler,
	authConfigHandler *handlers.AuthConfigHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.POST("/refresh", authHandler.RefreshToken)

	r.GET("/register", registerHandler.Show)
	r.POST("/register", registerHandler.Register)
	r.POST("/register/confirm", registerHandler.Confirm)
	r.POST("/register/resend", registerHandler.Resend)
	r.GET("/register/status", registerHandler.Status)

	r.GET("/activate", activationHandler.Activate)

	r.POST("/password-reset", passwordResetHandler.Request)
	r.POST("/password-reset/confirm", passwordResetHandler.Confirm)

	r.GET("/auth/google", oauthHandler.GoogleLogin)
	r.GET("/auth/google/callback", oauthHandler.GoogleCallback)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	admin := r.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/auth-config", authConfigHandler.Get)
		admin.PUT("/auth-config", authConfigHandler.Update)
	}

	return r
}
