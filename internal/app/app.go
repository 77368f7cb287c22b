package app

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "baobyte/docs"
	"baobyte/internal/config"
	"baobyte/internal/handlers"
	"baobyte/internal/middleware"
	"baobyte/internal/registration"
	"baobyte/internal/repositories"
	"baobyte/internal/routes"
	"baobyte/internal/services"
	"baobyte/internal/session"
	"baobyte/internal/token"
)

// server-side session values outlive the longest verification window but not
// the cookie itself
const sessionTTL = 24 * time.Hour

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTKey(cfg.Secrets.JWTKey)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	// === Redis / sessions ===
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	sessions := session.NewRedisStore(redisClient, sessionTTL)

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	resetLogRepo := repositories.NewPasswordResetLogRepository(db)
	authConfigRepo := repositories.NewAuthConfigRepository(db)

	// === Services ===
	codec := token.NewCodec(cfg.Secrets.SigningKey)
	authService := services.NewAuthService(cfg.Secrets.JWTKey)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
	)
	captchaService := services.NewCaptchaService(cfg.Recaptcha.SecretKey, cfg.Recaptcha.DryRun)
	userService := services.NewUserService(userRepo, emailService)
	authConfigService := services.NewAuthConfigService(authConfigRepo)
	activationService := services.NewActivationService(
		userService,
		emailService,
		codec,
		cfg.Server.SiteDomain,
		time.Duration(cfg.Registration.ActivationTokenExpiry)*time.Second,
	)
	passwordResetService := services.NewPasswordResetService(
		userRepo,
		resetLogRepo,
		emailService,
		authService,
		codec,
		cfg.Server.SiteDomain,
		time.Duration(cfg.PasswordReset.TokenExpiry)*time.Second,
		cfg.PasswordReset.MaxAttempts,
		time.Duration(cfg.PasswordReset.BlockWindowMinutes)*time.Minute,
	)
	oauthService := services.NewOAuthService(
		cfg.GoogleOAuth.ClientID,
		cfg.GoogleOAuth.ClientSecret,
		cfg.GoogleOAuth.RedirectURL,
		sessions,
	)

	// === Registration flow ===
	machine := registration.NewMachine(registration.Limits{
		MaxAttempts:     cfg.Registration.MaxAttempts,
		MaxResendCount:  cfg.Registration.MaxResendCount,
		MaxAbandonCount: cfg.Registration.MaxAbandonCount,
		CodeLength:      cfg.Registration.TokenSuffixLength,
		CodeExpiry:      time.Duration(cfg.Registration.ActivationTokenExpiry) * time.Second,
	})
	flow := registration.NewFlow(machine, sessions, captchaService, authService, userService, emailService)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, captchaService, activationService, sessions)
	registerHandler := handlers.NewRegisterHandler(flow)
	activationHandler := handlers.NewActivationHandler(activationService)
	passwordResetHandler := handlers.NewPasswordResetHandler(passwordResetService, captchaService, authConfigService)
	oauthHandler := handlers.NewOAuthHandler(oauthService, userService, authHandler, authConfigService)
	authConfigHandler := handlers.NewAuthConfigHandler(authConfigService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(middleware.SessionMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		registerHandler,
		activationHandler,
		passwordResetHandler,
		oauthHandler,
		authConfigHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
