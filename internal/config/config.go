package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type RegistrationConfig struct {
	MaxAttempts           int `yaml:"max_attempts"`            // wrong codes per issued code
	MaxResendCount        int `yaml:"max_resend_count"`        // resends per registration
	MaxAbandonCount       int `yaml:"max_abandon_count"`       // abandoned registrations per session
	TokenSuffixLength     int `yaml:"token_suffix_length"`     // verification code length
	ActivationTokenExpiry int `yaml:"activation_token_expiry"` // seconds
}

type PasswordResetConfig struct {
	MaxAttempts        int `yaml:"max_attempts"`         // reset requests per email per window
	BlockWindowMinutes int `yaml:"block_window_minutes"` // request-counting window
	TokenExpiry        int `yaml:"token_expiry"`         // seconds the reset link stays valid
}

type RecaptchaConfig struct {
	SiteKey   string `yaml:"site_key"`
	SecretKey string `yaml:"secret_key"`
	DryRun    bool   `yaml:"dry_run"` // accept any response, local dev only
}

type GoogleOAuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

type Config struct {
	Server struct {
		Port       int    `yaml:"port"`
		SiteDomain string `yaml:"site_domain"` // used in emailed links
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`
	Secrets struct {
		JWTKey     string `yaml:"jwt_key"`
		SigningKey string `yaml:"signing_key"` // HMAC secret for activation/reset tokens
	} `yaml:"secrets"`
	Registration  RegistrationConfig  `yaml:"registration"`
	PasswordReset PasswordResetConfig `yaml:"password_reset"`
	Recaptcha     RecaptchaConfig     `yaml:"recaptcha"`
	GoogleOAuth   GoogleOAuthConfig   `yaml:"google_oauth"`
}

func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open config: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config: " + err.Error())
	}

	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Registration.MaxAttempts <= 0 {
		cfg.Registration.MaxAttempts = 3
	}
	if cfg.Registration.MaxResendCount <= 0 {
		cfg.Registration.MaxResendCount = 3
	}
	if cfg.Registration.MaxAbandonCount <= 0 {
		cfg.Registration.MaxAbandonCount = 3
	}
	if cfg.Registration.TokenSuffixLength <= 0 {
		cfg.Registration.TokenSuffixLength = 15
	}
	if cfg.Registration.ActivationTokenExpiry <= 0 {
		cfg.Registration.ActivationTokenExpiry = 300 // 5 minutes
	}
	if cfg.PasswordReset.MaxAttempts <= 0 {
		cfg.PasswordReset.MaxAttempts = 3
	}
	if cfg.PasswordReset.BlockWindowMinutes <= 0 {
		cfg.PasswordReset.BlockWindowMinutes = 15
	}
	if cfg.PasswordReset.TokenExpiry <= 0 {
		cfg.PasswordReset.TokenExpiry = 3600 // 1 hour
	}
}
