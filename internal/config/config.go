// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const insecureEncryptionKey = "0000000000000000000000000000000000000000000000000000000000000000"

// SMTPConfig holds the mail relay settings for the password-reset flow.
// Forgot-password is disabled when Host is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

// Enabled reports whether the reset-mail relay is configured.
func (s *SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// OIDCConfig holds external identity provider settings. Optional.
type OIDCConfig struct {
	IssuerURL string
	ClientID  string
}

// Enabled reports whether external bearer tokens are accepted.
func (o *OIDCConfig) Enabled() bool {
	return o.IssuerURL != ""
}

// Config holds the auth service configuration.
type Config struct {
	DBPath        string // path to the SQLite database file
	ListenAddr    string // HTTP listen address (default ":8000")
	EncryptionKey string // 64-char hex string (32-byte AES key) for secrets at rest
	JWTSecret     string // HS256 signing secret for session and reset tokens
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	LogLevel      string // debug, info, warn, error (default "info")
	Env           string // "development" (default) or "production"

	// Bootstrap admin created on first start, with full auth access.
	AdminUser     string
	AdminPassword string

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string

	SMTP SMTPConfig
	OIDC OIDCConfig

	// Warnings collects non-fatal findings from loading; logged by the
	// caller once the logger exists.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables, applying
// defaults and production hardening checks.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:        os.Getenv("LAKEAUTH_DB_PATH"),
		ListenAddr:    os.Getenv("LAKEAUTH_LISTEN_ADDR"),
		EncryptionKey: os.Getenv("LAKEAUTH_ENCRYPTION_KEY"),
		JWTSecret:     os.Getenv("LAKEAUTH_JWT_SECRET"),
		LogLevel:      os.Getenv("LAKEAUTH_LOG_LEVEL"),
		Env:           os.Getenv("LAKEAUTH_ENV"),
		AdminUser:     os.Getenv("LAKEAUTH_ADMIN_USER"),
		AdminPassword: os.Getenv("LAKEAUTH_ADMIN_PASSWORD"),
	}

	cfg.SessionTTL = durationEnv("LAKEAUTH_SESSION_TTL", 24*time.Hour)
	cfg.ResetTokenTTL = durationEnv("LAKEAUTH_RESET_TOKEN_TTL", 20*time.Minute)

	if v := os.Getenv("LAKEAUTH_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("LAKEAUTH_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("LAKEAUTH_CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("LAKEAUTH_SMTP_HOST"),
		Username: os.Getenv("LAKEAUTH_SMTP_USERNAME"),
		Password: os.Getenv("LAKEAUTH_SMTP_PASSWORD"),
		From:     os.Getenv("LAKEAUTH_SMTP_FROM"),
		BaseURL:  os.Getenv("LAKEAUTH_BASE_URL"),
	}
	if v := os.Getenv("LAKEAUTH_SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = n
		}
	}

	cfg.OIDC = OIDCConfig{
		IssuerURL: os.Getenv("LAKEAUTH_OIDC_ISSUER_URL"),
		ClientID:  os.Getenv("LAKEAUTH_OIDC_CLIENT_ID"),
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "lakeauth.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = "admin"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.EncryptionKey == "" {
		cfg.EncryptionKey = insecureEncryptionKey
		cfg.Warnings = append(cfg.Warnings, "LAKEAUTH_ENCRYPTION_KEY not set, using insecure default")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
		cfg.Warnings = append(cfg.Warnings, "LAKEAUTH_JWT_SECRET not set, using insecure default")
	}
	if cfg.SMTP.Host != "" && cfg.SMTP.From == "" {
		return nil, fmt.Errorf("LAKEAUTH_SMTP_FROM is required when LAKEAUTH_SMTP_HOST is set")
	}
	if cfg.OIDC.Enabled() && cfg.OIDC.ClientID == "" {
		return nil, fmt.Errorf("LAKEAUTH_OIDC_CLIENT_ID is required when LAKEAUTH_OIDC_ISSUER_URL is set")
	}

	// Production mode: insecure defaults are fatal.
	if cfg.IsProduction() {
		if cfg.EncryptionKey == insecureEncryptionKey {
			return nil, fmt.Errorf("LAKEAUTH_ENCRYPTION_KEY must be set in production")
		}
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("LAKEAUTH_JWT_SECRET must be set in production")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production")
		}
	}

	return cfg, nil
}

func durationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Real environment variables take precedence.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
