// Package config loads the application configuration in one place.
// Values come from environment variables; a .env file is honoured in
// development.
//
// Config groups the settings by concern so the rest of the code receives one
// value instead of calling os.Getenv all over the place.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported DATABASE_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config carries every configuration value.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Log      LogConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration // deadline applied to every request
	// TrustedProxies lists the proxy addresses or CIDRs whose
	// X-Forwarded-For / X-Real-IP headers are believed. Empty trusts none.
	TrustedProxies []string
}

// DatabaseConfig selects and locates the database.
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	Path   string // SQLite file path (e.g. ./data/shopapi.db)
	URL    string // PostgreSQL DSN, required for the postgres driver
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string // signing key, keep it secret
	Issuer string
	TTL    time.Duration
}

// AuthConfig holds password and login settings.
type AuthConfig struct {
	PasswordIterations int // PBKDF2 work factor for new hashes
	LoginMaxAttempts   int
	LoginWindow        time.Duration
}

// UploadConfig holds image upload settings.
type UploadConfig struct {
	Dir        string // where images are written
	MaxSize    int64  // bytes (default: 5 MiB)
	AllowWebP  bool
	PublicPath string // URL prefix the images are served under
}

// LogConfig holds zap settings.
type LogConfig struct {
	Level       string
	Development bool
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load builds a Config from the environment.
// A .env file is loaded first when present; in production it usually is not
// and the real environment is used.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}

	timeoutSeconds, err := getInt("REQUEST_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	ttlHours, err := getInt("JWT_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}

	iterations, err := getInt("PASSWORD_ITERATIONS", 1_000_000)
	if err != nil {
		return nil, err
	}

	maxAttempts, err := getInt("LOGIN_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	windowMinutes, err := getInt("LOGIN_WINDOW_MINUTES", 2)
	if err != nil {
		return nil, err
	}

	maxSize, err := strconv.ParseInt(getEnv("UPLOAD_MAX_SIZE", "5242880"), 10, 64) // 5 MiB
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
	}

	allowWebP, err := getBool("UPLOAD_ALLOW_WEBP", false)
	if err != nil {
		return nil, err
	}

	logDev, err := getBool("LOG_DEVELOPMENT", false)
	if err != nil {
		return nil, err
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			RequestTimeout: time.Duration(timeoutSeconds) * time.Second,
			TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
			Path:   getEnv("DATABASE_PATH", "./data/shopapi.db"),
			URL:    getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
			Issuer: getEnv("JWT_ISSUER", "shopapi"),
			TTL:    time.Duration(ttlHours) * time.Hour,
		},
		Auth: AuthConfig{
			PasswordIterations: iterations,
			LoginMaxAttempts:   maxAttempts,
			LoginWindow:        time.Duration(windowMinutes) * time.Minute,
		},
		Upload: UploadConfig{
			Dir:        getEnv("UPLOAD_DIR", "./data/uploads"),
			MaxSize:    maxSize,
			AllowWebP:  allowWebP,
			PublicPath: "/uploads/",
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: logDev,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field rules that a single parse cannot.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (use sqlite or postgres)", c.Database.Driver)
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	if c.Auth.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// Addr returns the listen address (e.g. "0.0.0.0:8080").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv returns the environment variable or fallback when it is unset.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
