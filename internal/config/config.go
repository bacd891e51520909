package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends selectable through PORTAL_SESSION_BACKEND.
const (
	SessionBackendMemory   = "memory"
	SessionBackendFile     = "file"
	SessionBackendPostgres = "postgres"
)

type Config struct {
	// Portal server
	ServerPort     string
	AllowedOrigins []string

	// Banking backend
	APIBaseURL  string
	HMACSecret  string
	SignLogin   bool
	HTTPTimeout time.Duration

	// Client state
	SessionBackend string
	SessionFile    string
	SessionTTL     time.Duration

	// Database, only read by the postgres session backend
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

// Load reads the configuration from the environment, after applying an
// optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:     getEnvDefault("PORTAL_PORT", "8080"),
		AllowedOrigins: splitList(os.Getenv("PORTAL_ALLOWED_ORIGINS")),
		APIBaseURL:     strings.TrimRight(getEnvDefault("PORTAL_API_BASE_URL", "http://127.0.0.1:8000"), "/"),
		HMACSecret:     os.Getenv("PORTAL_HMAC_SECRET"),
		SessionBackend: getEnvDefault("PORTAL_SESSION_BACKEND", SessionBackendMemory),
		SessionFile:    getEnvDefault("PORTAL_SESSION_FILE", ".portal-session.yaml"),
		DBHost:         getEnvDefault("DB_HOST", "localhost"),
		DBPort:         getEnvDefault("DB_PORT", "5432"),
		DBUser:         getEnvDefault("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnvDefault("DB_NAME", "bank_portal"),
	}

	var err error
	if cfg.SignLogin, err = strconv.ParseBool(getEnvDefault("PORTAL_SIGN_LOGIN", "false")); err != nil {
		return nil, fmt.Errorf("invalid PORTAL_SIGN_LOGIN: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnvDefault("PORTAL_SESSION_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("invalid PORTAL_SESSION_TTL: %w", err)
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(getEnvDefault("PORTAL_HTTP_TIMEOUT", "0")); err != nil {
		return nil, fmt.Errorf("invalid PORTAL_HTTP_TIMEOUT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("PORTAL_API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}

	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendFile, SessionBackendPostgres:
	default:
		return fmt.Errorf("unknown PORTAL_SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.SignLogin && c.HMACSecret == "" {
		return fmt.Errorf("PORTAL_HMAC_SECRET is required when PORTAL_SIGN_LOGIN is set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("PORTAL_SESSION_TTL must be positive")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("PORTAL_HTTP_TIMEOUT must not be negative")
	}
	return nil
}

// GetDBConnectionString builds a lib/pq keyword/value DSN.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
