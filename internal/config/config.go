package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment           string
	LogJSON               bool
	ServerAddress         string
	BackendURL            string // Backend origin every forwarded route is rewritten to
	FrontendURL           string // Our own public origin; the session client calls it same-origin
	RoutesFile            string // Optional YAML route table replacing the defaults
	MaxBodyBytes          int64
	Session               SessionConfig
	ConnectionTestTimeout time.Duration // Timeout for the connectivity self-test only
}

// SessionConfig holds visitor session configuration
type SessionConfig struct {
	Secret        string
	SecureCookie  bool
	IdleTimeout   time.Duration
	SweepSchedule string
}

var (
	ErrInvalidBackendURL  = errors.New("BACKEND_URL must be an absolute http(s) URL")
	ErrInvalidFrontendURL = errors.New("FRONTEND_URL must be an absolute http(s) URL")
)

const (
	defaultBackendURL  = "http://localhost:8000"
	defaultFrontendURL = "http://localhost:3000"
	defaultMaxBody     = 10 << 20
)

// DefaultSessionSecret is the development fallback for SESSION_SECRET
const DefaultSessionSecret = "change-me-in-production-secret-key"

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	environment := getEnv("APP_ENV", "production")

	// Default: JSON in production, text in development
	logJSON := environment != "development"
	if v := os.Getenv("LOG_JSON"); v != "" {
		logJSON = v == "true"
	}

	backendURL, err := parseOrigin(getEnv("BACKEND_URL", defaultBackendURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackendURL, err)
	}
	frontendURL, err := parseOrigin(getEnv("FRONTEND_URL", defaultFrontendURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrontendURL, err)
	}

	return &Config{
		Environment:   environment,
		LogJSON:       logJSON,
		ServerAddress: getEnv("SERVER_ADDRESS", ":3000"),
		BackendURL:    backendURL,
		FrontendURL:   frontendURL,
		RoutesFile:    os.Getenv("ROUTES_FILE"),
		MaxBodyBytes:  int64(getEnvInt("MAX_BODY_BYTES", defaultMaxBody)),
		Session: SessionConfig{
			Secret:        getEnv("SESSION_SECRET", DefaultSessionSecret),
			SecureCookie:  getEnv("SECURE_COOKIE", "false") == "true",
			IdleTimeout:   time.Duration(getEnvInt("SESSION_IDLE_TIMEOUT_MIN", 60)) * time.Minute,
			SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),
		},
		ConnectionTestTimeout: time.Duration(getEnvInt("CONNECTION_TEST_TIMEOUT_SEC", 5)) * time.Second,
	}, nil
}

// parseOrigin validates an origin URL and drops any trailing slash so paths can be appended
func parseOrigin(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("got %q", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the positive integer in key, or defaultValue when unset or invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
