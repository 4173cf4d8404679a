package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the server.
type Config struct {
	App      AppConfig
	Provider ProviderConfig
	Session  SessionConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name  string
	Env   string
	Host  string
	Port  string
	Debug bool
}

// ProviderConfig selects and configures the identity provider.
type ProviderConfig struct {
	// Kind is "local" or "firebase".
	Kind                string
	FirebaseProjectID   string
	FirebaseCredentials string
}

// SessionConfig defines the post-signup session token parameters.
type SessionConfig struct {
	SigningKey string
	CookieName string
	TTLHours   int
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:  getEnv("APP_NAME", "coaching-project"),
			Env:   getEnv("APP_ENV", "development"),
			Host:  getEnv("APP_HOST", "0.0.0.0"),
			Port:  getEnv("APP_PORT", "8080"),
			Debug: getEnvAsBool("APP_DEBUG", false),
		},
		Provider: ProviderConfig{
			Kind:                getEnv("AUTH_PROVIDER", "local"),
			FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
			FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		},
		Session: SessionConfig{
			SigningKey: getEnv("SESSION_SIGNING_KEY", "dev-secret"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "session_token"),
			TTLHours:   getEnvAsInt("SESSION_TTL_HOURS", 24),
		},
	}

	switch cfg.Provider.Kind {
	case "local":
	case "firebase":
		if cfg.Provider.FirebaseCredentials == "" {
			return nil, fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required with AUTH_PROVIDER=firebase")
		}
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.Provider.Kind)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
