package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	OIDC     OIDCConfig
	Razorpay RazorpayConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// BackendConfig points at the Evantra REST API that owns all durable state.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// OIDCConfig describes the identity provider (Keycloak realm) used for
// sign-in. RedirectURL must match the client's registered callback.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type SessionConfig struct {
	Secret string
	MaxAge int
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8080"), "/"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 30*time.Second),
		},
		OIDC: OIDCConfig{
			IssuerURL:    strings.TrimRight(getEnv("OIDC_ISSUER_URL", ""), "/"),
			ClientID:     getEnv("OIDC_CLIENT_ID", "evantra-web"),
			ClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/callback"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			MaxAge: getEnvAsInt("SESSION_MAX_AGE", 86400*30), // 30 days
		},
	}

	if config.OIDC.IssuerURL == "" {
		return nil, fmt.Errorf("OIDC_ISSUER_URL must be set")
	}

	return config, nil
}

// Addr returns the host:port the server listens on.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
