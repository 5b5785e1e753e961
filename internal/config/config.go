package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the process-wide deployment configuration, read once at
// startup from the environment.
type Config struct {
	Environment string
	Port        int

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	// JWKSURL enables RS256 verification against a remote key set when
	// set; otherwise tokens are verified with JWTSecret (HS256).
	JWKSURL string

	// EncryptionSecret keys the tenant credential vault. Its absence is a
	// deployment error surfaced as a 500 by the vault stage.
	EncryptionSecret string

	// Platform-default outbound channels, used when a tenant has no
	// credentials of its own or decryption fails.
	PlatformEmailAPIKey string
	PlatformEmailFrom   string
	PlatformSMSSID      string
	PlatformSMSToken    string
	PlatformSMSFrom     string
}

func (c *Config) Production() bool {
	return c.Environment == "production"
}

// Load reads configuration from the environment. In non-production a
// .env file is merged in first if present.
func Load() (*Config, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	if env != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Environment:         env,
		Port:                8080,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWKSURL:             os.Getenv("AUTH_JWKS_URL"),
		EncryptionSecret:    os.Getenv("ENCRYPTION_SECRET"),
		PlatformEmailAPIKey: os.Getenv("PLATFORM_EMAIL_API_KEY"),
		PlatformEmailFrom:   getEnv("PLATFORM_EMAIL_FROM", "no-reply@studiokit.io"),
		PlatformSMSSID:      os.Getenv("PLATFORM_SMS_SID"),
		PlatformSMSToken:    os.Getenv("PLATFORM_SMS_TOKEN"),
		PlatformSMSFrom:     os.Getenv("PLATFORM_SMS_FROM"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.RedisDB = db
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
