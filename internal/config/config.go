package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Identity and profile backends.
const (
	BackendLocal     = "local"
	BackendFirebase  = "firebase"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"ENV"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	DBMaxConns              int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns              int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL                string        `mapstructure:"REDIS_URL"`
	CORSOrigins             []string      `mapstructure:"CORS_ORIGINS"`
	SessionSigningKey       string        `mapstructure:"SESSION_SIGNING_KEY"`
	SessionTTL              time.Duration `mapstructure:"SESSION_TTL"`
	IdentityBackend         string        `mapstructure:"IDENTITY_BACKEND"`
	ProfileBackend          string        `mapstructure:"PROFILE_BACKEND"`
	FirebaseProjectID       string        `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseWebAPIKey       string        `mapstructure:"FIREBASE_WEB_API_KEY"`
	GoogleClientID          string        `mapstructure:"GOOGLE_CLIENT_ID"`
	PHIEncryptionKey        string        `mapstructure:"PHI_ENCRYPTION_KEY"`
	RateLimitRPS            float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst          int           `mapstructure:"RATE_LIMIT_BURST"`
}

var envKeys = []string{
	"PORT",
	"ENV",
	"DATABASE_URL",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"REDIS_URL",
	"CORS_ORIGINS",
	"SESSION_SIGNING_KEY",
	"SESSION_TTL",
	"IDENTITY_BACKEND",
	"PROFILE_BACKEND",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_CREDENTIALS_FILE",
	"FIREBASE_WEB_API_KEY",
	"GOOGLE_CLIENT_ID",
	"PHI_ENCRYPTION_KEY",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("IDENTITY_BACKEND", BackendLocal)
	v.SetDefault("PROFILE_BACKEND", BackendPostgres)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.NeedsPostgres() && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the %s/%s backends", cfg.IdentityBackend, cfg.ProfileBackend)
	}

	if cfg.IsDev() && cfg.SessionSigningKey == "" {
		log.Println("WARNING: SESSION_SIGNING_KEY not set; sessions use a random key and will not survive restart.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// NeedsPostgres reports whether any configured backend stores data in Postgres.
func (c *Config) NeedsPostgres() bool {
	return c.IdentityBackend == BackendLocal || c.ProfileBackend == BackendPostgres
}

// NeedsFirebase reports whether any configured backend talks to Firebase.
func (c *Config) NeedsFirebase() bool {
	return c.IdentityBackend == BackendFirebase || c.ProfileBackend == BackendFirestore
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch c.IdentityBackend {
	case BackendLocal, BackendFirebase:
	default:
		return fmt.Errorf("IDENTITY_BACKEND must be %q or %q, got %q", BackendLocal, BackendFirebase, c.IdentityBackend)
	}
	switch c.ProfileBackend {
	case BackendPostgres, BackendFirestore:
	default:
		return fmt.Errorf("PROFILE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendFirestore, c.ProfileBackend)
	}

	if c.NeedsFirebase() && c.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required when a firebase backend is selected")
	}
	if c.IdentityBackend == BackendFirebase && c.FirebaseWebAPIKey == "" {
		return fmt.Errorf("FIREBASE_WEB_API_KEY is required for password sign-in with IDENTITY_BACKEND=firebase")
	}

	if c.IsProduction() && c.SessionSigningKey == "" {
		return fmt.Errorf("SESSION_SIGNING_KEY is required in production")
	}
	if c.SessionSigningKey != "" && len(c.SessionSigningKey) < 32 {
		return fmt.Errorf("SESSION_SIGNING_KEY must be at least 32 characters, got %d", len(c.SessionSigningKey))
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}

	if c.PHIEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(c.PHIEncryptionKey)
		if err != nil {
			return fmt.Errorf("PHI_ENCRYPTION_KEY is not valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("PHI_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(keyBytes))
		}
	}

	return nil
}

// PHIKey returns the decoded encryption key, or nil when none is configured.
// Call Validate first.
func (c *Config) PHIKey() []byte {
	if c.PHIEncryptionKey == "" {
		return nil
	}
	key, err := hex.DecodeString(c.PHIEncryptionKey)
	if err != nil {
		return nil
	}
	return key
}
