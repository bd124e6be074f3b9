// Package config loads application configuration from environment variables.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service. It is built once
// at start-up and treated as immutable afterwards; handlers never read the
// environment directly.
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	StaticDir string

	// Metadata store (optional). When empty the service runs in
	// bucket-only mode and the metadata routes answer 503.
	DatabaseURL string

	// Local token verification (optional).
	JWTSecret string

	// Identity provider verification (optional). When set, bearer tokens
	// are verified by calling the provider's userinfo endpoint instead of
	// checking a local signature.
	IdentityProviderURL string

	// Object storage (S3-compatible: MinIO locally, AWS S3 in production).
	// The whole group is required for uploads; when incomplete the upload,
	// list, and delete routes answer 503.
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageUseSSL     bool
	StoragePublicBase string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		StaticDir: os.Getenv("STATIC_DIR"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:           os.Getenv("JWT_SECRET"),
		IdentityProviderURL: os.Getenv("IDP_USERINFO_URL"),

		StorageEndpoint:   os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:  os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:  os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:     os.Getenv("STORAGE_BUCKET"),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePublicBase: os.Getenv("STORAGE_PUBLIC_BASE"),
	}
}

// StorageConfigured reports whether the object storage group is complete.
func (c *Config) StorageConfigured() bool {
	return c.StorageEndpoint != "" && c.StorageAccessKey != "" &&
		c.StorageSecretKey != "" && c.StorageBucket != ""
}

// DatabaseConfigured reports whether the metadata store is enabled.
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != ""
}

// ProviderConfigured reports whether identity provider verification is enabled.
func (c *Config) ProviderConfigured() bool {
	return c.IdentityProviderURL != ""
}

// LocalAuthConfigured reports whether local JWT verification is enabled.
// It needs both the signing secret and the user store.
func (c *Config) LocalAuthConfigured() bool {
	return c.JWTSecret != "" && c.DatabaseConfigured()
}

// AuthConfigured reports whether any token verification strategy is available.
func (c *Config) AuthConfigured() bool {
	return c.ProviderConfigured() || c.LocalAuthConfigured()
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
