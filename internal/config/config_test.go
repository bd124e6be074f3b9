package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_ENV", "LOG_LEVEL", "STATIC_DIR",
		"DATABASE_URL", "JWT_SECRET", "IDP_USERINFO_URL",
		"STORAGE_ENDPOINT", "STORAGE_ACCESS_KEY", "STORAGE_SECRET_KEY",
		"STORAGE_BUCKET", "STORAGE_USE_SSL", "STORAGE_PUBLIC_BASE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.StorageUseSSL)
	assert.False(t, cfg.IsProduction())

	// Nothing opted in: every capability is off.
	assert.False(t, cfg.StorageConfigured())
	assert.False(t, cfg.DatabaseConfigured())
	assert.False(t, cfg.AuthConfigured())
}

func TestStorageConfiguredNeedsWholeGroup(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_ENDPOINT", "localhost:9000")
	t.Setenv("STORAGE_ACCESS_KEY", "minio")
	t.Setenv("STORAGE_SECRET_KEY", "minio123")

	cfg := Load()
	assert.False(t, cfg.StorageConfigured(), "bucket name still missing")

	t.Setenv("STORAGE_BUCKET", "photos")
	assert.True(t, Load().StorageConfigured())
}

func TestLocalAuthNeedsSecretAndDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "sekrit")

	cfg := Load()
	assert.False(t, cfg.LocalAuthConfigured(), "no user store to verify against")
	assert.False(t, cfg.AuthConfigured())

	t.Setenv("DATABASE_URL", "postgres://localhost/photos")
	cfg = Load()
	assert.True(t, cfg.LocalAuthConfigured())
	assert.True(t, cfg.AuthConfigured())
}

func TestProviderAuth(t *testing.T) {
	clearEnv(t)
	t.Setenv("IDP_USERINFO_URL", "https://idp.example.com/userinfo")

	cfg := Load()
	assert.True(t, cfg.ProviderConfigured())
	assert.True(t, cfg.AuthConfigured())
	assert.False(t, cfg.LocalAuthConfigured())
}

func TestProductionMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_USE_SSL", "true")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.StorageUseSSL)
}
