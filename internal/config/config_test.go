package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "demo-project")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, "https://api.mercadopago.com", cfg.MercadoPagoBaseURL)
	assert.False(t, cfg.IsRelease())
	assert.False(t, cfg.MailEnabled())
}

func TestLoadConfig_MissingProjectID(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_PROJECT_ID")
}

func TestLoadConfig_RedisRequiresAddress(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "demo-project")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDRESS", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDRESS")
}

func TestLoadConfig_UnknownCacheBackend(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "demo-project")
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_EnvOverridesTTL(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "demo-project")
	t.Setenv("PRODUCT_CACHE_TTL", "90s")
	t.Setenv("GIN_MODE", "release")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.ProductCacheTTL)
	assert.True(t, cfg.IsRelease())
}

func TestLoadConfig_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("FIREBASE_PROJECT_ID: file-project\nCLIENT_URL: http://localhost:5173\n"), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("FIREBASE_PROJECT_ID", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{ClientURL: "http://localhost:3000"}
	assert.Error(t, cfg.ValidateServer())

	cfg.MercadoPagoAccessToken = "TEST-token"
	assert.NoError(t, cfg.ValidateServer())
}
