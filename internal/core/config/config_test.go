package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequired sets the minimum environment needed for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SHIPROCKET_API_EMAIL", "ops@example.com")
	t.Setenv("SHIPROCKET_API_PASSWORD", "secret")
}

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 30, cfg.RequestTimeoutSeconds)
	assert.Equal(t, "https://apiv2.shiprocket.in", cfg.Shiprocket.BaseURL)
	assert.Equal(t, 240*time.Hour, cfg.Shiprocket.TokenTTL())
	assert.Equal(t, "Primary", cfg.Shiprocket.PickupLocation)
	assert.Equal(t, "memory", cfg.CredentialStore.Backend)
	assert.Equal(t, "app_secrets", cfg.CredentialStore.Namespace)
	assert.Equal(t, 50, cfg.Aggregation.FetchSize)
	assert.Equal(t, 10*time.Second, cfg.Aggregation.ProviderTimeout())
	assert.Equal(t, 100, cfg.Aggregation.MaxPageSize)
	assert.Equal(t, 5.0, cfg.Aggregation.ProviderRateLimit)
	assert.Equal(t, 10, cfg.Aggregation.ProviderBurst)
	assert.False(t, cfg.Razorpay.Enabled())
	assert.False(t, cfg.WooCommerce.Enabled())
	assert.False(t, cfg.Proxy.Enabled)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SHIPROCKET_TOKEN_TTL_HOURS", "48")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
	t.Setenv("WC_URL", "https://example.com")
	t.Setenv("WC_CONSUMER_KEY", "ck_123")
	t.Setenv("WC_CONSUMER_SECRET", "cs_123")
	t.Setenv("AGGREGATION_FETCH_SIZE", "25")
	t.Setenv("PROVIDER_RATE_LIMIT", "0.5")
	t.Setenv("PROXY_ENABLED", "true")
	t.Setenv("PROXY_HOSTNAME", "proxy.local")
	t.Setenv("PROXY_PORT", "3128")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "ops@example.com", cfg.Shiprocket.Email)
	assert.Equal(t, 48*time.Hour, cfg.Shiprocket.TokenTTL())
	assert.True(t, cfg.Razorpay.Enabled())
	assert.True(t, cfg.WooCommerce.Enabled())
	assert.Equal(t, "https://example.com", cfg.WooCommerce.URL)
	assert.Equal(t, "ck_123", cfg.WooCommerce.ConsumerKey)
	assert.Equal(t, 25, cfg.Aggregation.FetchSize)
	assert.Equal(t, 0.5, cfg.Aggregation.ProviderRateLimit)
	assert.True(t, cfg.Proxy.Enabled)
	assert.Equal(t, "proxy.local", cfg.Proxy.Hostname)
	assert.Equal(t, 3128, cfg.Proxy.Port)
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
SHIPROCKET_API_EMAIL=file@example.com
SHIPROCKET_API_PASSWORD=file-secret
CREDENTIAL_STORE=redis
REDIS_URL=redis://cache:6379/1
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "file@example.com", cfg.Shiprocket.Email)
	assert.Equal(t, "redis", cfg.CredentialStore.Backend)
	assert.Equal(t, "redis://cache:6379/1", cfg.CredentialStore.RedisURL)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("SHIPROCKET_API_EMAIL", "")
	t.Setenv("SHIPROCKET_API_PASSWORD", "")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration")
}

// TestLoad_CredentialStoreBackend verifies backend selection is validated.
func TestLoad_CredentialStoreBackend(t *testing.T) {
	t.Run("Unsupported", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CREDENTIAL_STORE", "firestore")

		_, err := Load(".")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported CREDENTIAL_STORE")
	})

	t.Run("PostgresWithoutURL", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CREDENTIAL_STORE", "postgres")
		t.Setenv("DATABASE_URL", "")

		_, err := Load(".")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("Postgres", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CREDENTIAL_STORE", "postgres")
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/orders")

		cfg, err := Load(".")
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.CredentialStore.Backend)
	})
}
