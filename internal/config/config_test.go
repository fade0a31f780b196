package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEWSOX_API_URL", "NEWSOX_HTTP_TIMEOUT", "NEWSOX_INSECURE_TLS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.API.InsecureTLS)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWSOX_API_URL", "https://news-ox.fly.dev")
	t.Setenv("NEWSOX_HTTP_TIMEOUT", "5s")
	t.Setenv("NEWSOX_INSECURE_TLS", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://news-ox.fly.dev", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.InsecureTLS)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("NEWSOX_API_URL")
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("NEWSOX_API_URL=http://dotenv:8080\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("NEWSOX_API_URL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv:8080", cfg.API.URL)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWSOX_HTTP_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("NEWSOX_HTTP_TIMEOUT", "")
	t.Setenv("NEWSOX_INSECURE_TLS", "maybe")

	_, err = Load()
	assert.Error(t, err)
}
