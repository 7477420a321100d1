package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/twitter-clone/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	noEnvFile(t)
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "Users", cfg.UsersTable)
	assert.Equal(t, "Tweets", cfg.TweetsTable)
	assert.Equal(t, config.BackendDynamoDB, cfg.StoreBackend)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.StoreMaxAttempts)
	assert.False(t, cfg.CreateTables)
}

func TestLoad_Overrides(t *testing.T) {
	noEnvFile(t)
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("USERS_TABLE", "dev-users")
	t.Setenv("TWEETS_TABLE", "dev-tweets")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("STORE_CREATE_TABLES", "true")
	t.Setenv("STORE_MAX_ATTEMPTS", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-users", cfg.UsersTable)
	assert.Equal(t, "dev-tweets", cfg.TweetsTable)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, config.BackendMemory, cfg.StoreBackend)
	assert.True(t, cfg.CreateTables)
	assert.Equal(t, 1, cfg.StoreMaxAttempts)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	noEnvFile(t)
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "soon")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing secret",
			env:  map[string]string{"SECRET_KEY": ""},
		},
		{
			name: "unknown backend",
			env:  map[string]string{"SECRET_KEY": "s", "STORE_BACKEND": "redis"},
		},
		{
			name: "unknown log format",
			env:  map[string]string{"SECRET_KEY": "s", "LOG_FORMAT": "xml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noEnvFile(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SECRET_KEY=from-file\nUSERS_TABLE=file-users\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// godotenv does not override variables that are already set.
	t.Setenv("SECRET_KEY", "")
	os.Unsetenv("SECRET_KEY")
	t.Setenv("USERS_TABLE", "")
	os.Unsetenv("USERS_TABLE")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.SecretKey)
	assert.Equal(t, "file-users", cfg.UsersTable)
}
