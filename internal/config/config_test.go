package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	for _, key := range []string{"PAINT_ENV", "PAINT_ADDRESS", "PAINT_DB_PATH", "PAINT_LOG_LEVEL", "PAINT_ASSISTANT_URL", "PAINT_ASSISTANT_TIMEOUT", "PAINT_ASSISTANT_USER_ID", "PAINT_CORS_ORIGINS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "./paint.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "user-generic", cfg.Assistant.UserID)
	assert.Equal(t, 60*time.Second, cfg.Assistant.Timeout)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.Assistant.Enabled())
}

func TestLoad_ReadsDotEnvAndEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PAINT_DB_PATH", "")
	require.NoError(t, os.Unsetenv("PAINT_DB_PATH"))
	t.Setenv("PAINT_ASSISTANT_URL", "https://example.test/v1/engine")
	t.Setenv("PAINT_ASSISTANT_TIMEOUT", "5s")
	require.NoError(t, os.WriteFile(".env", []byte("PAINT_DB_PATH=/tmp/from-dotenv.db\nPAINT_ASSISTANT_URL=ignored\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-dotenv.db", cfg.DBPath)
	assert.Equal(t, "https://example.test/v1/engine", cfg.Assistant.URL)
	assert.Equal(t, 5*time.Second, cfg.Assistant.Timeout)
}

func TestWarnings(t *testing.T) {
	cfg := Config{AdminEmail: "admin@example.com"}
	warnings := cfg.Warnings()
	assert.Len(t, warnings, 3)
	assert.NotContains(t, warnings, "PAINT_ADMIN_EMAIL is not set")
}
