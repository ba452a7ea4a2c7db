package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFrom_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  url: https://auth.example.com
provider:
  apikey: file-key
  model: deepseek-reasoner
db:
  host: db.internal
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.com", cfg.Auth.URL)
	assert.Equal(t, "file-key", cfg.Provider.APIKey)
	assert.Equal(t, "deepseek-reasoner", cfg.Provider.Model)
	assert.Equal(t, "db.internal", cfg.DB.Host)

	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "https://api.deepseek.com", cfg.Provider.BaseURL)
	assert.InDelta(t, 0.7, cfg.Provider.Temperature, 0.0001)
	assert.Equal(t, 500, cfg.Provider.MaxTokens)
	assert.Equal(t, 20, cfg.Chat.HistoryFetchLimit)
	assert.Equal(t, 10, cfg.Chat.HistorySendLimit)
	assert.Equal(t, 3, cfg.Chat.PersistAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Chat.PersistBackoff)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "provider:\n  apikey: file-key\n")
	t.Setenv("DEEPSEEK_API_KEY", "env-key")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("DB_HOST", "env-db")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Provider.APIKey)
	assert.Equal(t, "https://project.supabase.co", cfg.Auth.URL)
	assert.Equal(t, "env-db", cfg.DB.Host)
}

func TestLoadFrom_ExpandsEnvPlaceholders(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: ${FS_TEST_BOT_TOKEN}\n")
	t.Setenv("FS_TEST_BOT_TOKEN", "123:abc")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
}

func TestLoadFrom_MissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Auth.URL")
	assert.Contains(t, err.Error(), "Provider.APIKey")

	cfg.Auth.URL = "https://auth"
	cfg.Provider.APIKey = "k"
	assert.NoError(t, cfg.ValidateServe())
	assert.Error(t, cfg.ValidateTelegram())

	cfg.Telegram.Token = "t"
	assert.NoError(t, cfg.ValidateTelegram())
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "h", Port: "5432", User: "u", Password: "p", DBName: "d", SSLMode: "disable", MaxOpenConns: 4}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable pool_max_conns=4", c.DSN())
}
