package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverBolt, cfg.Driver)
	assert.Equal(t, "http://localhost:8080/oauth/token", cfg.ResolvedTokenURL())
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
api:
  base_url: https://api.example.com/v2/
  client_id: mobile
  timeout: 10s
auth:
  refresh_leeway: 1m
  expired_codes: [expired, invalid_token]
storage:
  driver: sqlite
  path: /tmp/finsync.sqlite
  cache_size: 0
log:
  level: debug
  format: json
`)

	cfg, err := Load(LoadOptions{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v2/", cfg.BaseURL)
	assert.Equal(t, "https://api.example.com/v2/oauth/token", cfg.ResolvedTokenURL())
	assert.Equal(t, "mobile", cfg.ClientID)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.Leeway)
	assert.Equal(t, []string{"expired", "invalid_token"}, cfg.ExpiredCodes)
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "/tmp/finsync.sqlite", cfg.DBPath)
	assert.Zero(t, cfg.CacheSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(LoadOptions{ConfigPath: missing})
	require.NoError(t, err)
	assert.Equal(t, Default().BaseURL, cfg.BaseURL)

	_, err = Load(LoadOptions{ConfigPath: missing, ConfigRequired: true})
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "api: [base_url"},
		{name: "bad duration", content: "api:\n  timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", tt.content)
			_, err := Load(LoadOptions{ConfigPath: path})
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "api:\n  base_url: https://file.example.com\n  client_id: from-file\n")
	envFile := writeFile(t, ".env", "FINSYNC_CLIENT_ID=from-dotenv\nFINSYNC_CACHE_SIZE=42\nFINSYNC_API_URL=https://dotenv.example.com\n")

	t.Setenv("FINSYNC_API_URL", "https://env.example.com")
	t.Setenv("FINSYNC_EXPIRED_CODES", "a, b,,c")
	t.Setenv("FINSYNC_REFRESH_LEEWAY", "5s")

	cfg, err := Load(LoadOptions{ConfigPath: path, EnvFile: envFile})
	require.NoError(t, err)

	// переменная окружения важнее .env, .env важнее файла
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, "from-dotenv", cfg.ClientID)
	assert.Equal(t, int64(42), cfg.CacheSize)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.ExpiredCodes)
	assert.Equal(t, 5*time.Second, cfg.Leeway)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		env  map[string]string
		name string
	}{
		{name: "cache size", env: map[string]string{"FINSYNC_CACHE_SIZE": "many"}},
		{name: "timeout", env: map[string]string{"FINSYNC_TIMEOUT": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().ApplyEnv(func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			})
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		modify func(*Config)
		name   string
	}{
		{name: "bad url", modify: func(c *Config) { c.BaseURL = "ftp://example.com" }},
		{name: "no client id", modify: func(c *Config) { c.ClientID = "" }},
		{name: "unknown driver", modify: func(c *Config) { c.Driver = "postgres" }},
		{name: "negative cache", modify: func(c *Config) { c.CacheSize = -1 }},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }},
		{name: "bad log format", modify: func(c *Config) { c.LogFormat = "xml" }},
		{name: "bad revoke url", modify: func(c *Config) { c.RevokeURL = "::" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, SplitList(" x ,y, "))
	assert.Nil(t, SplitList(""))
}
