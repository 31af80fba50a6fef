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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
bot:
  cancel_command: cancel2
status:
  interval: 10s
  peer_timeout: 500ms
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cancel2", cfg.Bot.CancelCommand)
	assert.Equal(t, Default().Bot.Banner, cfg.Bot.Banner)
	assert.Equal(t, 10*time.Second, cfg.Status.Interval)
	assert.Equal(t, 500*time.Millisecond, cfg.Status.PeerTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "bot:\n  cancel_command: fromfile\n")
	t.Setenv("MIRRORBOT_BOT_CANCEL_COMMAND", "fromenv")
	t.Setenv("MIRRORBOT_STATUS_INTERVAL", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Bot.CancelCommand)
	assert.Equal(t, time.Minute, cfg.Status.Interval)
}

func TestLoad_EnvFile(t *testing.T) {
	const key = "MIRRORBOT_BOT_BANNER"
	t.Cleanup(func() { os.Unsetenv(key) })
	envPath := writeFile(t, "test.env", key+"=from dotenv\n")
	path := writeFile(t, "config.yaml", "logging:\n  level: warn\n")

	cfg, err := Load(path, envPath)
	require.NoError(t, err)
	assert.Equal(t, "from dotenv", cfg.Bot.Banner)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "bot: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty cancel command", func(c *Config) { c.Bot.CancelCommand = "/" }},
		{"cancel command with space", func(c *Config) { c.Bot.CancelCommand = "can cel" }},
		{"zero interval", func(c *Config) { c.Status.Interval = 0 }},
		{"negative peer timeout", func(c *Config) { c.Status.PeerTimeout = -time.Second }},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	assert.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
