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
	path := filepath.Join(t.TempDir(), "cvbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "cvbot.db", cfg.Store.SQLitePath)
	assert.Equal(t, DriverMemory, cfg.Session.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "pdflatex", cfg.Render.LaTeXBinary)
	assert.Equal(t, 2, cfg.Render.Passes)
	assert.Equal(t, time.Minute, cfg.Render.Timeout)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: abc
store:
  driver: firebase
firebase:
  credentials_file: key.json
  database_url: https://example.firebaseio.com
session:
  driver: redis
  redis_url: redis://localhost:6379/0
  ttl: 2h
render:
  timeout: 90s
metrics:
  addr: ":9090"
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Bot.Token)
	assert.Equal(t, DriverFirebase, cfg.Store.Driver)
	assert.Equal(t, "key.json", cfg.Firebase.CredentialsFile)
	assert.Equal(t, DriverRedis, cfg.Session.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 90*time.Second, cfg.Render.Timeout)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "bot:\n  token: from-file\n")
	t.Setenv("CVBOT_BOT_TOKEN", "from-env")
	t.Setenv("CVBOT_RENDER_PASSES", "3")
	t.Setenv("CVBOT_METRICS_ADDR", ":2112")

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Bot.Token)
	assert.Equal(t, 3, cfg.Render.Passes)
	assert.Equal(t, ":2112", cfg.Metrics.Addr)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("", false)
		require.NoError(t, err)
		cfg.Bot.Token = "abc"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Bot.Token = "" }, "bot.token"},
		{"unknown store", func(c *Config) { c.Store.Driver = "mongo" }, "store.driver"},
		{"firebase without url", func(c *Config) { c.Store.Driver = DriverFirebase }, "firebase"},
		{"unknown session", func(c *Config) { c.Session.Driver = "etcd" }, "session.driver"},
		{"redis without url", func(c *Config) { c.Session.Driver = DriverRedis }, "session.redis_url"},
		{"zero passes", func(c *Config) { c.Render.Passes = 0 }, "render.passes"},
		{"zero timeout", func(c *Config) { c.Render.Timeout = 0 }, "render.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRedactedHidesToken(t *testing.T) {
	cfg, err := Load("", false)
	require.NoError(t, err)
	cfg.Bot.Token = "secret-token"

	out, err := cfg.Redacted()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret-token")
	assert.Contains(t, string(out), "timeout: 1m0s")
	assert.Equal(t, "secret-token", cfg.Bot.Token)
}
