package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xtermjs.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.BackendOptions(), "utf-8 defaults need no options")
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
format_version = "1"

[server]
address = "0.0.0.0:9000"
allowed_origins = ["https://example.com"]
max_sessions = 4
max_cols = 300
ping_interval = "2s"
pong_timeout = "6s"

[log]
level = "debug"
format = "json"

[terminal]
encoding = "latin1"
retain_on_error = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Server.PingInterval.Duration)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, Default().Terminal.InputQueue, cfg.Terminal.InputQueue, "unset keys keep defaults")

	enc, err := cfg.Terminal.OutputEncoding()
	require.NoError(t, err)
	assert.Equal(t, charmap.Windows1252, enc)
	assert.Len(t, cfg.BackendOptions(), 2)

	rc := cfg.RemoteConfig()
	assert.Equal(t, "0.0.0.0:9000", rc.Address)
	assert.Equal(t, 4, rc.MaxSessions)
	assert.Equal(t, 300, rc.MaxCols)
	assert.Equal(t, Default().Server.MaxRows, rc.MaxRows)
	assert.Equal(t, 6*time.Second, rc.PongTimeout)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, `
format_version = "1"
[server]
adress = "typo"
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "server.adress")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadDuration(t *testing.T) {
	path := writeFile(t, `
format_version = "1"
[server]
write_timeout = "soon"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"version", func(c *Config) { c.FormatVersion = "2" }},
		{"address", func(c *Config) { c.Server.Address = "" }},
		{"max sessions", func(c *Config) { c.Server.MaxSessions = -1 }},
		{"send queue", func(c *Config) { c.Server.SendQueueSize = 0 }},
		{"max cols", func(c *Config) { c.Server.MaxCols = 0 }},
		{"max rows", func(c *Config) { c.Server.MaxRows = -1 }},
		{"pong before ping", func(c *Config) { c.Server.PongTimeout = c.Server.PingInterval }},
		{"input queue", func(c *Config) { c.Terminal.InputQueue = 0 }},
		{"encoding", func(c *Config) { c.Terminal.Encoding = "klingon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestOutputEncodingUTF8IsStrict(t *testing.T) {
	for _, label := range []string{"", "utf-8", "UTF8", " unicode-1-1-utf-8 "} {
		enc, err := TerminalConfig{Encoding: label}.OutputEncoding()
		require.NoError(t, err, label)
		assert.Nil(t, enc, label)
	}
}

func TestExampleFileMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "xtermjs.example.toml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Server.AllowedOrigins)
	cfg.Server.AllowedOrigins = nil
	assert.Equal(t, Default(), cfg)
}
