package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsAreValid(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.Address)
	assert.Equal(t, "json", cfg.RenderMode)
	assert.False(t, cfg.LegacyErrors)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RENDER_MODE", "repr")
	t.Setenv("MAX_BODY_SIZE", "2048")
	t.Setenv("GZIP_LEVEL", "9")
	t.Setenv("BROTLI_QUALITY", "4")
	t.Setenv("LEGACY_ERRORS", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := New()
	require.NoError(t, ParseEnv(cfg))

	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "repr", cfg.RenderMode)
	assert.Equal(t, int64(2048), cfg.MaxBodySize)
	assert.Equal(t, 9, cfg.GzipLevel)
	assert.Equal(t, 4, cfg.BrotliQuality)
	assert.True(t, cfg.LegacyErrors)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())
}

func TestParseEnv_InvalidNumber(t *testing.T) {
	t.Setenv("MAX_BODY_SIZE", "ten")

	err := ParseEnv(New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_BODY_SIZE")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	content := "address: \":7070\"\nrender_mode: repr\nbrotli_quality: 5\nshutdown_timeout: 2s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := New()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, ":7070", cfg.Address)
	assert.Equal(t, "repr", cfg.RenderMode)
	assert.Equal(t, 5, cfg.BrotliQuality)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	// Значения, которых нет в файле, не меняются.
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadFile_Missing(t *testing.T) {
	err := LoadFile(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "empty address", modify: func(c *Config) { c.Address = "" }},
		{name: "zero body size", modify: func(c *Config) { c.MaxBodySize = 0 }},
		{name: "negative decompressed size", modify: func(c *Config) { c.MaxDecompressedSize = -1 }},
		{name: "unknown render mode", modify: func(c *Config) { c.RenderMode = "xml" }},
		{name: "bad gzip level", modify: func(c *Config) { c.GzipLevel = 11 }},
		{name: "bad brotli quality", modify: func(c *Config) { c.BrotliQuality = 20 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := New()
			test.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
