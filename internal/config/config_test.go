package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Dir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.HTTP.Metrics)
	assert.Equal(t, "stdio", cfg.MCP.Transport)
	assert.Equal(t, 0, cfg.MaxChainDepth)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SWITCHYARD_DIR", "machines")
	t.Setenv("SWITCHYARD_HTTP_ADDR", ":9000")
	t.Setenv("SWITCHYARD_MCP_PORT", "9001")
	t.Setenv("SWITCHYARD_MAX_CHAIN_DEPTH", "42")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "machines", cfg.Dir)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 9001, cfg.MCP.Port)
	assert.Equal(t, 42, cfg.MaxChainDepth)
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SWITCHYARD_LOG_LEVEL=debug\nSWITCHYARD_HTTP_METRICS=false\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SWITCHYARD_LOG_LEVEL")
		os.Unsetenv("SWITCHYARD_HTTP_METRICS")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.HTTP.Metrics)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SWITCHYARD_HTTP_READ_TIMEOUT", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrParsingConfig)
}

func TestConfig_Logger(t *testing.T) {
	_, err := Config{LogLevel: "debug", LogFormat: "json"}.Logger()
	require.NoError(t, err)

	_, err = Config{LogLevel: "loud"}.Logger()
	assert.Error(t, err)

	_, err = Config{LogLevel: "info", LogFormat: "xml"}.Logger()
	assert.Error(t, err)
}
