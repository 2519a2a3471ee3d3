package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	content := "TOKEN_SECRET_KEY=0123456789abcdef0123456789abcdef\n" +
		"WS_BASE_URL=ws://example:9000\n" +
		"SIMULATION_INTERVAL=3s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://example:9000", config.WSBaseURL)
	assert.Equal(t, 3*time.Second, config.SimulationInterval)
	assert.Equal(t, "0.0.0.0:3002", config.HTTPServerAddress, "defaults apply for unset keys")
	assert.Equal(t, 24*time.Hour, config.TokenDuration)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	viper.Reset()
	t.Setenv("TOKEN_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("WS_BASE_URL", "ws://env-host:4000")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "0123456789abcdef0123456789abcdef", config.TokenSecretKey)
	assert.Equal(t, "ws://env-host:4000", config.WSBaseURL)
	assert.Equal(t, 15*time.Second, config.SimulationInterval, "defaults apply for unset keys")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	content := "TOKEN_SECRET_KEY=0123456789abcdef0123456789abcdef\n" +
		"WS_BASE_URL=ws://file-host:9000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("WS_BASE_URL", "ws://env-host:4000")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://env-host:4000", config.WSBaseURL)
}

func TestLoadConfig_RequiresSecretKey(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	require.NoError(t, os.WriteFile(path, []byte("WS_BASE_URL=ws://example:9000\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_SECRET_KEY")
}
