// ABOUTME: Tests for console configuration management
// ABOUTME: Covers XDG path handling, persistence, env overrides, and device ID generation
package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDataHome(t *testing.T) string {
	t.Helper()
	origHome := xdg.DataHome
	tmpDir := t.TempDir()
	xdg.DataHome = tmpDir
	t.Cleanup(func() { xdg.DataHome = origHome })
	return tmpDir
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()

	expectedBase := filepath.Join(xdg.DataHome, "salesdesk")
	assert.Equal(t, expectedBase, filepath.Dir(path))
	assert.Equal(t, "config.json", filepath.Base(path))
}

func TestLoadConfigNotFound(t *testing.T) {
	useTempDataHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err, "missing config file should yield defaults, not an error")
	require.NotNil(t, cfg)

	assert.Empty(t, cfg.APIURL)
	assert.Empty(t, cfg.Token)
	assert.Equal(t, DefaultCachePath(), cfg.CacheDB)
}

func TestSaveAndLoadConfig(t *testing.T) {
	useTempDataHome(t)

	original := &Config{
		APIURL:   "https://store.example.com",
		Token:    "token456",
		DeviceID: "device001",
		CacheDB:  "custom.db",
	}
	require.NoError(t, SaveConfig(original))

	info, err := os.Stat(ConfigPath())
	require.NoError(t, err, "config file should exist")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config file should have 0600 permissions")

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, original.APIURL, loaded.APIURL)
	assert.Equal(t, original.Token, loaded.Token)
	assert.Equal(t, original.DeviceID, loaded.DeviceID)
	assert.Equal(t, original.CacheDB, loaded.CacheDB)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	useTempDataHome(t)

	base := &Config{
		APIURL:   "https://file.example.com",
		Token:    "file-token",
		DeviceID: "file-device",
	}
	require.NoError(t, SaveConfig(base))

	t.Setenv("SALESDESK_API_URL", "https://env.example.com")
	t.Setenv("SALESDESK_API_TOKEN", "env-token")
	t.Setenv("SALESDESK_DEVICE_ID", "env-device")
	t.Setenv("SALESDESK_CACHE_DB", "/tmp/env.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.APIURL)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "env-device", cfg.DeviceID)
	assert.Equal(t, "/tmp/env.db", cfg.CacheDB)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	tmpDir := useTempDataHome(t)

	configDir := filepath.Join(tmpDir, "salesdesk")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json {{{"), 0600))

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{"empty config", &Config{}, false},
		{"missing token", &Config{APIURL: "https://store.example.com"}, false},
		{"missing url", &Config{Token: "token"}, false},
		{"fully configured", &Config{APIURL: "https://store.example.com", Token: "token"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsConfigured())
		})
	}
}

func TestGenerateDeviceID(t *testing.T) {
	deviceID := GenerateDeviceID()

	assert.NotEmpty(t, deviceID)
	_, err := ulid.Parse(deviceID)
	require.NoError(t, err, "device ID should be a valid ULID")

	assert.NotEqual(t, deviceID, GenerateDeviceID(), "successive device IDs should be unique")
}
