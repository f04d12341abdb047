// ABOUTME: Record store configuration and credential management
// ABOUTME: Handles config storage at XDG paths, environment variable overrides, and device ID generation
package store

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/oklog/ulid/v2"
)

// Config stores record store credentials and console settings.
type Config struct {
	APIURL   string `json:"api_url"`
	Token    string `json:"token"`
	DeviceID string `json:"device_id"`
	CacheDB  string `json:"cache_db,omitempty"`
}

// ConfigDir returns the XDG-compliant directory for console configuration.
func ConfigDir() string {
	return filepath.Join(xdg.DataHome, "salesdesk")
}

// ConfigPath returns the XDG-compliant path for the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// DefaultCachePath returns where the recents cache database lives.
func DefaultCachePath() string {
	return filepath.Join(ConfigDir(), "recents.db")
}

// LoadConfig loads configuration from the XDG data directory. Returns a
// default config if the file does not exist. Environment variables override
// file values:
// - SALESDESK_API_URL
// - SALESDESK_API_TOKEN
// - SALESDESK_DEVICE_ID
// - SALESDESK_CACHE_DB.
func LoadConfig() (*Config, error) {
	path := ConfigPath()

	cfg := &Config{
		CacheDB: DefaultCachePath(),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.CacheDB == "" {
		cfg.CacheDB = DefaultCachePath()
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("SALESDESK_API_URL"); url != "" {
		cfg.APIURL = url
	}
	if token := os.Getenv("SALESDESK_API_TOKEN"); token != "" {
		cfg.Token = token
	}
	if deviceID := os.Getenv("SALESDESK_DEVICE_ID"); deviceID != "" {
		cfg.DeviceID = deviceID
	}
	if cacheDB := os.Getenv("SALESDESK_CACHE_DB"); cacheDB != "" {
		cfg.CacheDB = cacheDB
	}
}

// SaveConfig writes configuration to the XDG data directory with restricted
// permissions.
func SaveConfig(cfg *Config) error {
	path := ConfigPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// IsConfigured checks whether the client can reach the record store.
func (c *Config) IsConfigured() bool {
	return c.APIURL != "" && c.Token != ""
}

// GenerateDeviceID generates a new ULID identifying this console install.
func GenerateDeviceID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
