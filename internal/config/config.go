// Package config handles configuration loading and defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aknott/kumo/internal/db"
)

// Config holds the full configuration for kumo
type Config struct {
	// Paths
	DataDir string `toml:"data_dir"`
	// SyncDB is the shared database file for accounts and synced
	// todos; point it at a folder replicated between devices
	SyncDB string `toml:"sync_db"`

	// UI
	Theme string `toml:"theme"` // nord, dracula

	// Sync
	PollIntervalSeconds int `toml:"poll_interval_seconds"`

	// Notifications
	Notifications bool `toml:"notifications"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir:             db.DefaultDataDir(),
		SyncDB:              db.DefaultSyncPath(),
		Theme:               "nord",
		PollIntervalSeconds: 2,
		Notifications:       true,
	}
}

// DefaultPath returns the config file location
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kumo.toml"
	}
	return filepath.Join(home, ".config", "kumo", "config.toml")
}

// Load reads the config file at path, layering it over the defaults.
// A missing or unreadable file silently yields the defaults.
func Load(path string) *Config {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if _, err := toml.Decode(string(raw), cfg); err != nil {
		return Default()
	}

	if cfg.DataDir == "" {
		cfg.DataDir = db.DefaultDataDir()
	}
	if cfg.SyncDB == "" {
		cfg.SyncDB = filepath.Join(cfg.DataDir, "sync.db")
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 2
	}
	return cfg
}

// LocalDB returns the local database path under the data dir
func (c *Config) LocalDB() string {
	return filepath.Join(c.DataDir, "kumo.db")
}

// PollInterval returns the subscription poll pace
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
