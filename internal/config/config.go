// Package config loads and persists the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Dataset source configuration
	Data DataConfig `toml:"data"`

	// Synergy graph configuration
	Synergy SynergyConfig `toml:"synergy"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// DataConfig controls where dataset fragments are loaded from.
type DataConfig struct {
	Dir      string   `toml:"dir"`       // Local data directory
	BaseURL  string   `toml:"base_url"`  // Remote base URL (takes precedence when set)
	Packs    []string `toml:"packs"`     // Enabled expansion pack keys (core is always loaded)
	WatchDir bool     `toml:"watch_dir"` // Reload when files in Dir change
}

// SynergyConfig controls synergy scoring and graph output.
type SynergyConfig struct {
	Strategy        string  `toml:"strategy"`           // "pairwise" or "grouped"
	MaxLinksPerCard int     `toml:"max_links_per_card"` // 0 = per-strategy default
	VisibleScore    float64 `toml:"visible_score"`      // Link visibility threshold
	OutputPath      string  `toml:"output_path"`        // Graph HTML output file
	OpenBrowser     bool    `toml:"open_browser"`       // Open the rendered graph
}

// AppConfig contains general application settings.
type AppConfig struct {
	DBPath     string `toml:"db_path"`    // Snapshot database path
	Passphrase string `toml:"passphrase"` // Snapshot encryption passphrase ("" = plaintext)
	DebugMode  bool   `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:      "data",
			BaseURL:  "",
			Packs:    nil,
			WatchDir: false,
		},
		Synergy: SynergyConfig{
			Strategy:        "pairwise",
			MaxLinksPerCard: 0,
			VisibleScore:    50,
			OutputPath:      "synergy.html",
			OpenBrowser:     false,
		},
		App: AppConfig{
			DBPath:     "",
			Passphrase: "",
			DebugMode:  false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".cardseer")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// DefaultDBPath returns the default snapshot database location.
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cardseer", "cardseer.db"), nil
}

// Load loads the configuration from disk. Returns default config if file
// doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	switch c.Synergy.Strategy {
	case "", "pairwise", "grouped":
	default:
		return fmt.Errorf("invalid synergy strategy %q: use pairwise or grouped", c.Synergy.Strategy)
	}

	if c.Synergy.MaxLinksPerCard < 0 {
		return fmt.Errorf("max links per card cannot be negative: %d", c.Synergy.MaxLinksPerCard)
	}

	if c.Synergy.VisibleScore < 0 {
		return fmt.Errorf("visible score cannot be negative: %v", c.Synergy.VisibleScore)
	}

	if c.Data.Dir == "" && c.Data.BaseURL == "" {
		return fmt.Errorf("either data dir or base URL must be set")
	}

	return nil
}
