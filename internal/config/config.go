// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glambook/glambook-cli/internal/hostutil"
)

// Config holds the resolved configuration.
type Config struct {
	// API settings
	BaseURL string `json:"base_url"`

	// Default account role tab for login (USER or OWNER)
	DefaultRole string `json:"default_role,omitempty"`

	// Output settings
	Format string `json:"format"`

	// Secrets fallback directory (file backend when keyring unavailable)
	SecretsDir string `json:"secrets_dir,omitempty"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	Host   string
	Format string
	Role   string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseURL:    "https://api.glambook.app",
		Format:     "auto",
		SecretsDir: GlobalConfigDir(),
		Sources:    make(map[string]string),
	}
}

// GlobalConfigDir returns the global config directory (~/.config/glambook).
func GlobalConfigDir() string {
	if dir := os.Getenv("GBK_CONFIG_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "glambook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "glambook")
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > local > global > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, filepath.Join(GlobalConfigDir(), "config.json"), SourceGlobal)
	loadFromFile(cfg, filepath.Join(".glambook", "config.json"), SourceLocal)

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	return cfg, nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	// base_url controls where credentials are sent. Local config must not set
	// it — a config in a cloned directory could redirect authenticated traffic.
	if v, ok := fileCfg["base_url"].(string); ok && v != "" {
		if source == SourceLocal {
			fmt.Fprintf(os.Stderr, "warning: ignoring base_url %q from local config at %s\n", v, path)
		} else {
			cfg.BaseURL = hostutil.Normalize(v)
			cfg.Sources["base_url"] = string(source)
		}
	}
	if v, ok := fileCfg["default_role"].(string); ok && v != "" {
		cfg.DefaultRole = v
		cfg.Sources["default_role"] = string(source)
	}
	if v, ok := fileCfg["format"].(string); ok && v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(source)
	}
	if v, ok := fileCfg["secrets_dir"].(string); ok && v != "" {
		if source == SourceLocal {
			fmt.Fprintf(os.Stderr, "warning: ignoring secrets_dir %q from local config at %s\n", v, path)
		} else {
			cfg.SecretsDir = v
			cfg.Sources["secrets_dir"] = string(source)
		}
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("GBK_BASE_URL"); v != "" {
		cfg.BaseURL = hostutil.Normalize(v)
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("GBK_ROLE"); v != "" {
		cfg.DefaultRole = v
		cfg.Sources["default_role"] = string(SourceEnv)
	}
	if v := os.Getenv("GBK_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
}

// ApplyOverrides applies command-line flag values.
func ApplyOverrides(cfg *Config, overrides FlagOverrides) {
	if overrides.Host != "" {
		cfg.BaseURL = hostutil.Normalize(overrides.Host)
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if overrides.Format != "" {
		cfg.Format = overrides.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
	if overrides.Role != "" {
		cfg.DefaultRole = overrides.Role
		cfg.Sources["default_role"] = string(SourceFlag)
	}
}
