// Package localstore persists CLI session settings on the local machine.
package localstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI session stored in ~/.config/userhub/config.yaml.
type Config struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Token     string `yaml:"token,omitempty"`
	Email     string `yaml:"email,omitempty"`
}

// LoggedIn reports whether a server and token are both set.
func (c *Config) LoggedIn() bool {
	return c.ServerURL != "" && c.Token != ""
}

// ConfigDir returns the config directory (~/.config/userhub/ or platform equivalent).
// Can be overridden with USERHUB_CONFIG_DIR env var (for testing).
func ConfigDir() (string, error) {
	if dir := os.Getenv("USERHUB_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "userhub"), nil
}

// ConfigPath returns the path to config.yaml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadConfig reads the CLI config from disk. Returns empty config if not found.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes the CLI config to disk. The file holds a bearer token,
// so it is readable by the owner only.
func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("securing config: %w", err)
	}
	return nil
}

// ClearToken removes the stored token but keeps the server URL.
func ClearToken() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	cfg.Token = ""
	cfg.Email = ""
	return SaveConfig(cfg)
}
