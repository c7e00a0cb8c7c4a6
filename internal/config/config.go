// Package config handles global remkit configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrMissingHostname means no device hostname was configured. Nothing can
// run without one.
var ErrMissingHostname = errors.New("no device hostname configured")

// Config is the global remkit configuration.
type Config struct {
	// Hostname is the device's network address. Required.
	Hostname string `toml:"hostname"`

	// User is the SSH account on the device (default "root").
	User string `toml:"user"`

	// Port is the device's SSH port (default 22).
	Port int `toml:"port"`

	// IdentityFile is an optional private key path; ssh-agent is used when
	// unset.
	IdentityFile string `toml:"identity_file"`

	// StrictHostKey verifies the device against ~/.ssh/known_hosts instead
	// of accepting any host key.
	StrictHostKey bool `toml:"strict_host_key"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`
}

// Validate checks that the required settings are present.
func (c *Config) Validate() error {
	if c.Hostname == "" {
		return ErrMissingHostname
	}
	return nil
}

// SSHUser returns the configured SSH user, defaulting to root.
func (c *Config) SSHUser() string {
	if c.User != "" {
		return c.User
	}
	return "root"
}

// SSHPort returns the configured SSH port, defaulting to 22.
func (c *Config) SSHPort() int {
	if c.Port != 0 {
		return c.Port
	}
	return 22
}

// Load loads the configuration from the default location.
// Returns an empty config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/remkit/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "remkit", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "remkit", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// CreateDefault creates a default config file if it doesn't exist.
func CreateDefault() (string, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil // Already exists
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# remkit configuration

# Device network address. USB cable exposes 10.11.99.1; WiFi addresses work too.
# hostname = "10.11.99.1"

# SSH account on the device (the tablet only has root).
# user = "root"

# SSH port.
# port = 22

# Private key for device auth; ssh-agent is used when unset.
# identity_file = "~/.ssh/id_rsa"

# Verify the device against ~/.ssh/known_hosts. Off by default because the
# tablet regenerates its host key on factory reset.
# strict_host_key = false

# Optional UI accent color for paths in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}
