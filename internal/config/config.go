package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"monarchmcp/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/monarch-mcp"
	configFileName = "config.yaml"
)

// Config is the process configuration. It is loaded once at startup; there
// is no re-initialization while the server runs.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// AuthListenAddr is the local address the browser login page binds to.
	AuthListenAddr string `yaml:"authListenAddr"`

	// MaxConcurrentCalls bounds how many remote operations run at once.
	MaxConcurrentCalls int64 `yaml:"maxConcurrentCalls"`

	// APIBaseURL overrides the Monarch API endpoint. Empty means production.
	APIBaseURL string `yaml:"apiBaseURL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:           "info",
		AuthListenAddr:     "127.0.0.1:8322",
		MaxConcurrentCalls: 8,
	}
}

// DefaultPath returns the user config directory
// (~/.config/monarch-mcp).
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Load reads config.yaml from the given directory, applying defaults for
// anything unset. A missing file is not an error; a malformed one is.
func Load(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	cfg := Default()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "no config.yaml found at %s, using defaults", configFilePath)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Info("ConfigLoader", "loaded configuration from %s", configFilePath)
	return cfg, nil
}
