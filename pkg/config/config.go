package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the goesp configuration
type Config struct {
	PluginDir string  `yaml:"plugin_dir"`
	IndexDir  string  `yaml:"index_dir"`
	Port      int     `yaml:"port"`
	Bind      string  `yaml:"bind"`
	Parse     Parse   `yaml:"parse"`
	Logging   Logging `yaml:"logging"`
}

// Parse contains codec-related configuration
type Parse struct {
	// Strict rejects top groups whose records do not match the label.
	Strict bool `yaml:"strict"`
	// Parallel is the goroutine count for top-level group parsing.
	// Zero or one means sequential.
	Parallel int `yaml:"parallel"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PluginDir: "./plugins",
		IndexDir:  "./index",
		Port:      8080,
		Bind:      "127.0.0.1",
		Parse: Parse{
			Strict:   false,
			Parallel: 0,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./goesp.yaml"
	}

	// For Linux/macOS, use ~/.config/goesp/config.yaml
	configDir := filepath.Join(homeDir, ".config", "goesp")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
