// Package config handles the settings of the vault manager.
// It provides functionality to load, save, and migrate the settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AppDirName is the per-user directory holding every file of the vault manager
const AppDirName = "vaults"

// Config represents the settings of the vault manager
type Config struct {
	RegistryPath                  string        `yaml:"registry_path"`
	LegacyVaultsPath              string        `yaml:"legacy_vaults_path"`
	LegacyUserConfigPath          string        `yaml:"legacy_user_config_path"`
	HistoryPath                   string        `yaml:"history_path"`
	RecordHistory                 bool          `yaml:"record_history"`
	DefaultEncryptedDataDirectory string        `yaml:"default_encrypted_data_directory"`
	DefaultMountDirectory         string        `yaml:"default_mount_directory"`
	BackendTimeout                time.Duration `yaml:"backend_timeout"`
	HostSpawn                     string        `yaml:"host_spawn"`
	LogLevel                      string        `yaml:"log_level"`
	LogFormat                     string        `yaml:"log_format"`
	ClipboardTTL                  time.Duration `yaml:"clipboard_ttl"`
}

// Dir returns the per-user configuration directory of the vault manager
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppDirName)
}

// DefaultPath returns the default settings file location
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return defaultConfigIn(Dir())
}

func defaultConfigIn(dir string) *Config {
	return &Config{
		RegistryPath:         filepath.Join(dir, "vaults.yaml"),
		LegacyVaultsPath:     filepath.Join(dir, "legacy_vaults.yaml"),
		LegacyUserConfigPath: filepath.Join(dir, "user_config.yaml"),
		HistoryPath:          filepath.Join(dir, "history.db"),
		RecordHistory:        true,
		BackendTimeout:       0,
		HostSpawn:            "auto",
		LogLevel:             "warn",
		LogFormat:            "text",
		ClipboardTTL:         30 * time.Second,
	}
}

// LoadConfig loads configuration from file or returns default.
// A missing file is created with the defaults; the defaults are rooted next to it.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	cleanPath := filepath.Clean(configPath)
	cfg := defaultConfigIn(filepath.Dir(cleanPath))

	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		if err := SaveConfig(cfg, cleanPath); err != nil {
			return cfg, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, configPath string) error {
	cleanPath := filepath.Clean(configPath)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
