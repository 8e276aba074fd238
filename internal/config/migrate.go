package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// legacyUserConfig is the two-field global settings file of releases before 0.11
type legacyUserConfig struct {
	EncryptedDataDirectory string `yaml:"encrypted_data_directory"`
	MountDirectory         string `yaml:"mount_directory"`
}

// MigrateUserDirectories copies the default directories from the legacy global
// settings file into cfg. It only runs for versions before 0.11 or unparseable
// versions, and never overwrites a value that is already set. It reports whether
// cfg changed; saving is up to the caller. A missing legacy file is not an error.
func MigrateUserDirectories(version, legacyPath string, cfg *Config) (bool, error) {
	if userDirectoriesMigrated(version) || legacyPath == "" {
		return false, nil
	}

	data, err := os.ReadFile(legacyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read legacy user config: %w", err)
	}

	var legacy legacyUserConfig
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return false, fmt.Errorf("failed to parse legacy user config: %w", err)
	}

	changed := false
	if cfg.DefaultEncryptedDataDirectory == "" && legacy.EncryptedDataDirectory != "" {
		cfg.DefaultEncryptedDataDirectory = legacy.EncryptedDataDirectory
		changed = true
	}
	if cfg.DefaultMountDirectory == "" && legacy.MountDirectory != "" {
		cfg.DefaultMountDirectory = legacy.MountDirectory
		changed = true
	}

	return changed, nil
}
