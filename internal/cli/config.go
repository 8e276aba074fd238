package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/config"
	"github.com/vault-cli/vaults/internal/logging"
	"github.com/vault-cli/vaults/internal/process"
	"github.com/vault-cli/vaults/internal/util"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage settings",
		Long: `Manage the settings of the vault manager.

You can view, set, or get individual configuration values.
Settings are stored in $XDG_CONFIG_HOME/vaults/config.yaml by default.

Example:
  vaults config path                               # Show config file path
  vaults config get backend_timeout                # Get one value
  vaults config set default_mount_directory ~/Vaults
  vaults config get                                # Show all settings`,
	}

	getCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get configuration value(s)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runConfigGetAll(cmd, e)
			}
			return runConfigGet(cmd, e.cfg, args[0])
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, e, args[0], args[1])
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd.OutOrStdout(), "%s\n", e.cfgFile)
		},
	}

	cmd.AddCommand(getCmd, setCmd, pathCmd)
	return cmd
}

// configKeys lists the settable keys in display order
var configKeys = []string{
	"registry_path",
	"legacy_vaults_path",
	"legacy_user_config_path",
	"history_path",
	"record_history",
	"default_encrypted_data_directory",
	"default_mount_directory",
	"backend_timeout",
	"host_spawn",
	"log_level",
	"log_format",
	"clipboard_ttl",
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

func configValue(cfg *config.Config, key string) (string, error) {
	switch normalizeKey(key) {
	case "registry_path":
		return cfg.RegistryPath, nil
	case "legacy_vaults_path":
		return cfg.LegacyVaultsPath, nil
	case "legacy_user_config_path":
		return cfg.LegacyUserConfigPath, nil
	case "history_path":
		return cfg.HistoryPath, nil
	case "record_history":
		return strconv.FormatBool(cfg.RecordHistory), nil
	case "default_encrypted_data_directory":
		return cfg.DefaultEncryptedDataDirectory, nil
	case "default_mount_directory":
		return cfg.DefaultMountDirectory, nil
	case "backend_timeout":
		return cfg.BackendTimeout.String(), nil
	case "host_spawn":
		return cfg.HostSpawn, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "log_format":
		return cfg.LogFormat, nil
	case "clipboard_ttl":
		return cfg.ClipboardTTL.String(), nil
	default:
		return "", util.InvalidInput("unknown configuration key: %s", key)
	}
}

func runConfigGetAll(cmd *cobra.Command, e *env) error {
	out := cmd.OutOrStdout()
	if err := writeOutput(out, "Configuration file: %s\n\n", e.cfgFile); err != nil {
		return err
	}
	for _, key := range configKeys {
		value, err := configValue(e.cfg, key)
		if err != nil {
			return err
		}
		if err := writeOutput(out, "%s: %s\n", key, value); err != nil {
			return err
		}
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, cfg *config.Config, key string) error {
	value, err := configValue(cfg, key)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), "%s\n", value)
}

func parseDuration(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, util.InvalidInput("invalid duration: %v", err)
	}
	if d < 0 {
		return 0, util.InvalidInput("invalid duration: must not be negative")
	}
	return d, nil
}

func runConfigSet(cmd *cobra.Command, e *env, key, value string) error {
	// --verbose only affects this run
	cfg, err := config.LoadConfig(e.cfgFile)
	if err != nil {
		return err
	}

	switch normalizeKey(key) {
	case "registry_path":
		cfg.RegistryPath = value
	case "legacy_vaults_path":
		cfg.LegacyVaultsPath = value
	case "legacy_user_config_path":
		cfg.LegacyUserConfigPath = value
	case "history_path":
		cfg.HistoryPath = value
	case "record_history":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return util.InvalidInput("invalid boolean value: %v", err)
		}
		cfg.RecordHistory = boolVal
	case "default_encrypted_data_directory":
		cfg.DefaultEncryptedDataDirectory = value
	case "default_mount_directory":
		cfg.DefaultMountDirectory = value
	case "backend_timeout":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.BackendTimeout = d
	case "host_spawn":
		if _, err := process.ParseHostSpawnMode(value); err != nil {
			return util.InvalidInput("%v", err)
		}
		cfg.HostSpawn = value
	case "log_level":
		if _, err := logging.ParseLevel(value); err != nil {
			return util.InvalidInput("%v", err)
		}
		cfg.LogLevel = value
	case "log_format":
		if value != "text" && value != "json" {
			return util.InvalidInput("invalid log format: %s (valid: text, json)", value)
		}
		cfg.LogFormat = value
	case "clipboard_ttl":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.ClipboardTTL = d
	default:
		return util.InvalidInput("unknown configuration key: %s", key)
	}

	if err := config.SaveConfig(cfg, e.cfgFile); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	e.cfg = cfg

	return writeOutput(cmd.OutOrStdout(), "✓ Configuration updated: %s = %s\n", key, value)
}
