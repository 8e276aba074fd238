// Package app wires the vault manager together: settings, logging, the process
// runner, backend drivers, the credential holder, the registry and the history.
// One App replaces the process-wide singletons of earlier releases.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vault-cli/vaults/internal/backend"
	"github.com/vault-cli/vaults/internal/config"
	"github.com/vault-cli/vaults/internal/credential"
	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/logging"
	"github.com/vault-cli/vaults/internal/process"
	"github.com/vault-cli/vaults/internal/registry"
	"github.com/vault-cli/vaults/internal/store"
)

// ErrInvalidConfig is returned when a vault configuration fails validation
var ErrInvalidConfig = errors.New("invalid vault configuration")

// Options holds the optional collaborators of an App
type Options struct {
	// Version is the running release, used to gate settings migrations.
	Version string
	// ConfigPath is where migrated settings are saved; empty skips saving.
	ConfigPath string
	Logger     logging.Logger
	// Runner replaces the exec runner built from the settings.
	Runner process.Runner
	// LogOutput receives log lines when Logger is nil.
	LogOutput io.Writer
}

// App is the application context shared by every command
type App struct {
	cfg      *config.Config
	log      logging.Logger
	runner   process.Runner
	backends *backend.Availability
	creds    *credential.Holder
	vaults   *registry.Registry
	history  *store.History
	now      func() time.Time

	registryErr error
}

// New builds an App from cfg. A registry that cannot be loaded does not fail
// construction; read-only commands keep working and mutations report the error.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		var err error
		log, err = logging.New(cfg.LogLevel, cfg.LogFormat, out)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	changed, err := config.MigrateUserDirectories(opts.Version, cfg.LegacyUserConfigPath, cfg)
	if err != nil {
		log.Warn(ctx, "failed to migrate legacy user directories", "error", err)
	}
	if changed {
		log.Info(ctx, "migrated legacy default directories",
			"encrypted_data_directory", cfg.DefaultEncryptedDataDirectory,
			"mount_directory", cfg.DefaultMountDirectory)
		if opts.ConfigPath != "" {
			if err := config.SaveConfig(cfg, opts.ConfigPath); err != nil {
				log.Warn(ctx, "failed to save migrated settings", "error", err)
			}
		}
	}

	runner := opts.Runner
	if runner == nil {
		mode, err := process.ParseHostSpawnMode(cfg.HostSpawn)
		if err != nil {
			return nil, fmt.Errorf("invalid host_spawn setting: %w", err)
		}
		runner = process.NewExecRunner(cfg.BackendTimeout, mode)
	}

	creds, err := credential.NewHolder()
	if err != nil {
		return nil, fmt.Errorf("failed to create credential holder: %w", err)
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		runner:   runner,
		backends: backend.NewAvailability(runner, log.With("component", "backends")),
		creds:    creds,
		vaults: registry.New(cfg.RegistryPath,
			registry.WithLegacyPath(cfg.LegacyVaultsPath),
			registry.WithLogger(log.With("component", "registry")),
		),
		now: time.Now,
	}

	if err := a.vaults.Load(); err != nil {
		a.registryErr = err
		log.Error(ctx, "registry unavailable", "error", err)
	}

	if cfg.RecordHistory && cfg.HistoryPath != "" {
		h, err := store.OpenHistory(cfg.HistoryPath)
		if err != nil {
			log.Warn(ctx, "operation history disabled", "error", err)
		} else {
			a.history = h
		}
	}

	return a, nil
}

// Close releases the history database and wipes the credential holder
func (a *App) Close() error {
	a.creds.Destroy()
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}

// Config returns the settings
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger
func (a *App) Logger() logging.Logger { return a.log }

// Registry returns the vault registry
func (a *App) Registry() *registry.Registry { return a.vaults }

// RegistryError returns the error that prevented loading the registry, if any
func (a *App) RegistryError() error { return a.registryErr }

// Backends returns the backend availability cache
func (a *App) Backends() *backend.Availability { return a.backends }

// History returns the operation history, or nil when recording is disabled
func (a *App) History() *store.History { return a.history }

// RefreshBackends probes every backend and returns the available ones
func (a *App) RefreshBackends(ctx context.Context) []domain.BackendKind {
	return a.backends.Refresh(ctx)
}

// ValidateConfig checks the fields every vault needs before it reaches the registry
func ValidateConfig(cfg domain.VaultConfig) error {
	switch {
	case cfg.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	case cfg.EncryptedDataDirectory == "":
		return fmt.Errorf("%w: encrypted data directory is required", ErrInvalidConfig)
	case cfg.MountDirectory == "":
		return fmt.Errorf("%w: mount directory is required", ErrInvalidConfig)
	case filepath.Clean(cfg.EncryptedDataDirectory) == filepath.Clean(cfg.MountDirectory):
		return fmt.Errorf("%w: encrypted data and mount directory must differ", ErrInvalidConfig)
	case cfg.UseCustomBinary != nil && *cfg.UseCustomBinary &&
		(cfg.CustomBinaryPath == nil || *cfg.CustomBinaryPath == ""):
		return fmt.Errorf("%w: custom binary enabled without a path", ErrInvalidConfig)
	}
	if _, err := backend.For(cfg.Backend, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// WithDefaults fills empty directories from the settings defaults, joined with the vault name
func (a *App) WithDefaults(cfg domain.VaultConfig) domain.VaultConfig {
	if cfg.EncryptedDataDirectory == "" && a.cfg.DefaultEncryptedDataDirectory != "" {
		cfg.EncryptedDataDirectory = filepath.Join(a.cfg.DefaultEncryptedDataDirectory, cfg.Name)
	}
	if cfg.MountDirectory == "" && a.cfg.DefaultMountDirectory != "" {
		cfg.MountDirectory = filepath.Join(a.cfg.DefaultMountDirectory, cfg.Name)
	}
	return cfg
}
