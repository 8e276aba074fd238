package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vault-cli/vaults/internal/backend"
	"github.com/vault-cli/vaults/internal/credential"
	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/process"
	"github.com/vault-cli/vaults/internal/registry"
)

// CreateVault initializes a new encrypted filesystem and registers it.
// Nothing is registered if initialization fails.
func (a *App) CreateVault(ctx context.Context, cfg domain.VaultConfig, password []byte) (domain.VaultID, error) {
	if err := a.checkRegistry(); err != nil {
		return domain.NilVaultID, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return domain.NilVaultID, err
	}
	if len(password) == 0 {
		return domain.NilVaultID, &backend.Error{Backend: cfg.Backend, Kind: backend.EmptyPassword}
	}

	id := a.vaults.GenerateID()
	if id == domain.NilVaultID {
		return domain.NilVaultID, registry.ErrNilIdentity
	}

	for _, dir := range []string{cfg.EncryptedDataDirectory, cfg.MountDirectory} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return domain.NilVaultID, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := a.withCredential(ctx, id, domain.OpInit, cfg, password, func(d backend.Driver, pw []byte) error {
		return d.Init(ctx, cfg, pw)
	}); err != nil {
		return domain.NilVaultID, err
	}

	if err := a.vaults.Add(id, cfg); err != nil {
		return domain.NilVaultID, err
	}

	a.log.Info(ctx, "created vault", "vault", id, "name", cfg.Name, "backend", cfg.Backend)
	return id, nil
}

// AddVault registers an existing encrypted filesystem without touching it
func (a *App) AddVault(ctx context.Context, cfg domain.VaultConfig) (domain.VaultID, error) {
	if err := a.checkRegistry(); err != nil {
		return domain.NilVaultID, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return domain.NilVaultID, err
	}

	id := a.vaults.GenerateID()
	if err := a.vaults.Add(id, cfg); err != nil {
		return domain.NilVaultID, err
	}

	a.log.Info(ctx, "added vault", "vault", id, "name", cfg.Name, "backend", cfg.Backend)
	return id, nil
}

// SaveMigration writes vaults migrated from the legacy file so their
// identities survive the next start. It returns how many were written.
func (a *App) SaveMigration(ctx context.Context) (int, error) {
	if err := a.checkRegistry(); err != nil {
		return 0, err
	}
	if !a.vaults.PendingMigration() {
		return 0, nil
	}
	if err := a.vaults.Save(); err != nil {
		return 0, err
	}

	n := a.vaults.Len()
	a.log.Info(ctx, "saved migrated vaults", "count", n, "path", a.vaults.Path())
	return n, nil
}

// ChangeVault replaces the configuration of a registered vault
func (a *App) ChangeVault(ctx context.Context, id domain.VaultID, cfg domain.VaultConfig) error {
	if err := a.checkRegistry(); err != nil {
		return err
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if err := a.vaults.Change(id, cfg); err != nil {
		return err
	}

	a.log.Info(ctx, "changed vault", "vault", id)
	return nil
}

// RemoveVault unregisters a vault and purges its history. The encrypted data is kept.
func (a *App) RemoveVault(ctx context.Context, id domain.VaultID) error {
	if err := a.checkRegistry(); err != nil {
		return err
	}
	if err := a.vaults.Remove(id); err != nil {
		return err
	}

	if a.history != nil {
		n, err := a.history.Purge(id)
		if err != nil {
			a.log.Warn(ctx, "failed to purge history", "vault", id, "error", err)
		} else {
			a.log.Debug(ctx, "purged history", "vault", id, "records", n)
		}
	}

	a.log.Info(ctx, "removed vault", "vault", id)
	return nil
}

// OpenVault mounts a registered vault. The password is held only for the
// duration of the call.
func (a *App) OpenVault(ctx context.Context, id domain.VaultID, password []byte) error {
	cfg, err := a.vaults.Get(id)
	if err != nil {
		return err
	}
	if len(password) == 0 {
		return &backend.Error{Backend: cfg.Backend, Kind: backend.EmptyPassword}
	}

	return a.withCredential(ctx, id, domain.OpOpen, cfg, password, func(d backend.Driver, pw []byte) error {
		return d.Open(ctx, cfg, pw)
	})
}

// CloseVault unmounts a registered vault
func (a *App) CloseVault(ctx context.Context, id domain.VaultID) error {
	cfg, err := a.vaults.Get(id)
	if err != nil {
		return err
	}

	driver, err := backend.For(cfg.Backend, a.runner)
	if err != nil {
		return err
	}

	start := a.now()
	err = driver.Close(ctx, cfg)
	a.record(ctx, id, domain.OpClose, cfg.Backend, start, err)
	return err
}

// withCredential stores password in the holder, runs fn with a copy and wipes
// both the copy and the holder on every path.
func (a *App) withCredential(ctx context.Context, id domain.VaultID, op domain.OperationType,
	cfg domain.VaultConfig, password []byte, fn func(backend.Driver, []byte) error) error {
	driver, err := backend.For(cfg.Backend, a.runner)
	if err != nil {
		return err
	}

	if err := a.creds.Set(password); err != nil {
		return err
	}
	defer a.creds.Clear()

	pw, ok := a.creds.Get()
	if !ok {
		return &backend.Error{Backend: cfg.Backend, Kind: backend.EmptyPassword}
	}
	defer credential.Zero(pw)

	start := a.now()
	err = fn(driver, pw)
	a.record(ctx, id, op, cfg.Backend, start, err)
	return err
}

func (a *App) record(ctx context.Context, id domain.VaultID, op domain.OperationType,
	kind domain.BackendKind, start time.Time, opErr error) {
	fields := []any{"vault", id, "operation", op, "backend", kind}
	if opErr != nil {
		a.log.Warn(ctx, "backend operation failed", append(fields, "error", opErr)...)
	} else {
		a.log.Debug(ctx, "backend operation succeeded", fields...)
	}

	if a.history == nil {
		return
	}

	rec := &domain.Operation{
		VaultID:   id,
		Type:      op,
		Backend:   kind,
		Success:   opErr == nil,
		Timestamp: start,
		Duration:  a.now().Sub(start),
	}
	var (
		berr *backend.Error
		serr *process.SpawnError
	)
	switch {
	case opErr == nil:
	case errors.As(opErr, &berr):
		rec.ErrorKind = berr.Kind.String()
		if berr.HasExitCode {
			code := berr.ExitCode
			rec.ExitCode = &code
		}
	case errors.As(opErr, &serr):
		rec.ErrorKind = "SpawnFailed"
	case errors.Is(opErr, process.ErrTimeout):
		rec.ErrorKind = "Timeout"
	case errors.Is(opErr, context.Canceled):
		rec.ErrorKind = "Cancelled"
	default:
		rec.ErrorKind = "Error"
	}

	if err := a.history.Append(rec); err != nil {
		a.log.Warn(ctx, "failed to record history", "vault", id, "error", err)
	}
}

func (a *App) checkRegistry() error {
	if a.registryErr != nil {
		return fmt.Errorf("registry was not loaded, refusing to overwrite it: %w", a.registryErr)
	}
	return nil
}
