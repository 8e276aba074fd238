package backend

import (
	"context"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/process"
)

const (
	cryfsBinary        = "cryfs"
	cryfsUnmountBinary = "cryfs-unmount"
	cryfsFrontendEnv   = "CRYFS_FRONTEND=noninteractive"
)

// CryFS drives the cryfs tool
type CryFS struct {
	runner process.Runner
}

func (c *CryFS) Kind() domain.BackendKind { return domain.CryFS }

func (c *CryFS) Probe(ctx context.Context) bool {
	return probe(ctx, c.runner, cryfsBinary)
}

// Init does not spawn anything: cryfs creates the filesystem on the first Open
// of an empty encrypted data directory.
func (c *CryFS) Init(_ context.Context, _ domain.VaultConfig, _ []byte) error {
	return nil
}

func (c *CryFS) Open(ctx context.Context, cfg domain.VaultConfig, password []byte) error {
	return run(ctx, c.runner, domain.CryFS, process.Command{
		Name:  cfg.BinaryPath(cryfsBinary),
		Args:  []string{cfg.EncryptedDataDirectory, cfg.MountDirectory},
		Env:   []string{cryfsFrontendEnv},
		Stdin: passwordInput(password, 1),
	})
}

func (c *CryFS) Close(ctx context.Context, cfg domain.VaultConfig) error {
	return run(ctx, c.runner, domain.CryFS, process.Command{
		Name: cryfsUnmountBinary,
		Args: []string{cfg.MountDirectory},
	})
}
