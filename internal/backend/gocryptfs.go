package backend

import (
	"context"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/process"
)

const (
	gocryptfsBinary = "gocryptfs"
	fusermount      = "fusermount"
)

// Gocryptfs drives the gocryptfs tool
type Gocryptfs struct {
	runner process.Runner
}

func (g *Gocryptfs) Kind() domain.BackendKind { return domain.Gocryptfs }

func (g *Gocryptfs) Probe(ctx context.Context) bool {
	return probe(ctx, g.runner, gocryptfsBinary)
}

// Init writes the password twice: gocryptfs asks for a confirmation.
func (g *Gocryptfs) Init(ctx context.Context, cfg domain.VaultConfig, password []byte) error {
	return run(ctx, g.runner, domain.Gocryptfs, process.Command{
		Name:  cfg.BinaryPath(gocryptfsBinary),
		Args:  []string{"--init", "-q", "--", cfg.EncryptedDataDirectory},
		Stdin: passwordInput(password, 2),
	})
}

func (g *Gocryptfs) Open(ctx context.Context, cfg domain.VaultConfig, password []byte) error {
	return run(ctx, g.runner, domain.Gocryptfs, process.Command{
		Name:  cfg.BinaryPath(gocryptfsBinary),
		Args:  []string{"-q", "--", cfg.EncryptedDataDirectory, cfg.MountDirectory},
		Stdin: passwordInput(password, 1),
	})
}

func (g *Gocryptfs) Close(ctx context.Context, cfg domain.VaultConfig) error {
	return run(ctx, g.runner, domain.Gocryptfs, process.Command{
		Name: fusermount,
		Args: []string{"-u", cfg.MountDirectory},
	})
}
