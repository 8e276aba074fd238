// Package backend drives the external encryption tools that back a vault.
// Each backend kind has one Driver; exit statuses are translated into typed
// errors through per-backend tables.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/process"
)

// Driver is the operation set every backend implements
type Driver interface {
	Kind() domain.BackendKind
	// Probe reports whether the backend tool is installed and runs.
	Probe(ctx context.Context) bool
	// Init creates a new encrypted filesystem in cfg.EncryptedDataDirectory.
	Init(ctx context.Context, cfg domain.VaultConfig, password []byte) error
	// Open mounts the vault at cfg.MountDirectory.
	Open(ctx context.Context, cfg domain.VaultConfig, password []byte) error
	// Close unmounts cfg.MountDirectory.
	Close(ctx context.Context, cfg domain.VaultConfig) error
}

// For returns the driver for kind
func For(kind domain.BackendKind, runner process.Runner) (Driver, error) {
	switch kind {
	case domain.CryFS:
		return &CryFS{runner: runner}, nil
	case domain.Gocryptfs:
		return &Gocryptfs{runner: runner}, nil
	default:
		return nil, fmt.Errorf("no driver for backend %s", kind)
	}
}

// Adding a BackendKind breaks this until For handles it.
func _() {
	var x [1]struct{}
	_ = x[domain.NumBackendKinds-2]
}

// passwordInput builds the stdin payload: the password followed by a newline, repeated.
func passwordInput(password []byte, times int) []byte {
	buf := make([]byte, 0, (len(password)+1)*times)
	for i := 0; i < times; i++ {
		buf = append(buf, password...)
		buf = append(buf, '\n')
	}
	return buf
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// run executes cmd and turns a non-zero or missing exit code into an *Error.
// Spawn errors and timeouts are returned unchanged.
func run(ctx context.Context, runner process.Runner, kind domain.BackendKind, cmd process.Command) error {
	if cmd.Stdin != nil {
		defer zero(cmd.Stdin)
	}

	out, err := runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if out.Success() {
		return nil
	}

	return &Error{
		Backend:     kind,
		Kind:        Translate(kind, out.ExitCode, out.HasExitCode),
		ExitCode:    out.ExitCode,
		HasExitCode: out.HasExitCode,
		Stderr:      strings.TrimSpace(string(out.Stderr)),
	}
}

func probe(ctx context.Context, runner process.Runner, binary string) bool {
	out, err := runner.Run(ctx, process.Command{Name: binary, Args: []string{"--version"}})
	if err != nil {
		return false
	}
	return out.Success()
}
