// Package util provides helpers shared by the command line entry points.
// It maps errors from the vault manager to process exit codes.
package util

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vault-cli/vaults/internal/app"
	"github.com/vault-cli/vaults/internal/backend"
	"github.com/vault-cli/vaults/internal/process"
	"github.com/vault-cli/vaults/internal/registry"
	"github.com/vault-cli/vaults/internal/store"
)

// Exit codes of the vaults command
const (
	ExitOK             = 0
	ExitError          = 1
	ExitInvalidInput   = 2
	ExitPassword       = 3
	ExitUnavailable    = 4
	ExitPersistence    = 5
	ExitBackendFailure = 6
)

// ErrInvalidInput marks errors caused by bad command line input
var ErrInvalidInput = errors.New("invalid input")

// ExitCode returns the exit code for err
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		spawnErr   *process.SpawnError
		persistErr *registry.PersistenceError
	)

	switch {
	case backend.IsPasswordError(err):
		return ExitPassword
	case errors.As(err, &spawnErr):
		return ExitUnavailable
	case errors.As(err, &persistErr), errors.Is(err, store.ErrLockTimeout):
		return ExitPersistence
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, app.ErrInvalidConfig),
		errors.Is(err, registry.ErrVaultNotFound),
		errors.Is(err, registry.ErrVaultExists),
		errors.Is(err, registry.ErrAmbiguousName):
		return ExitInvalidInput
	}

	if _, ok := backend.KindOf(err); ok {
		return ExitBackendFailure
	}
	return ExitError
}

// ExitWithCode exits the program with the specified code and message
func ExitWithCode(code int, format string, args ...interface{}) {
	if format != "" {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	os.Exit(code)
}

// HandleError reports err on stderr and exits with its exit code
func HandleError(err error, context string) {
	if err == nil {
		return
	}
	code := Report(os.Stderr, err, context)
	os.Exit(code)
}

// Report writes err to w and returns its exit code
func Report(w io.Writer, err error, context string) int {
	code := ExitCode(err)

	msg := err.Error()
	if context != "" {
		msg = context + " - " + msg
	}
	fmt.Fprintf(w, "Error: %s\n", msg)

	var be *backend.Error
	if errors.As(err, &be) && be.Stderr != "" {
		fmt.Fprintf(w, "%s output:\n%s\n", be.Backend, be.Stderr)
	}
	if code == ExitPersistence {
		fmt.Fprintln(w, "Run 'vaults doctor' to diagnose issues.")
	}

	return code
}

// WrapError wraps an error with additional context
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// InvalidInput returns an error that maps to ExitInvalidInput
func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
