package registry

import (
	"errors"
	"fmt"
)

// Error variables for registry operations
var (
	// ErrVaultNotFound is returned when the identity is not in the registry
	ErrVaultNotFound = errors.New("vault not found")
	// ErrVaultExists is returned when adding an identity that is already registered
	ErrVaultExists = errors.New("vault already exists")
	// ErrNilIdentity is returned when adding the all-zero identity
	ErrNilIdentity = errors.New("vault identity is nil")
	// ErrAmbiguousName is returned when a name matches more than one vault
	ErrAmbiguousName = errors.New("vault name is ambiguous")
)

// PersistenceError means the registry file could not be read, parsed or written
type PersistenceError struct {
	Op   string // "read", "parse", "write"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s registry %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
