// Package domain defines the core data structures shared by the vault manager.
// It contains the vault identity, backend kinds, and the persisted vault configuration.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VaultID is the immutable identity of a vault in the registry
type VaultID = uuid.UUID

// NilVaultID is the all-zero sentinel identity
var NilVaultID = uuid.Nil

// ParseVaultID parses the canonical text form of a vault identity
func ParseVaultID(s string) (VaultID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid vault id %q: %w", s, err)
	}
	return id, nil
}

// BackendKind identifies the external encryption tool driving a vault
type BackendKind int

// Supported backend kinds
const (
	CryFS BackendKind = iota
	Gocryptfs
	numBackendKinds
)

// NumBackendKinds is the number of supported backend kinds
const NumBackendKinds = int(numBackendKinds)

// AllBackendKinds returns every supported backend kind in probing order
func AllBackendKinds() []BackendKind {
	kinds := make([]BackendKind, 0, NumBackendKinds)
	for k := BackendKind(0); k < numBackendKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the display name of the backend kind
func (k BackendKind) String() string {
	switch k {
	case CryFS:
		return "CryFS"
	case Gocryptfs:
		return "Gocryptfs"
	default:
		return fmt.Sprintf("BackendKind(%d)", int(k))
	}
}

// ParseBackendKind parses a backend display name, ignoring case
func ParseBackendKind(s string) (BackendKind, error) {
	for _, k := range AllBackendKinds() {
		if strings.EqualFold(strings.TrimSpace(s), k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown backend %q (valid: cryfs, gocryptfs)", s)
}

// MarshalText implements encoding.TextMarshaler
func (k BackendKind) MarshalText() ([]byte, error) {
	switch k {
	case CryFS, Gocryptfs:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown backend kind %d", int(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *BackendKind) UnmarshalText(text []byte) error {
	parsed, err := ParseBackendKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// VaultConfig is the persisted attribute set of one vault. It never holds a secret.
type VaultConfig struct {
	Name                   string      `yaml:"name" json:"name"`
	Backend                BackendKind `yaml:"backend" json:"backend"`
	EncryptedDataDirectory string      `yaml:"encrypted_data_directory" json:"encrypted_data_directory"`
	MountDirectory         string      `yaml:"mount_directory" json:"mount_directory"`
	SessionLock            *bool       `yaml:"session_lock,omitempty" json:"session_lock,omitempty"`
	UseCustomBinary        *bool       `yaml:"use_custom_binary,omitempty" json:"use_custom_binary,omitempty"`
	CustomBinaryPath       *string     `yaml:"custom_binary_path,omitempty" json:"custom_binary_path,omitempty"`
}

// BinaryPath returns the custom binary when it is enabled and set, otherwise def
func (c VaultConfig) BinaryPath(def string) string {
	if c.UseCustomBinary != nil && *c.UseCustomBinary && c.CustomBinaryPath != nil && *c.CustomBinaryPath != "" {
		return *c.CustomBinaryPath
	}
	return def
}

// LocksOnSessionLock reports whether the vault should close when the desktop session locks
func (c VaultConfig) LocksOnSessionLock() bool {
	return c.SessionLock != nil && *c.SessionLock
}

// Clone returns a deep copy so optional fields are not shared between copies
func (c VaultConfig) Clone() VaultConfig {
	out := c
	if c.SessionLock != nil {
		v := *c.SessionLock
		out.SessionLock = &v
	}
	if c.UseCustomBinary != nil {
		v := *c.UseCustomBinary
		out.UseCustomBinary = &v
	}
	if c.CustomBinaryPath != nil {
		v := *c.CustomBinaryPath
		out.CustomBinaryPath = &v
	}
	return out
}

// VaultMap maps vault identities to their configuration
type VaultMap map[VaultID]VaultConfig

// Clone returns a deep copy of the map
func (m VaultMap) Clone() VaultMap {
	out := make(VaultMap, len(m))
	for id, cfg := range m {
		out[id] = cfg.Clone()
	}
	return out
}

// Bool returns a pointer to b
func Bool(b bool) *bool { return &b }

// String returns a pointer to s
func String(s string) *string { return &s }

// OperationType names a backend operation recorded in the history
type OperationType string

// Recorded operation types
const (
	OpInit  OperationType = "init"
	OpOpen  OperationType = "open"
	OpClose OperationType = "close"
)

// Operation is one recorded backend invocation
type Operation struct {
	VaultID   VaultID       `json:"vault_id"`
	Type      OperationType `json:"type"`
	Backend   BackendKind   `json:"backend"`
	Success   bool          `json:"success"`
	ErrorKind string        `json:"error_kind,omitempty"`
	ExitCode  *int          `json:"exit_code,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}
