package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/logging"
	"github.com/vault-cli/vaults/internal/store"
)

const defaultLockTimeout = 10 * time.Second

// Registry is the authoritative map of vault identity to vault configuration
type Registry struct {
	path        string
	legacyPath  string
	log         logging.Logger
	newID       func() uuid.UUID
	lockTimeout time.Duration

	mu       sync.Mutex
	vaults   domain.VaultMap
	migrated bool // vaults came from the legacy file and are not yet persisted

	obsMu        sync.Mutex
	observers    map[int]func(Event)
	nextObserver int
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithLegacyPath sets the name-keyed file migrated when the registry file is absent
func WithLegacyPath(path string) Option {
	return func(r *Registry) { r.legacyPath = path }
}

// WithIDSource replaces the random identity source
func WithIDSource(next func() uuid.UUID) Option {
	return func(r *Registry) { r.newID = next }
}

// WithLockTimeout bounds how long a write waits for the cross-process file lock
func WithLockTimeout(d time.Duration) Option {
	return func(r *Registry) { r.lockTimeout = d }
}

// New creates an empty registry persisted at path; call Load to read it
func New(path string, opts ...Option) *Registry {
	r := &Registry{
		path:        path,
		log:         logging.Nop(),
		newID:       uuid.New,
		lockTimeout: defaultLockTimeout,
		vaults:      make(domain.VaultMap),
		observers:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the registry file path
func (r *Registry) Path() string { return r.path }

// Load reads the registry file into memory, replacing the current map.
// If the file cannot be read or parsed the map is left untouched and a
// *PersistenceError is returned. If the file does not exist the map is
// populated from the legacy file instead and nothing is written.
func (r *Registry) Load() error {
	ctx := context.Background()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		migrated := MigrateLegacyVaults(r.legacyPath, r.newID, r.log)
		r.vaults = migrated
		r.migrated = len(migrated) > 0
		if r.migrated {
			r.log.Info(ctx, "migrated legacy vaults", "count", len(migrated), "from", r.legacyPath)
		}
		return nil
	}
	if err != nil {
		r.log.Error(ctx, "failed to read registry", "path", r.path, "error", err)
		return &PersistenceError{Op: "read", Path: r.path, Err: err}
	}

	vaults, err := decodeRegistry(data)
	if err != nil {
		r.log.Error(ctx, "failed to parse registry", "path", r.path, "error", err)
		return &PersistenceError{Op: "parse", Path: r.path, Err: err}
	}

	r.vaults = vaults
	r.migrated = false
	r.log.Debug(ctx, "loaded registry", "path", r.path, "count", len(vaults))
	return nil
}

// Add registers a new vault and persists the registry
func (r *Registry) Add(id domain.VaultID, cfg domain.VaultConfig) error {
	if id == domain.NilVaultID {
		return ErrNilIdentity
	}

	r.mu.Lock()
	if _, exists := r.vaults[id]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrVaultExists)
	}

	r.vaults[id] = cfg.Clone()
	if err := r.persistLocked(); err != nil {
		delete(r.vaults, id)
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.emit(Event{Type: VaultAdded, ID: id})
	return nil
}

// Remove unregisters a vault and persists the registry
func (r *Registry) Remove(id domain.VaultID) error {
	r.mu.Lock()
	prev, exists := r.vaults[id]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrVaultNotFound)
	}

	delete(r.vaults, id)
	if err := r.persistLocked(); err != nil {
		r.vaults[id] = prev
		r.mu.Unlock()
		return err
	}
	empty := len(r.vaults) == 0
	r.mu.Unlock()

	r.emit(Event{Type: VaultRemoved, ID: id}, Event{Type: Refreshed, Empty: empty})
	return nil
}

// Change replaces the configuration of a registered vault and persists the registry
func (r *Registry) Change(id domain.VaultID, cfg domain.VaultConfig) error {
	r.mu.Lock()
	prev, exists := r.vaults[id]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrVaultNotFound)
	}

	r.vaults[id] = cfg.Clone()
	if err := r.persistLocked(); err != nil {
		r.vaults[id] = prev
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.emit(Event{Type: VaultChanged, ID: id})
	return nil
}

// Save persists the current map, e.g. right after a legacy migration
func (r *Registry) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked()
}

// PendingMigration reports whether the map was migrated from the legacy file
// and has not been written yet. Identities of such entries change on every Load.
func (r *Registry) PendingMigration() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.migrated
}

// Map returns a snapshot copy of the registry
func (r *Registry) Map() domain.VaultMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vaults.Clone()
}

// Get returns the configuration of one vault
func (r *Registry) Get(id domain.VaultID) (domain.VaultConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.vaults[id]
	if !ok {
		return domain.VaultConfig{}, fmt.Errorf("%s: %w", id, ErrVaultNotFound)
	}
	return cfg.Clone(), nil
}

// Lookup resolves a vault by identity or, failing that, by its unique name
func (r *Registry) Lookup(idOrName string) (domain.VaultID, domain.VaultConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, err := uuid.Parse(strings.TrimSpace(idOrName)); err == nil {
		if cfg, ok := r.vaults[id]; ok {
			return id, cfg.Clone(), nil
		}
	}

	var (
		found   domain.VaultID
		cfg     domain.VaultConfig
		matches int
	)
	for id, c := range r.vaults {
		if c.Name == idOrName {
			found, cfg = id, c
			matches++
		}
	}

	switch matches {
	case 0:
		return domain.NilVaultID, domain.VaultConfig{}, fmt.Errorf("%s: %w", idOrName, ErrVaultNotFound)
	case 1:
		return found, cfg.Clone(), nil
	default:
		return domain.NilVaultID, domain.VaultConfig{}, fmt.Errorf("%s: %w", idOrName, ErrAmbiguousName)
	}
}

// Len returns the number of registered vaults
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vaults)
}

// persistLocked rewrites the whole registry file; r.mu must be held
func (r *Registry) persistLocked() error {
	ctx := context.Background()

	data, err := encodeRegistry(r.vaults)
	if err != nil {
		return &PersistenceError{Op: "write", Path: r.path, Err: err}
	}

	lock := store.NewFileLock(r.path)
	if err := lock.Lock(r.lockTimeout); err != nil {
		r.log.Error(ctx, "failed to lock registry", "path", r.path, "error", err)
		return &PersistenceError{Op: "write", Path: r.path, Err: err}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.log.Warn(ctx, "failed to unlock registry", "path", r.path, "error", err)
		}
	}()

	if err := store.AtomicWriteFile(r.path, data); err != nil {
		r.log.Error(ctx, "failed to write registry", "path", r.path, "error", err)
		return &PersistenceError{Op: "write", Path: r.path, Err: err}
	}

	r.migrated = false
	r.log.Debug(ctx, "wrote registry", "path", r.path, "count", len(r.vaults))
	return nil
}
