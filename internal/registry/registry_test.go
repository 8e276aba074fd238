package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-cli/vaults/internal/domain"
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithLegacyPath(filepath.Join(dir, "legacy_vaults.yaml"))}, opts...)
	r := New(filepath.Join(dir, "vaults.yaml"), opts...)
	require.NoError(t, r.Load())
	return r
}

func sampleConfig(kind domain.BackendKind) domain.VaultConfig {
	return domain.VaultConfig{
		Name:                   "Work",
		Backend:                kind,
		EncryptedDataDirectory: "/home/u/.enc/work",
		MountDirectory:         "/home/u/Vaults/work",
		SessionLock:            domain.Bool(true),
		UseCustomBinary:        domain.Bool(true),
		CustomBinaryPath:       domain.String("/opt/bin/gocryptfs"),
	}
}

func TestRegistry_AddReloadRoundTrip(t *testing.T) {
	for _, kind := range domain.AllBackendKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			r := newTestRegistry(t)

			id := r.GenerateID()
			require.NoError(t, r.Add(id, sampleConfig(kind)))

			minimal := domain.VaultConfig{Name: "Min", Backend: kind, EncryptedDataDirectory: "/e", MountDirectory: "/m"}
			require.NoError(t, r.Add(r.GenerateID(), minimal))

			reloaded := New(r.Path())
			require.NoError(t, reloaded.Load())
			assert.Equal(t, r.Map(), reloaded.Map())
		})
	}
}

func TestRegistry_FilePermissions(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(r.GenerateID(), sampleConfig(domain.Gocryptfs)))

	info, err := os.Stat(r.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRegistry_ChangeIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	id := r.GenerateID()
	require.NoError(t, r.Add(id, sampleConfig(domain.CryFS)))

	changed := sampleConfig(domain.CryFS)
	changed.MountDirectory = "/home/u/Vaults/other"

	require.NoError(t, r.Change(id, changed))
	first, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	require.NoError(t, r.Change(id, changed))
	second, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	assert.Equal(t, first, second)

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "/home/u/Vaults/other", got.MountDirectory)
}

func TestRegistry_Remove(t *testing.T) {
	r := newTestRegistry(t)
	a, b := r.GenerateID(), uuid.New()
	require.NoError(t, r.Add(a, sampleConfig(domain.CryFS)))
	require.NoError(t, r.Add(b, sampleConfig(domain.Gocryptfs)))

	require.NoError(t, r.Remove(a))
	assert.Equal(t, 1, r.Len())

	reloaded := New(r.Path())
	require.NoError(t, reloaded.Load())
	_, err := reloaded.Get(a)
	assert.ErrorIs(t, err, ErrVaultNotFound)
	_, err = reloaded.Get(b)
	assert.NoError(t, err)
}

func TestRegistry_Errors(t *testing.T) {
	r := newTestRegistry(t)
	id := uuid.New()

	assert.ErrorIs(t, r.Add(uuid.Nil, sampleConfig(domain.CryFS)), ErrNilIdentity)
	assert.ErrorIs(t, r.Remove(id), ErrVaultNotFound)
	assert.ErrorIs(t, r.Change(id, sampleConfig(domain.CryFS)), ErrVaultNotFound)

	require.NoError(t, r.Add(id, sampleConfig(domain.CryFS)))
	assert.ErrorIs(t, r.Add(id, sampleConfig(domain.CryFS)), ErrVaultExists)
}

func TestRegistry_MapIsSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	id := r.GenerateID()
	require.NoError(t, r.Add(id, sampleConfig(domain.Gocryptfs)))

	snap := r.Map()
	cfg := snap[id]
	*cfg.SessionLock = false
	delete(snap, id)

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.True(t, got.LocksOnSessionLock())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_StoresSameDirectories(t *testing.T) {
	r := newTestRegistry(t)
	id := r.GenerateID()
	cfg := domain.VaultConfig{Name: "Same", Backend: domain.Gocryptfs, EncryptedDataDirectory: "/x", MountDirectory: "/x"}

	require.NoError(t, r.Add(id, cfg))

	reloaded := New(r.Path())
	require.NoError(t, reloaded.Load())
	got, err := reloaded.Get(id)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestRegistry_Lookup(t *testing.T) {
	r := newTestRegistry(t)
	work, dup1, dup2 := uuid.New(), uuid.New(), uuid.New()

	cfg := sampleConfig(domain.CryFS)
	require.NoError(t, r.Add(work, cfg))
	cfg.Name = "Twin"
	require.NoError(t, r.Add(dup1, cfg))
	require.NoError(t, r.Add(dup2, cfg))

	id, got, err := r.Lookup(work.String())
	require.NoError(t, err)
	assert.Equal(t, work, id)
	assert.Equal(t, "Work", got.Name)

	id, _, err = r.Lookup("Work")
	require.NoError(t, err)
	assert.Equal(t, work, id)

	_, _, err = r.Lookup("Twin")
	assert.ErrorIs(t, err, ErrAmbiguousName)

	_, _, err = r.Lookup("Nope")
	assert.ErrorIs(t, err, ErrVaultNotFound)
}

func TestRegistry_CorruptFileKeepsMap(t *testing.T) {
	r := newTestRegistry(t)
	id := r.GenerateID()
	require.NoError(t, r.Add(id, sampleConfig(domain.Gocryptfs)))

	require.NoError(t, os.WriteFile(r.Path(), []byte("{{ not yaml"), 0o600))

	err := r.Load()
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "parse", perr.Op)
	assert.Equal(t, 1, r.Len())

	fresh := New(r.Path())
	assert.Error(t, fresh.Load())
	assert.Equal(t, 0, fresh.Len())
}

func TestRegistry_InvalidIdentityKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not-a-uuid:\n  name: x\n  backend: CryFS\n"), 0o600))

	r := New(path)
	assert.Error(t, r.Load())
}

func TestRegistry_WriteFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	r := New(filepath.Join(blocker, "vaults.yaml"))

	var events []Event
	r.Subscribe(func(ev Event) { events = append(events, ev) })

	err := r.Add(uuid.New(), sampleConfig(domain.CryFS))
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "write", perr.Op)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, events)
}

func TestRegistry_Events(t *testing.T) {
	r := newTestRegistry(t)

	var events []Event
	unsubscribe := r.Subscribe(func(ev Event) { events = append(events, ev) })

	a, b := uuid.New(), uuid.New()
	require.NoError(t, r.Add(a, sampleConfig(domain.CryFS)))
	require.NoError(t, r.Add(b, sampleConfig(domain.CryFS)))
	require.NoError(t, r.Change(a, sampleConfig(domain.Gocryptfs)))
	require.NoError(t, r.Remove(a))
	require.NoError(t, r.Remove(b))

	assert.Equal(t, []Event{
		{Type: VaultAdded, ID: a},
		{Type: VaultAdded, ID: b},
		{Type: VaultChanged, ID: a},
		{Type: VaultRemoved, ID: a},
		{Type: Refreshed, Empty: false},
		{Type: VaultRemoved, ID: b},
		{Type: Refreshed, Empty: true},
	}, events)

	unsubscribe()
	require.NoError(t, r.Add(a, sampleConfig(domain.CryFS)))
	assert.Len(t, events, 7)
}

func TestRegistry_ObserverMayReadRegistry(t *testing.T) {
	r := newTestRegistry(t)

	var seen int
	r.Subscribe(func(Event) { seen = r.Len() })

	require.NoError(t, r.Add(uuid.New(), sampleConfig(domain.CryFS)))
	assert.Equal(t, 1, seen)
}
