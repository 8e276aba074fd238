package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-cli/vaults/internal/domain"
)

const legacyVaultsYAML = `Work:
  backend: Gocryptfs
  encrypted_data_directory: /home/u/.enc/work
  mount_directory: /home/u/Vaults/Work
  session_lock: true
  use_custom_binary: true
  custom_binary_path: /opt/gocryptfs
  last_opened: 2021-05-01
Personal:
  backend: CryFS
  encrypted_data_directory: /home/u/.enc/personal
  mount_directory: /home/u/Vaults/Personal
`

func writeLegacy(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "legacy_vaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMigrateLegacyVaults(t *testing.T) {
	path := writeLegacy(t, t.TempDir(), legacyVaultsYAML)

	vaults := MigrateLegacyVaults(path, uuid.New, nil)
	require.Len(t, vaults, 2)

	byName := make(map[string]domain.VaultConfig)
	for id, cfg := range vaults {
		assert.NotEqual(t, uuid.Nil, id)
		byName[cfg.Name] = cfg
	}

	work := byName["Work"]
	assert.Equal(t, domain.Gocryptfs, work.Backend)
	assert.Equal(t, "/home/u/.enc/work", work.EncryptedDataDirectory)
	assert.Equal(t, "/home/u/Vaults/Work", work.MountDirectory)
	require.NotNil(t, work.SessionLock)
	assert.True(t, *work.SessionLock)
	require.NotNil(t, work.UseCustomBinary)
	assert.True(t, *work.UseCustomBinary)
	require.NotNil(t, work.CustomBinaryPath)
	assert.Equal(t, "/opt/gocryptfs", *work.CustomBinaryPath)

	personal := byName["Personal"]
	assert.Equal(t, domain.CryFS, personal.Backend)
	assert.Equal(t, "/home/u/.enc/personal", personal.EncryptedDataDirectory)
	assert.Equal(t, "/home/u/Vaults/Personal", personal.MountDirectory)
	assert.Nil(t, personal.SessionLock)
	assert.Nil(t, personal.CustomBinaryPath)
}

func TestMigrateLegacyVaults_DistinctIDsFromCollidingSource(t *testing.T) {
	path := writeLegacy(t, t.TempDir(), legacyVaultsYAML)
	same := uuid.New()

	vaults := MigrateLegacyVaults(path, scriptedIDs([]uuid.UUID{same, same, same}), nil)
	require.Len(t, vaults, 2)
	_, ok := vaults[same]
	assert.True(t, ok)
}

func TestMigrateLegacyVaults_MissingOrBroken(t *testing.T) {
	dir := t.TempDir()

	assert.Empty(t, MigrateLegacyVaults(filepath.Join(dir, "absent.yaml"), uuid.New, nil))
	assert.Empty(t, MigrateLegacyVaults("", uuid.New, nil))

	broken := writeLegacy(t, dir, "Work: [unterminated")
	assert.Empty(t, MigrateLegacyVaults(broken, uuid.New, nil))

	badBackend := writeLegacy(t, dir, "Work:\n  backend: VeraCrypt\n")
	assert.Empty(t, MigrateLegacyVaults(badBackend, uuid.New, nil))
}

func TestRegistry_LoadMigratesWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	legacy := writeLegacy(t, dir, legacyVaultsYAML)
	path := filepath.Join(dir, "vaults.yaml")

	r := New(path, WithLegacyPath(legacy))
	require.NoError(t, r.Load())
	assert.Equal(t, 2, r.Len())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "migration must not write the registry")

	// The next mutation persists the migrated entries with it.
	require.NoError(t, r.Add(r.GenerateID(), sampleConfig(domain.CryFS)))

	reloaded := New(path, WithLegacyPath(legacy))
	require.NoError(t, reloaded.Load())
	assert.Equal(t, r.Map(), reloaded.Map())

	original, err := os.ReadFile(legacy)
	require.NoError(t, err)
	assert.Equal(t, legacyVaultsYAML, string(original))
}

func TestRegistry_SaveKeepsMigratedIdentities(t *testing.T) {
	dir := t.TempDir()
	legacy := writeLegacy(t, dir, legacyVaultsYAML)
	path := filepath.Join(dir, "vaults.yaml")

	r := New(path, WithLegacyPath(legacy))
	require.NoError(t, r.Load())
	assert.True(t, r.PendingMigration())

	require.NoError(t, r.Save())
	assert.False(t, r.PendingMigration())

	reloaded := New(path, WithLegacyPath(legacy))
	require.NoError(t, reloaded.Load())
	assert.False(t, reloaded.PendingMigration())
	assert.Equal(t, r.Map(), reloaded.Map())
}

func TestRegistry_NoPendingMigrationWithoutLegacyFile(t *testing.T) {
	dir := t.TempDir()
	r := New(filepath.Join(dir, "vaults.yaml"), WithLegacyPath(filepath.Join(dir, "missing.yaml")))
	require.NoError(t, r.Load())
	assert.False(t, r.PendingMigration())
}
