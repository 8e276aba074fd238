package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "vaults.yaml"), cfg.RegistryPath)
	assert.Equal(t, filepath.Join(dir, "legacy_vaults.yaml"), cfg.LegacyVaultsPath)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.HistoryPath)
	assert.True(t, cfg.RecordHistory)
	assert.Equal(t, 30*time.Second, cfg.ClipboardTTL)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.DefaultMountDirectory = "/home/u/Vaults"
	cfg.BackendTimeout = 2 * time.Minute
	cfg.HostSpawn = "never"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry_path: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
