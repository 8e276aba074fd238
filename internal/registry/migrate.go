package registry

import (
	"context"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/logging"
)

// legacyVault is one entry of the name-keyed vault file
type legacyVault struct {
	Backend                domain.BackendKind `yaml:"backend"`
	EncryptedDataDirectory string             `yaml:"encrypted_data_directory"`
	MountDirectory         string             `yaml:"mount_directory"`
	SessionLock            *bool              `yaml:"session_lock"`
	UseCustomBinary        *bool              `yaml:"use_custom_binary"`
	CustomBinaryPath       *string            `yaml:"custom_binary_path"`
}

// MigrateLegacyVaults reads the name-keyed legacy vault file and returns its
// entries under freshly minted identities. The legacy file is never modified.
// A missing or unparseable file yields an empty map.
func MigrateLegacyVaults(path string, newID func() uuid.UUID, log logging.Logger) domain.VaultMap {
	vaults := make(domain.VaultMap)
	if path == "" {
		return vaults
	}
	if log == nil {
		log = logging.Nop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn(context.Background(), "failed to read legacy vaults", "path", path, "error", err)
		}
		return vaults
	}

	var legacy map[string]legacyVault
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		log.Warn(context.Background(), "failed to parse legacy vaults", "path", path, "error", err)
		return vaults
	}

	for name, lv := range legacy {
		id := generateID(vaults, newID)
		if id == uuid.Nil {
			log.Error(context.Background(), "could not mint identity for legacy vault", "name", name)
			continue
		}
		vaults[id] = domain.VaultConfig{
			Name:                   name,
			Backend:                lv.Backend,
			EncryptedDataDirectory: lv.EncryptedDataDirectory,
			MountDirectory:         lv.MountDirectory,
			SessionLock:            lv.SessionLock,
			UseCustomBinary:        lv.UseCustomBinary,
			CustomBinaryPath:       lv.CustomBinaryPath,
		}
	}

	return vaults
}
