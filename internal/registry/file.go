package registry

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vault-cli/vaults/internal/domain"
)

// registryFile is the on-disk shape: identity string -> vault config
type registryFile map[string]domain.VaultConfig

func encodeRegistry(vaults domain.VaultMap) ([]byte, error) {
	file := make(registryFile, len(vaults))
	for id, cfg := range vaults {
		file[id.String()] = cfg
	}
	return yaml.Marshal(file)
}

func decodeRegistry(data []byte) (domain.VaultMap, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	vaults := make(domain.VaultMap, len(file))
	for key, cfg := range file {
		id, err := domain.ParseVaultID(key)
		if err != nil {
			return nil, err
		}
		if id == domain.NilVaultID {
			return nil, fmt.Errorf("nil vault id in registry")
		}
		vaults[id] = cfg
	}
	return vaults, nil
}
