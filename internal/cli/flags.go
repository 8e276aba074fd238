package cli

import (
	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/util"
)

// vaultFlags are the configuration flags shared by create, add and change
type vaultFlags struct {
	name         string
	backend      string
	encryptedDir string
	mountDir     string
	sessionLock  bool
	customBinary string
}

func (f *vaultFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "vault name")
	cmd.Flags().StringVarP(&f.backend, "backend", "b", "", "backend: cryfs or gocryptfs")
	cmd.Flags().StringVar(&f.encryptedDir, "encrypted-dir", "", "directory holding the encrypted data")
	cmd.Flags().StringVar(&f.mountDir, "mount-dir", "", "directory the vault is mounted at")
	cmd.Flags().BoolVar(&f.sessionLock, "session-lock", false, "close the vault when the session locks")
	cmd.Flags().StringVar(&f.customBinary, "custom-binary", "", "use this backend binary instead of the one on PATH (empty disables)")
}

var vaultFlagNames = []string{"name", "backend", "encrypted-dir", "mount-dir", "session-lock", "custom-binary"}

// changed reports whether any vault flag was given
func (f *vaultFlags) changed(cmd *cobra.Command) bool {
	for _, name := range vaultFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply copies the flags the user set onto cfg, leaving the rest untouched
func (f *vaultFlags) apply(cmd *cobra.Command, cfg *domain.VaultConfig) error {
	flags := cmd.Flags()

	if flags.Changed("name") {
		cfg.Name = f.name
	}
	if flags.Changed("backend") {
		kind, err := domain.ParseBackendKind(f.backend)
		if err != nil {
			return util.InvalidInput("%v", err)
		}
		cfg.Backend = kind
	}
	if flags.Changed("encrypted-dir") {
		cfg.EncryptedDataDirectory = f.encryptedDir
	}
	if flags.Changed("mount-dir") {
		cfg.MountDirectory = f.mountDir
	}
	if flags.Changed("session-lock") {
		cfg.SessionLock = domain.Bool(f.sessionLock)
	}
	if flags.Changed("custom-binary") {
		if f.customBinary == "" {
			cfg.UseCustomBinary = domain.Bool(false)
			cfg.CustomBinaryPath = nil
		} else {
			cfg.UseCustomBinary = domain.Bool(true)
			cfg.CustomBinaryPath = domain.String(f.customBinary)
		}
	}

	return nil
}
