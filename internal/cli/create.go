package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/app"
	"github.com/vault-cli/vaults/internal/credential"
	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/util"
)

func newCreateCmd(e *env) *cobra.Command {
	var (
		flags         vaultFlags
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new encrypted vault",
		Long: `Create a new encrypted filesystem and register it.

Missing directories are created. When --encrypted-dir or --mount-dir is
omitted the configured default directory joined with the vault name is used.
Without --backend the first installed backend is chosen.

Example:
  vaults create --name Work --backend gocryptfs
  echo "$PW" | vaults create --name Work --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			cfg, err := vaultConfigFromFlags(cmd, a, &flags)
			if err != nil {
				return err
			}
			if err := app.ValidateConfig(cfg); err != nil {
				return err
			}

			password, err := readPassword(cmd, passwordStdin, true)
			if err != nil {
				return err
			}
			defer credential.Zero(password)

			id, err := a.CreateVault(cmd.Context(), cfg, password)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), "✓ Created vault '%s' (%s)\n", cfg.Name, id)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newAddCmd(e *env) *cobra.Command {
	var flags vaultFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an existing encrypted vault",
		Long: `Register an encrypted directory that was created earlier, by this tool or
by the backend directly. Nothing is written to the encrypted directory.

Example:
  vaults add --name Archive --backend cryfs --encrypted-dir ~/.archive --mount-dir ~/Archive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			cfg, err := vaultConfigFromFlags(cmd, a, &flags)
			if err != nil {
				return err
			}

			id, err := a.AddVault(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), "✓ Added vault '%s' (%s)\n", cfg.Name, id)
		},
	}

	flags.register(cmd)
	return cmd
}

// vaultConfigFromFlags builds a new vault configuration from flags and settings defaults
func vaultConfigFromFlags(cmd *cobra.Command, a *app.App, flags *vaultFlags) (domain.VaultConfig, error) {
	var cfg domain.VaultConfig
	if err := flags.apply(cmd, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Name == "" {
		return cfg, util.InvalidInput("--name is required")
	}

	if !cmd.Flags().Changed("backend") {
		available := a.RefreshBackends(cmd.Context())
		if len(available) == 0 {
			return cfg, fmt.Errorf("no backend installed: install cryfs or gocryptfs")
		}
		cfg.Backend = available[0]
	}

	return a.WithDefaults(cfg), nil
}
