package cli

import (
	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/util"
)

func newChangeCmd(e *env) *cobra.Command {
	var flags vaultFlags

	cmd := &cobra.Command{
		Use:   "change <vault>",
		Short: "Change the configuration of a vault",
		Long: `Change the configuration of a registered vault. Only the given flags are
updated. The vault is identified by its id or its unique name.

Example:
  vaults change Work --mount-dir ~/Mounts/Work
  vaults change Work --session-lock
  vaults change Work --custom-binary ""   # Use the binary on PATH again`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			id, cfg, err := resolveVault(a, args[0])
			if err != nil {
				return err
			}
			if !flags.changed(cmd) {
				return util.InvalidInput("nothing to change")
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}

			if err := a.ChangeVault(cmd.Context(), id, cfg); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "✓ Updated vault '%s'\n", cfg.Name)
		},
	}

	flags.register(cmd)
	return cmd
}
