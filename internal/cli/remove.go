package cli

import (
	"github.com/spf13/cobra"
)

func newRemoveCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <vault>",
		Aliases: []string{"rm"},
		Short:   "Unregister a vault",
		Long: `Remove a vault from the list. The encrypted data directory is left on disk
and can be registered again with 'vaults add'. Its operation history is purged.

Example:
  vaults remove Work
  vaults remove Work --yes`,
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

			if !yes {
				ok, err := PromptConfirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
					"Remove vault '"+cfg.Name+"'?", false)
				if err != nil {
					return err
				}
				if !ok {
					return writeOutput(cmd.OutOrStdout(), "Cancelled.\n")
				}
			}

			if err := a.RemoveVault(cmd.Context(), id); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "✓ Removed vault '%s'\n", cfg.Name)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
