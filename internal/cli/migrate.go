package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Save vaults migrated from the old vault list",
		Long: `Write vaults read from the old name-keyed vault list to the registry.

Until this runs, migrated vaults get new identities on every start. The old
vault list itself is never modified.

Example:
  vaults migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			n, err := a.SaveMigration(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				return writeOutput(cmd.OutOrStdout(), "Nothing to migrate.\n")
			}
			return writeOutput(cmd.OutOrStdout(), "✅ Saved %d migrated vault(s) to %s\n", n, a.Registry().Path())
		},
	}
}
