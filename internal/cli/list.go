package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(e *env) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered vaults",
		Long: `List every registered vault with its backend and directories.

Example:
  vaults list          # Table output
  vaults list --json   # Output in JSON format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			entries := sortedVaults(a.Registry().Map())
			out := cmd.OutOrStdout()

			if a.Registry().PendingMigration() {
				if err := writeOutput(cmd.ErrOrStderr(),
					"⚠️  These vaults were migrated from the old vault list and are not saved yet;\n"+
						"   their IDs change on every run. Run 'vaults migrate' to keep them.\n"); err != nil {
					return err
				}
			}

			if outputJSON {
				return writeJSON(out, entries)
			}

			if len(entries) == 0 {
				return writeOutput(out, "No vaults registered. Use 'vaults create' or 'vaults add'.\n")
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBACKEND\tENCRYPTED DATA\tMOUNT\tSESSION LOCK\tID")
			for _, v := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					v.Name, v.Backend, v.EncryptedDataDirectory, v.MountDirectory,
					yesNo(v.LocksOnSessionLock()), v.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	return cmd
}
