package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/store"
)

func newExportCmd(e *env) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export vault definitions",
		Long: `Export the registered vault definitions as JSON for backup or migration.
Only names, backends, directories and options are exported; the encrypted
data itself stays where it is and no password is ever included.

Example:
  vaults export > vaults.json
  vaults export --path vaults.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			entries := sortedVaults(a.Registry().Map())
			if exportPath == "" {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			if err := store.AtomicWriteFile(exportPath, append(data, '\n')); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), "✓ Exported %d vault(s) to %s\n", len(entries), exportPath)
		},
	}

	cmd.Flags().StringVar(&exportPath, "path", "", "Export file path (default stdout)")
	return cmd
}
