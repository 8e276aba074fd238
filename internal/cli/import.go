package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/app"
	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/util"
)

// Conflict resolution modes of import
const (
	conflictSkip      = "skip"
	conflictOverwrite = "overwrite"
	conflictDuplicate = "duplicate"
)

func newImportCmd(e *env) *cobra.Command {
	var importConflict string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import vault definitions",
		Long: `Import vault definitions written by 'vaults export'. Every imported vault
gets a fresh id. Conflict resolution decides what happens when a vault with
the same name is already registered.

Example:
  vaults import vaults.json
  vaults import vaults.json --conflict overwrite
  vaults import vaults.json --conflict duplicate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch importConflict {
			case conflictSkip, conflictOverwrite, conflictDuplicate:
			default:
				return util.InvalidInput("invalid conflict mode: %s (valid: skip, overwrite, duplicate)", importConflict)
			}

			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			var entries []vaultEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return util.InvalidInput("failed to parse import file: %v", err)
			}

			added, replaced, skipped, err := importVaults(cmd, a, entries, importConflict)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), "✓ Imported %d vault(s): %d added, %d replaced, %d skipped\n",
				added+replaced, added, replaced, skipped)
		},
	}

	cmd.Flags().StringVar(&importConflict, "conflict", conflictSkip, "Conflict resolution (skip|overwrite|duplicate)")
	return cmd
}

func importVaults(cmd *cobra.Command, a *app.App, entries []vaultEntry, conflict string) (added, replaced, skipped int, err error) {
	byName := make(map[string]domain.VaultID)
	for id, cfg := range a.Registry().Map() {
		byName[cfg.Name] = id
	}

	for _, entry := range entries {
		existing, found := byName[entry.Name]

		switch {
		case found && conflict == conflictSkip:
			skipped++
			continue
		case found && conflict == conflictOverwrite:
			if err := a.ChangeVault(cmd.Context(), existing, entry.VaultConfig); err != nil {
				return added, replaced, skipped, fmt.Errorf("import %s: %w", entry.Name, err)
			}
			replaced++
			continue
		}

		id, err := a.AddVault(cmd.Context(), entry.VaultConfig)
		if err != nil {
			return added, replaced, skipped, fmt.Errorf("import %s: %w", entry.Name, err)
		}
		byName[entry.Name] = id
		added++
	}

	return added, replaced, skipped, nil
}
