package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/clipboard"
)

func newPathCmd(e *env) *cobra.Command {
	var copyPath bool

	cmd := &cobra.Command{
		Use:   "path <vault>",
		Short: "Print the mount directory of a vault",
		Long: `Print the mount directory of a vault.

With --copy the directory is copied to the clipboard instead and cleared
again after clipboard_ttl; the command waits until then.

Example:
  cd "$(vaults path Work)"
  vaults path Work --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			_, cfg, err := resolveVault(a, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !copyPath {
				return writeOutput(out, "%s\n", cfg.MountDirectory)
			}

			if !clipboard.IsAvailable(e.board) {
				return fmt.Errorf("clipboard not available, run without --copy")
			}

			ttl := e.cfg.ClipboardTTL
			msg := fmt.Sprintf("✓ Mount directory of '%s' copied to clipboard", cfg.Name)
			if ttl > 0 {
				msg += fmt.Sprintf(" (clears in %v)", ttl)
			}
			if err := writeOutput(out, "%s\n", msg); err != nil {
				return err
			}

			return clipboard.CopyWithTimeout(cmd.Context(), e.board, cfg.MountDirectory, ttl)
		},
	}

	cmd.Flags().BoolVarP(&copyPath, "copy", "c", false, "copy to clipboard")
	return cmd
}
