package cli

import (
	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/credential"
)

func newOpenCmd(e *env) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "open <vault>",
		Short: "Mount a vault",
		Long: `Mount a vault at its mount directory. The password is passed to the backend
on stdin and forgotten as soon as the backend exits.

Example:
  vaults open Work
  echo "$PW" | vaults open Work --password-stdin`,
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

			password, err := readPassword(cmd, passwordStdin, false)
			if err != nil {
				return err
			}
			defer credential.Zero(password)

			if err := a.OpenVault(cmd.Context(), id, password); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "✓ Opened vault '%s' at %s\n", cfg.Name, cfg.MountDirectory)
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newCloseCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "close <vault>",
		Short: "Unmount a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			id, cfg, err := resolveVault(a, args[0])
			if err != nil {
				return err
			}

			if err := a.CloseVault(cmd.Context(), id); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "✓ Closed vault '%s'\n", cfg.Name)
		},
	}
}
