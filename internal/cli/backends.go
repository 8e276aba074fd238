package cli

import (
	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/domain"
)

func newBackendsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "Show which backends are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}

			a.RefreshBackends(cmd.Context())
			out := cmd.OutOrStdout()
			for _, kind := range domain.AllBackendKinds() {
				mark := "❌ not found"
				if a.Backends().IsAvailable(kind) {
					mark = "✅ available"
				}
				if err := writeOutput(out, "%-10s %s\n", kind, mark); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
