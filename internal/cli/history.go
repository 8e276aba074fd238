package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/domain"
)

func newHistoryCmd(e *env) *cobra.Command {
	var (
		limit      int
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history [vault]",
		Short: "Show recent backend operations",
		Long: `Show the recorded init, open and close operations, newest first.
Recording can be turned off with 'vaults config set record_history false'.

Example:
  vaults history
  vaults history Work --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}
			if a.History() == nil {
				return fmt.Errorf("operation history is disabled")
			}

			id := domain.NilVaultID
			if len(args) == 1 {
				if id, _, err = resolveVault(a, args[0]); err != nil {
					return err
				}
			}

			ops, err := a.History().List(id, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, ops)
			}
			if len(ops) == 0 {
				return writeOutput(out, "No operations recorded.\n")
			}

			names := a.Registry().Map()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tVAULT\tOPERATION\tBACKEND\tRESULT\tDURATION")
			for _, op := range ops {
				name := op.VaultID.String()
				if cfg, ok := names[op.VaultID]; ok {
					name = cfg.Name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					op.Timestamp.Local().Format("2006-01-02 15:04:05"), name, op.Type, op.Backend,
					operationResult(op), op.Duration.Round(time.Millisecond))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of records (0 for all)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	return cmd
}

func operationResult(op *domain.Operation) string {
	if op.Success {
		return "ok"
	}
	if op.ExitCode != nil {
		return fmt.Sprintf("%s (exit %d)", op.ErrorKind, *op.ExitCode)
	}
	return op.ErrorKind
}
