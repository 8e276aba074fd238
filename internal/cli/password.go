package cli

import (
	"github.com/spf13/cobra"
)

// readPassword reads from stdin when asked to or when stdin is not a terminal,
// otherwise it prompts without echo.
func readPassword(cmd *cobra.Command, fromStdin, confirm bool) ([]byte, error) {
	if fromStdin || !isTerminal() {
		return ReadPasswordLine(cmd.InOrStdin())
	}
	if confirm {
		return PromptPasswordConfirm(cmd.ErrOrStderr(), "Password: ")
	}
	return PromptPassword(cmd.ErrOrStderr(), "Password: ")
}
