package session

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var abortCmd = &cobra.Command{
	Use:   "abort <session-id>",
	Short: "Abort the running operation of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAbort,
}

func runAbort(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		if err := client.AbortSession(cmd.Context(), sessionID); err != nil {
			return fmt.Errorf("failed to abort session: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Operation in session '%s' aborted", sessionID))
		return nil
	})
}
