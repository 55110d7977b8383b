package session

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Long: `Delete a session and its messages.

Examples:
  # Delete with confirmation
  ocsdk session delete ses_0001

  # Delete without confirmation
  ocsdk session delete ses_0001 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		return cmdutil.RunDeleteWithConfirmation("Session", sessionID, deleteForce, func() error {
			if err := client.DeleteSession(cmd.Context(), sessionID); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
			return nil
		})
	})
}
