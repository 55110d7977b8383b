// Package session implements session management commands for ocsdk.
package session

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for session management.
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Session management",
	Long: `Manage conversations on the OpenCode server.

Examples:
  # List sessions
  ocsdk session list

  # Create a session for the build agent
  ocsdk session create -a build

  # Show the transcript of a session
  ocsdk session messages ses_0001

  # Abort the running operation of a session
  ocsdk session abort ses_0001

  # Delete a session without confirmation
  ocsdk session delete ses_0001 --force`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(messagesCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(abortCmd)
}
