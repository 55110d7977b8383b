package session

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Long: `List all sessions on the OpenCode server.

Examples:
  # List sessions as table
  ocsdk session list

  # List as JSON
  ocsdk session list -o json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// SessionList is a list of sessions for table rendering.
type SessionList []apiclient.Session

// Headers implements TableRenderer.
func (sl SessionList) Headers() []string {
	return []string{"ID", "TITLE", "AGENT"}
}

// Rows implements TableRenderer.
func (sl SessionList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		rows = append(rows, []string{s.ID, cmdutil.EmptyOr(s.Title, "-"), cmdutil.EmptyOr(s.Agent, "-")})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		sessions, err := client.ListSessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		return cmdutil.PrintOutput(os.Stdout, sessions, len(sessions) == 0, "No sessions found.", SessionList(sessions))
	})
}
