package session

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var createAgent string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session",
	Long: `Create a new session, optionally bound to an agent.

The agent defaults to client.agent from the configuration.

Examples:
  # Create a session
  ocsdk session create

  # Create a session for the build agent and print it as YAML
  ocsdk session create -a build -o yaml`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createAgent, "agent", "a", "", "Agent to use")
}

func runCreate(cmd *cobra.Command, args []string) error {
	agent := createAgent
	if agent == "" {
		agent = cmdutil.GetConfig().Client.Agent
	}

	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		session, err := client.CreateSession(cmd.Context(), apiclient.CreateSessionRequest{Agent: agent})
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return cmdutil.PrintResourceWithSuccess(os.Stdout, session, fmt.Sprintf("Session created: %s", session.ID))
	})
}
