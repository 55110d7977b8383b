package session

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var messagesCmd = &cobra.Command{
	Use:   "messages <session-id>",
	Short: "Show the messages of a session",
	Long: `Print the transcript of a session, oldest message first.

Examples:
  # Show a transcript
  ocsdk session messages ses_0001

  # Export it as JSON
  ocsdk session messages ses_0001 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runMessages,
}

func runMessages(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		messages, err := client.Messages(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("failed to fetch messages: %w", err)
		}
		return cmdutil.PrintResource(os.Stdout, messages, func(w io.Writer) error {
			return printTranscript(w, messages)
		})
	})
}

func printTranscript(w io.Writer, messages []apiclient.Message) error {
	p := cmdutil.Printer(w)
	if len(messages) == 0 {
		p.Warning("No messages in this session")
		return nil
	}

	p.Printf("Found %d message(s):\n\n", len(messages))
	for _, msg := range messages {
		if msg.Role == apiclient.RoleUser {
			p.Hint("User:")
		} else {
			p.Success("Assistant:")
		}
		p.Println(msg.Content)
		p.Println()
	}
	return nil
}
