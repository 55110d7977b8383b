package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/logger"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var (
	chatAgent   string
	chatFiles   []string
	chatSession string
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message and print the reply",
	Long: `Send a message to the assistant and print its reply.

A new session is created unless --session names an existing one. The
server is started first when none is running and auto start is enabled.

Examples:
  # Ask a question in a new session
  ocsdk chat "explain cmd/main.go"

  # Use a specific agent and attach files
  ocsdk chat "review these" -a build -f pkg/run.go -f pkg/run_test.go

  # Continue an existing session
  ocsdk chat "and now add tests" -s ses_0001

  # Full reply as JSON
  ocsdk chat "summarize" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatAgent, "agent", "a", "", "Agent to use (e.g. build, code)")
	chatCmd.Flags().StringSliceVarP(&chatFiles, "files", "f", nil, "Files to attach to the message")
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "Existing session ID to use")
}

// ChatReply is the result of one chat exchange.
type ChatReply struct {
	SessionID string             `json:"session_id" yaml:"session_id"`
	Reply     *apiclient.Message `json:"reply,omitempty" yaml:"reply,omitempty"`
}

func runChat(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		ctx := cmd.Context()

		sessionID := chatSession
		if sessionID == "" {
			agent := chatAgent
			if agent == "" {
				agent = cmdutil.GetConfig().Client.Agent
			}
			session, err := client.CreateSession(ctx, apiclient.CreateSessionRequest{Agent: agent})
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}
			sessionID = session.ID
			logger.Debug("session created", logger.KeySessionID, sessionID)
		}

		if err := client.Chat(ctx, sessionID, apiclient.ChatRequest{Content: args[0], Files: chatFiles}); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}

		last, err := client.LastMessage(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to fetch reply: %w", err)
		}

		reply := ChatReply{SessionID: sessionID, Reply: last}
		return cmdutil.PrintResource(os.Stdout, reply, func(w io.Writer) error {
			printReply(w, reply)
			return nil
		})
	})
}

func printReply(w io.Writer, reply ChatReply) {
	p := cmdutil.Printer(w)
	p.Success("Response:")
	if reply.Reply == nil || reply.Reply.Content == "" {
		p.Println("No response received")
	} else {
		p.Println(reply.Reply.Content)
	}
	p.Println()
	p.Hint("Session ID: " + reply.SessionID)
}
