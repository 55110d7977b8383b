package files

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var readCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print the contents of a file",
	Long: `Print a file as the server sees it.

Table output prints the raw contents. JSON and YAML wrap them with the path.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

// FileContent is a file read from the server.
type FileContent struct {
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

func runRead(cmd *cobra.Command, args []string) error {
	path := args[0]

	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		content, err := client.ReadFile(cmd.Context(), path)
		if err != nil {
			if apiclient.IsNotFound(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return fmt.Errorf("failed to read file: %w", err)
		}
		return cmdutil.PrintResource(os.Stdout, FileContent{Path: path, Content: content}, func(w io.Writer) error {
			_, err := io.WriteString(w, content)
			return err
		})
	})
}
