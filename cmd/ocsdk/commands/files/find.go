package files

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/cli/output"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var findCmd = &cobra.Command{
	Use:   "find <pattern>",
	Short: "Find files matching a pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		paths, err := client.FindFiles(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to find files: %w", err)
		}

		table := output.NewTable("PATH")
		for _, p := range paths {
			table.AddRow(p)
		}
		return cmdutil.PrintOutput(os.Stdout, paths, len(paths) == 0, "No files found.", table)
	})
}
