package files

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
)

var searchPath string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for text in files",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchPath, "path", "p", "", "Path to search in")
}

// SearchResults is a list of matches for table rendering.
type SearchResults []apiclient.SearchResult

// Headers implements TableRenderer.
func (sr SearchResults) Headers() []string {
	return []string{"PATH", "LINE", "CONTENT"}
}

// Rows implements TableRenderer.
func (sr SearchResults) Rows() [][]string {
	rows := make([][]string, 0, len(sr))
	for _, r := range sr {
		line := "-"
		if r.Line > 0 {
			line = strconv.Itoa(r.Line)
		}
		rows = append(rows, []string{r.Path, line, cmdutil.EmptyOr(r.Content, "-")})
	}
	return rows
}

func runSearch(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd, func(client *apiclient.Client) error {
		results, err := client.SearchFiles(cmd.Context(), args[0], searchPath)
		if err != nil {
			return fmt.Errorf("failed to search files: %w", err)
		}
		return cmdutil.PrintOutput(os.Stdout, results, len(results) == 0, "No results found.", SearchResults(results))
	})
}
