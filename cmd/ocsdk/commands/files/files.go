// Package files implements project file commands for ocsdk.
package files

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for file operations.
var Cmd = &cobra.Command{
	Use:   "files",
	Short: "Search and read project files",
	Long: `Search, find and read files in the project the server is running in.

Examples:
  # Search file contents
  ocsdk files search "func main" -p cmd

  # Find files by name
  ocsdk files find "*.go"

  # Print a file
  ocsdk files read cmd/main.go

  # Look up code symbols
  ocsdk files symbols Run`,
}

func init() {
	Cmd.AddCommand(searchCmd)
	Cmd.AddCommand(findCmd)
	Cmd.AddCommand(readCmd)
	Cmd.AddCommand(symbolsCmd)
}
