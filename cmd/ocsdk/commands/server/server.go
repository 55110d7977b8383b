// Package server implements commands that manage the local OpenCode server.
package server

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for server management.
var Cmd = &cobra.Command{
	Use:   "server",
	Short: "Local server management",
	Long: `Start, stop and inspect the local OpenCode server.

A server started by ocsdk keeps running in the background after the command
exits. Its PID, address and log file are recorded under
$XDG_STATE_HOME/ocsdk so later commands can find it.

Examples:
  # Start (or reuse) a server on the configured port
  ocsdk server start

  # Start on another port
  ocsdk server start --port 5000

  # Show status as JSON
  ocsdk server status -o json

  # Follow the server log
  ocsdk server logs -f

  # Stop it
  ocsdk server stop`,
}

func init() {
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(stopCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(logsCmd)
}
