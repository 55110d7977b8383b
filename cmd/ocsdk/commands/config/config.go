// Package config implements configuration commands for ocsdk.
package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/pkg/config"
)

// Cmd is the parent command for configuration management.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Create, inspect and validate the ocsdk configuration file.

The file lives at $XDG_CONFIG_HOME/ocsdk/config.yaml unless --config is
given. Every key can be overridden with an OPENCODE_* environment variable,
e.g. OPENCODE_SERVER_PORT=5000.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(initCmd)
}

// configPath returns the --config value or the default location.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	return path
}
