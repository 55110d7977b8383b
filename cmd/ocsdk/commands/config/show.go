package config

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/cli/output"
	"github.com/marmos91/opencode-sdk/pkg/config"
)

const redacted = "********"

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the configuration after merging the file, OPENCODE_* environment
variables, command line flags and defaults. The server password is redacted.

Table output prints YAML.

Examples:
  # Show as YAML
  ocsdk config show

  # Show as JSON
  ocsdk config show -o json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := redact(cmdutil.GetConfig())

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.PrintJSON(os.Stdout, cfg)
	}
	return output.PrintYAML(os.Stdout, cfg)
}

// redact returns a copy of cfg without secrets.
func redact(cfg *config.Config) *config.Config {
	c := *cfg
	if c.Server.Password != "" {
		c.Server.Password = redacted
	}
	return &c
}
