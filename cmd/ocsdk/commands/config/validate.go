package config

import (
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/cli/output"
	"github.com/marmos91/opencode-sdk/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the ocsdk configuration file.

Checks for syntax errors, missing required fields and invalid values, and
warns about settings that are valid but probably not what you want.

Examples:
  # Validate default config
  ocsdk config validate

  # Validate specific config file
  ocsdk config validate --config ./ocsdk.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	cmdutil.SkipConfig(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := cmdutil.Printer(out)
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", configPath(cmd))
	p.Success("Validation: OK")

	if warnings := configWarnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			p.Warning("  - " + w)
		}
	}

	_, _ = fmt.Fprintln(out, "\nConfiguration summary:")
	return printSummary(out, cfg)
}

// configWarnings lists settings that pass validation but are likely
// mistakes.
func configWarnings(cfg *config.Config) []string {
	var warnings []string

	if cfg.Server.URL != "" && cfg.Lifecycle.AutoStart {
		warnings = append(warnings, "lifecycle.auto_start is ignored because server.url is set")
	}
	if cfg.Server.URL != "" {
		if u, err := url.Parse(cfg.Server.URL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) && cfg.Server.Password != "" {
			warnings = append(warnings, "server.password is sent over plain HTTP to a non-local host")
		}
	}
	if cfg.ShouldAutoStart() && !isLoopback(cfg.Server.Hostname) && cfg.Server.Password == "" {
		warnings = append(warnings, fmt.Sprintf("a started server binds %s without a password", cfg.Server.Hostname))
	}
	if cfg.Lifecycle.StartupTimeout < cfg.Lifecycle.HealthCheckTimeout {
		warnings = append(warnings, "lifecycle.startup_timeout is shorter than lifecycle.health_check_timeout")
	}
	if cfg.Metrics.Textfile != "" && !cfg.Metrics.Enabled {
		warnings = append(warnings, "metrics.textfile is set but metrics.enabled is false")
	}
	return warnings
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func printSummary(w io.Writer, cfg *config.Config) error {
	var kv output.KeyValues
	kv.Add("Server URL", cfg.BaseURL())
	kv.Add("Auto start", cmdutil.BoolToYesNo(cfg.ShouldAutoStart()))
	kv.Add("Command", cfg.Lifecycle.Command)
	kv.Add("Startup timeout", cfg.Lifecycle.StartupTimeout.String())
	kv.Add("Auth", cmdutil.BoolToYesNo(cfg.Server.Password != ""))
	kv.Add("Log level", cfg.Logging.Level)
	kv.Add("Tracing", cmdutil.BoolToYesNo(cfg.Telemetry.Enabled))
	kv.Add("Metrics", cmdutil.BoolToYesNo(cfg.Metrics.Enabled))
	return output.PrintKeyValues(w, kv)
}
