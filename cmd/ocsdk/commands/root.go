// Package commands implements the ocsdk command line.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	configcmd "github.com/marmos91/opencode-sdk/cmd/ocsdk/commands/config"
	filescmd "github.com/marmos91/opencode-sdk/cmd/ocsdk/commands/files"
	servercmd "github.com/marmos91/opencode-sdk/cmd/ocsdk/commands/server"
	sessioncmd "github.com/marmos91/opencode-sdk/cmd/ocsdk/commands/session"
	"github.com/marmos91/opencode-sdk/internal/logger"
	"github.com/marmos91/opencode-sdk/internal/telemetry"
	"github.com/marmos91/opencode-sdk/pkg/config"
	"github.com/marmos91/opencode-sdk/pkg/metrics"
	_ "github.com/marmos91/opencode-sdk/pkg/metrics/prometheus"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// telemetryShutdownTimeout bounds the span flush at exit.
const telemetryShutdownTimeout = 5 * time.Second

var (
	telemetryShutdown func(context.Context) error
	metricsTextfile   string
)

var rootCmd = &cobra.Command{
	Use:   "ocsdk",
	Short: "OpenCode client with on-demand server lifecycle",
	Long: `ocsdk talks to an OpenCode server, starting a local one when none is running.

Without --url the client targets http://127.0.0.1:4096, reusing a healthy
server there or spawning "opencode serve" and waiting until it answers.
With --url (or OPENCODE_BASE_URL) the server is assumed to be managed
elsewhere and is never started.

Use "ocsdk [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		teardown()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		// PersistentPostRun is skipped when RunE fails.
		teardown()
	}
	return err
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.ConfigFile, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/ocsdk/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.Flags.URL, "url", "u", "", "Server URL (overrides OPENCODE_BASE_URL, disables auto start)")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&cmdutil.Flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&cmdutil.Flags.Ephemeral, "ephemeral", false, "Stop a server started by this command when it finishes")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessioncmd.Cmd)
	rootCmd.AddCommand(filescmd.Cmd)
	rootCmd.AddCommand(servercmd.Cmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// setup resolves configuration and initializes logging, tracing and
// metrics for the command about to run.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(config.DefaultDotEnvFile); err != nil {
		return err
	}

	if cmdutil.SkipsConfig(cmd) {
		return initLogger(config.GetDefaultConfig())
	}

	cfg, err := config.MustLoad(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}
	cmdutil.ApplyFlagOverrides(cfg)
	cmdutil.SetConfig(cfg)

	if err := initLogger(cfg); err != nil {
		return err
	}

	shutdown, err := telemetry.Init(cmd.Context(), cfg.TelemetryConfig(Version))
	if err != nil {
		logger.Warn("tracing disabled", logger.KeyError, err)
	} else {
		telemetryShutdown = shutdown
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsTextfile = cfg.Metrics.Textfile
	}
	return nil
}

func initLogger(cfg *config.Config) error {
	lc := cfg.LoggerConfig()
	lc.NoColor = cmdutil.Flags.NoColor
	if err := logger.Init(lc); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func teardown() {
	if telemetryShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		if err := telemetryShutdown(ctx); err != nil {
			logger.Warn("failed to flush traces", logger.KeyError, err)
		}
		cancel()
		telemetryShutdown = nil
	}

	if metricsTextfile != "" {
		if err := metrics.WriteTextfile(metricsTextfile); err != nil {
			logger.Warn("failed to write metrics", logger.KeyPath, metricsTextfile, logger.KeyError, err)
		}
		metricsTextfile = ""
	}

	_ = logger.Close()
}
