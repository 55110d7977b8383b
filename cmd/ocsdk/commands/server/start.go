package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/cli/output"
	"github.com/marmos91/opencode-sdk/pkg/lifecycle"
)

var (
	startHostname string
	startPort     int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the local server",
	Long: `Ensure a local OpenCode server is running.

A healthy server already listening on the address is reused. Otherwise the
configured command is started with "serve --port <port> --hostname <host>"
and awaited until it answers. The server always starts here, regardless of
lifecycle.auto_start.

Examples:
  # Start on the configured address
  ocsdk server start

  # Start on all interfaces, port 5000
  ocsdk server start --hostname 0.0.0.0 --port 5000`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startHostname, "hostname", "", "Interface to bind (default: server.hostname)")
	startCmd.Flags().IntVar(&startPort, "port", 0, "Port to listen on (default: server.port)")
}

// StartResult describes the server after start.
type StartResult struct {
	BaseURL  string             `json:"base_url" yaml:"base_url"`
	Decision lifecycle.Decision `json:"decision" yaml:"decision"`
	PID      int                `json:"pid,omitempty" yaml:"pid,omitempty"`
	LogFile  string             `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg := cmdutil.GetConfig()
	if cfg.Server.URL != "" {
		return errors.New("server.url is set to " + cfg.Server.URL +
			"; a server at an explicit URL is managed elsewhere\nUnset --url / OPENCODE_BASE_URL to manage a local server")
	}

	opts := cmdutil.ConnectOptions(cfg)
	opts.Lifecycle.AutoStart = true
	opts.Ephemeral = false
	if startHostname != "" {
		opts.Hostname = startHostname
	}
	if startPort != 0 {
		if startPort < 1 || startPort > 65535 {
			return fmt.Errorf("invalid port %d (valid: 1-65535)", startPort)
		}
		opts.Port = startPort
	}

	inst, err := cmdutil.Open(cmd.Context(), opts)
	if err != nil {
		return err
	}

	result := StartResult{BaseURL: inst.BaseURL, Decision: inst.Decision}
	if inst.Started() {
		result.PID = inst.Server.PID()
		result.LogFile = opts.Lifecycle.LogFile
	}

	return cmdutil.PrintResource(os.Stdout, result, func(w io.Writer) error {
		p := cmdutil.Printer(w)
		if result.Decision == lifecycle.DecisionReused {
			p.Success("Server already running at " + result.BaseURL)
			return nil
		}

		p.Success("Server started at " + result.BaseURL)
		var kv output.KeyValues
		kv.Add("PID", strconv.Itoa(result.PID))
		kv.Add("Log file", cmdutil.EmptyOr(result.LogFile, "-"))
		return output.PrintKeyValues(w, kv)
	})
}
