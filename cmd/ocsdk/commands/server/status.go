package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/cli/output"
	"github.com/marmos91/opencode-sdk/internal/cli/timeutil"
	"github.com/marmos91/opencode-sdk/internal/logger"
	"github.com/marmos91/opencode-sdk/internal/state"
	"github.com/marmos91/opencode-sdk/pkg/config"
	"github.com/marmos91/opencode-sdk/pkg/detect"
	"github.com/marmos91/opencode-sdk/pkg/health"
	"github.com/marmos91/opencode-sdk/pkg/supervisor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local server status",
	Long: `Show whether the server answers, whether ocsdk started it, and which
server command would be used to start one.

Examples:
  # Human readable status
  ocsdk server status

  # Machine readable status
  ocsdk server status -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// Status is the combined view printed by "server status".
type Status struct {
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	Healthy      bool          `json:"healthy" yaml:"healthy"`
	Reason       health.Reason `json:"reason" yaml:"reason"`
	ResponseTime time.Duration `json:"response_time" yaml:"response_time"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	AutoStart    bool          `json:"auto_start" yaml:"auto_start"`
	Managed      *Managed      `json:"managed,omitempty" yaml:"managed,omitempty"`
	Command      detect.Result `json:"command" yaml:"command"`
	CommandName  string        `json:"command_name" yaml:"command_name"`
}

// Managed describes the server recorded by "server start".
type Managed struct {
	PID       int       `json:"pid" yaml:"pid"`
	Running   bool      `json:"running" yaml:"running"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Uptime    string    `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	LogFile   string    `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// newProber and newDetector are replaced in tests.
var (
	newProber   = func() health.Checker { return health.NewProber(health.WithProberLogger(logger.Component("health"))) }
	newDetector = func() *detect.Detector { return detect.New(detect.WithLogger(logger.Component("detect"))) }
)

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := collectStatus(cmd.Context(), cmdutil.GetConfig(), cmdutil.StateStore())
	if err != nil {
		return err
	}
	return cmdutil.PrintResource(os.Stdout, st, func(w io.Writer) error {
		return printStatus(w, st)
	})
}

func collectStatus(ctx context.Context, cfg *config.Config, store *state.Store) (*Status, error) {
	st := &Status{
		BaseURL:     cfg.BaseURL(),
		AutoStart:   cfg.ShouldAutoStart(),
		CommandName: cfg.Lifecycle.Command,
	}

	rec, err := store.Load()
	switch {
	case err == nil:
		running := supervisor.Alive(rec.PID)
		st.Managed = &Managed{
			PID:       rec.PID,
			Running:   running,
			StartedAt: rec.StartedAt,
			LogFile:   rec.LogFile,
		}
		if running {
			st.Managed.Uptime = timeutil.FormatUptime(rec.Uptime())
		}
		if cfg.Server.URL == "" && rec.BaseURL != "" {
			st.BaseURL = rec.BaseURL
		}
	case errors.Is(err, state.ErrNoServer):
	default:
		return nil, err
	}

	probe := newProber().Probe(ctx, st.BaseURL, cfg.Lifecycle.HealthCheckTimeout)
	st.Healthy = probe.Healthy
	st.Reason = probe.Reason
	st.ResponseTime = probe.ResponseTime
	st.Error = probe.Error

	st.Command = newDetector().DetectWithVersion(ctx, cfg.Lifecycle.Command)
	return st, nil
}

func printStatus(w io.Writer, st *Status) error {
	p := cmdutil.Printer(w)
	if st.Healthy {
		p.Success("Server is healthy at " + st.BaseURL)
	} else {
		p.Error(fmt.Sprintf("Server is not answering at %s (%s)", st.BaseURL, st.Reason))
	}

	var kv output.KeyValues
	kv.Add("Response time", st.ResponseTime.Round(time.Millisecond).String())
	if st.Error != "" {
		kv.Add("Error", st.Error)
	}
	kv.Add("Auto start", cmdutil.BoolToYesNo(st.AutoStart))

	if m := st.Managed; m != nil {
		kv.Add("Managed PID", strconv.Itoa(m.PID))
		kv.Add("Running", cmdutil.BoolToYesNo(m.Running))
		kv.Add("Started", timeutil.FormatTime(m.StartedAt))
		if m.Uptime != "" {
			kv.Add("Uptime", m.Uptime)
		}
		kv.Add("Log file", cmdutil.EmptyOr(m.LogFile, "-"))
	} else {
		kv.Add("Managed", "no")
	}

	if st.Command.Available {
		kv.Add("Command", st.Command.Path)
		kv.Add("Version", cmdutil.EmptyOr(st.Command.Version, "unknown"))
	} else {
		kv.Add("Command", st.CommandName+" (not found)")
	}

	if err := output.PrintKeyValues(w, kv); err != nil {
		return err
	}

	if m := st.Managed; m != nil && !m.Running {
		p.Println()
		p.Hint("The recorded server is gone. Run 'ocsdk server stop' to clear the record.")
	}
	return nil
}
