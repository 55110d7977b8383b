package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/logger"
	"github.com/marmos91/opencode-sdk/internal/state"
	"github.com/marmos91/opencode-sdk/pkg/sdkerr"
	"github.com/marmos91/opencode-sdk/pkg/supervisor"
)

var stopForce bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the local server",
	Long: `Stop the server recorded by "ocsdk server start".

The recorded address must answer a health check before any signal is
sent, so a PID reused by another program is left alone. The server then
gets a graceful termination signal and is killed when it has not exited
within lifecycle.shutdown_grace. Use --force to skip the health check and
kill the recorded PID immediately.

Examples:
  # Graceful stop
  ocsdk server stop

  # Kill immediately
  ocsdk server stop --force`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Kill immediately instead of graceful shutdown")
}

// StopResult describes how the server ended.
type StopResult struct {
	PID  int                     `json:"pid" yaml:"pid"`
	Mode supervisor.ShutdownMode `json:"mode" yaml:"mode"`
}

func runStop(cmd *cobra.Command, args []string) error {
	store := cmdutil.StateStore()
	rec, err := store.Load()
	if err != nil {
		if errors.Is(err, state.ErrNoServer) {
			return fmt.Errorf("%w\n\nIs the server running? Servers started outside ocsdk must be stopped by hand", err)
		}
		return err
	}

	lc := cmdutil.GetConfig().Lifecycle
	result, err := stopServer(cmd.Context(), rec, stopOptions{
		Force:         stopForce,
		Grace:         lc.ShutdownGrace,
		HealthTimeout: lc.HealthCheckTimeout,
	})
	if err != nil {
		return err
	}

	if err := store.Remove(); err != nil {
		logger.Warn("failed to clear server state", logger.KeyPath, store.ServerPath(), logger.KeyError, err)
	}

	return cmdutil.PrintResource(os.Stdout, result, func(w io.Writer) error {
		p := cmdutil.Printer(w)
		switch result.Mode {
		case supervisor.ModeAlreadyExited:
			p.Warning(fmt.Sprintf("Server (pid %d) was not running; cleared stale record", result.PID))
		case supervisor.ModeGraceful:
			p.Success(fmt.Sprintf("Server (pid %d) stopped", result.PID))
		default:
			p.Success(fmt.Sprintf("Server (pid %d) killed", result.PID))
		}
		return nil
	})
}

type stopOptions struct {
	Force         bool
	Grace         time.Duration
	HealthTimeout time.Duration
}

// stopServer ends the recorded server. Without Force the recorded address
// must pass a health check first; otherwise nothing is signalled.
func stopServer(ctx context.Context, rec *state.Server, opts stopOptions) (StopResult, error) {
	result := StopResult{PID: rec.PID}

	if !supervisor.Alive(rec.PID) {
		result.Mode = supervisor.ModeAlreadyExited
		return result, nil
	}

	if opts.Force {
		if err := supervisor.Kill(rec.PID); err != nil {
			return result, err
		}
		result.Mode = supervisor.ModeForced
		return result, nil
	}

	if err := verifyRecorded(ctx, rec, opts.HealthTimeout); err != nil {
		return result, err
	}

	mode, err := supervisor.Stop(rec.PID, opts.Grace)
	if err != nil {
		return result, err
	}
	result.Mode = mode
	return result, nil
}

// verifyRecorded checks that the recorded address still answers.
func verifyRecorded(ctx context.Context, rec *state.Server, timeout time.Duration) error {
	if rec.BaseURL == "" {
		return fmt.Errorf("server record for pid %d has no address; refusing to signal it without --force", rec.PID)
	}

	res := newProber().Probe(ctx, rec.BaseURL, timeout)
	if res.Healthy {
		return nil
	}

	reason := string(res.Reason)
	if res.Error != "" {
		reason += ": " + res.Error
	}
	logger.Warn("recorded server did not answer; not signalling",
		logger.KeyPID, rec.PID, logger.KeyBaseURL, rec.BaseURL, logger.KeyReason, res.Reason)
	return sdkerr.HealthCheck(rec.BaseURL, fmt.Sprintf("%s (pid %d left running)", reason, rec.PID))
}
