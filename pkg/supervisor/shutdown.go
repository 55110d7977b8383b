package supervisor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultShutdownGrace is how long a process may take to exit after
	// the graceful signal before it is killed.
	DefaultShutdownGrace = 5 * time.Second

	// pollInterval is the liveness polling period during shutdown.
	pollInterval = 100 * time.Millisecond
)

// ShutdownMode records how a process ended.
type ShutdownMode string

const (
	ModeAlreadyExited ShutdownMode = "already_exited"
	ModeGraceful      ShutdownMode = "graceful"
	ModeForced        ShutdownMode = "forced"
)

var errProcessGone = errors.New("no such process")

// target abstracts the process being stopped so the same escalation serves
// supervised children and bare PIDs.
type target interface {
	pid() int
	alive() bool
	terminate() error
	kill() error
}

type pidTarget int

func (p pidTarget) pid() int         { return int(p) }
func (p pidTarget) alive() bool      { return alivePID(int(p)) }
func (p pidTarget) terminate() error { return terminatePID(int(p)) }
func (p pidTarget) kill() error      { return killPID(int(p)) }

// escalate sends the graceful signal, polls liveness until grace expires
// and kills on expiry. A process that disappears at any step counts as
// stopped.
func escalate(t target, grace time.Duration, logger *slog.Logger) (ShutdownMode, error) {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	pid := t.pid()

	if !t.alive() {
		return ModeAlreadyExited, nil
	}

	if err := t.terminate(); err != nil {
		if errors.Is(err, errProcessGone) {
			return ModeAlreadyExited, nil
		}
		logger.Warn("graceful stop signal failed", "pid", pid, "error", err)
	}

	deadline := time.Now().Add(grace)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		<-ticker.C
		if !t.alive() {
			logger.Debug("process exited gracefully", "pid", pid)
			return ModeGraceful, nil
		}
	}

	logger.Warn("process did not exit within grace period, killing", "pid", pid, "grace", grace)
	if err := t.kill(); err != nil && !errors.Is(err, errProcessGone) {
		return ModeForced, fmt.Errorf("kill process %d: %w", pid, err)
	}
	return ModeForced, nil
}

// Stop terminates the process with the given PID using the same
// graceful-then-forced escalation as Handle.Shutdown. A PID that no longer
// exists is not an error.
func Stop(pid int, grace time.Duration) (ShutdownMode, error) {
	if pid <= 0 {
		return "", fmt.Errorf("invalid pid %d", pid)
	}
	return escalate(pidTarget(pid), grace, slog.New(slog.DiscardHandler))
}

// Kill forcibly ends the process with the given PID without a grace period.
func Kill(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	if err := killPID(pid); err != nil && !errors.Is(err, errProcessGone) {
		return fmt.Errorf("kill process %d: %w", pid, err)
	}
	return nil
}

// Alive reports whether a process with the given PID exists.
func Alive(pid int) bool {
	return pid > 0 && alivePID(pid)
}
