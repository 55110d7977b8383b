// Package supervisor launches the assistant server as a detached background
// process and stops it again with a graceful-then-forced escalation.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/marmos91/opencode-sdk/pkg/sdkerr"
)

// DefaultSettleDelay is how long Spawn watches for an immediate crash.
const DefaultSettleDelay = 100 * time.Millisecond

// waitDelay bounds how long the reaper waits for output pipes after exit.
const waitDelay = time.Second

// Options configures Spawn.
type Options struct {
	// Silent discards the child's stdout and stderr.
	Silent bool

	// LogFile appends both streams to this file instead of the pipes.
	// Takes precedence over Silent.
	LogFile string

	// OnStdout and OnStderr receive each output line when not silent.
	OnStdout func(line string)
	OnStderr func(line string)

	// WorkDir is the child's working directory. Empty inherits ours.
	WorkDir string

	// Env replaces the child's environment when non-nil.
	Env []string

	// SettleDelay is the crash-detection window after start.
	SettleDelay time.Duration

	// ShutdownGrace is the window between the graceful signal and the kill.
	ShutdownGrace time.Duration

	// OnShutdown is called once with the outcome of Handle.Shutdown.
	OnShutdown func(mode ShutdownMode)

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.ShutdownGrace <= 0 {
		o.ShutdownGrace = DefaultShutdownGrace
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Handle is the caller's reference to a spawned server process.
type Handle struct {
	pid    int
	grace  time.Duration
	logger *slog.Logger
	onStop func(ShutdownMode)
	output func() string
	done   chan struct{}

	mu       sync.Mutex
	stopped  bool
	exitCode int
}

// Spawn starts command detached from the caller and returns once the
// settle delay has passed without a crash.
//
// A non-zero exit inside the settle delay fails with a spawn error that
// carries the captured output. A zero exit is accepted since some servers
// daemonize themselves. ctx only bounds the settle wait; the child is never
// tied to it.
func Spawn(ctx context.Context, command string, args []string, opts Options) (*Handle, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	cmd := exec.Command(command, args...)
	cmd.Dir = opts.WorkDir
	cmd.Env = opts.Env
	cmd.WaitDelay = waitDelay
	detach(cmd)

	var (
		writers []*lineWriter
		output  = func() string { return "" }
		logFile *os.File
	)

	switch {
	case opts.LogFile != "":
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, sdkerr.Spawn(command, fmt.Errorf("open log file: %w", err), "")
		}
		var offset int64
		if info, err := f.Stat(); err == nil {
			offset = info.Size()
		}
		logFile = f
		cmd.Stdout = f
		cmd.Stderr = f
		path := opts.LogFile
		output = func() string { return readFileTail(path, offset, DefaultTailSize) }
	case opts.Silent:
		// nil streams are connected to the null device.
	default:
		tail := newTailBuffer(DefaultTailSize)
		stdout := newLineWriter(opts.OnStdout, tail)
		stderr := newLineWriter(opts.OnStderr, tail)
		writers = append(writers, stdout, stderr)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		output = tail.String
	}

	err := cmd.Start()
	if logFile != nil {
		// The child holds its own descriptor.
		_ = logFile.Close()
	}
	if err != nil {
		return nil, sdkerr.Spawn(command, err, "")
	}

	h := &Handle{
		pid:      cmd.Process.Pid,
		grace:    opts.ShutdownGrace,
		logger:   logger.With("pid", cmd.Process.Pid),
		onStop:   opts.OnShutdown,
		output:   output,
		done:     make(chan struct{}),
		exitCode: -1,
	}
	go h.reap(cmd, writers)

	logger.Debug("server process started", "command", command, "args", args, "pid", h.pid)

	timer := time.NewTimer(opts.SettleDelay)
	defer timer.Stop()

	select {
	case <-h.done:
		code := h.ExitCode()
		if code != 0 {
			logger.Debug("server process exited during startup", "pid", h.pid, "exit_code", code)
			return nil, sdkerr.Spawn(command, fmt.Errorf("process exited with code %d", code), h.Output())
		}
		logger.Debug("server process exited cleanly during startup", "pid", h.pid)
	case <-ctx.Done():
		_ = h.Shutdown()
		return nil, sdkerr.Spawn(command, ctx.Err(), h.Output())
	case <-timer.C:
	}

	return h, nil
}

// reap waits for the child so its exit is observable and no zombie lingers.
func (h *Handle) reap(cmd *exec.Cmd, writers []*lineWriter) {
	err := cmd.Wait()
	for _, w := range writers {
		w.Flush()
	}

	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	h.mu.Lock()
	h.exitCode = code
	h.mu.Unlock()

	h.logger.Debug("server process exited", "exit_code", code, "error", err)
	close(h.done)
}

// PID returns the child's process ID.
func (h *Handle) PID() int { return h.pid }

// Managed reports that this process was started by the caller.
func (h *Handle) Managed() bool { return true }

// Output returns the retained tail of the child's output.
func (h *Handle) Output() string { return h.output() }

// Exited reports whether the child has exited.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done is closed once the child has exited and been reaped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// ExitCode returns the exit code, or -1 while running or when the child was
// killed by a signal.
func (h *Handle) ExitCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode
}

// Shutdown stops the child: graceful signal, up to the grace window of
// liveness polling, then a kill. Repeated calls return nil without acting.
// It cannot be cancelled.
func (h *Handle) Shutdown() error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.stopped = true
	h.mu.Unlock()

	mode, err := escalate(childTarget{h}, h.grace, h.logger)
	if mode == ModeForced {
		// Give the reaper a moment so Exited reflects the kill.
		select {
		case <-h.done:
		case <-time.After(time.Second):
		}
	}
	h.logger.Debug("server process stopped", "mode", string(mode))
	if h.onStop != nil {
		h.onStop(mode)
	}
	return err
}

// childTarget reads liveness from the reaper instead of signal 0, which
// would also succeed for an unreaped zombie.
type childTarget struct{ h *Handle }

func (c childTarget) pid() int    { return c.h.pid }
func (c childTarget) alive() bool { return !c.h.Exited() }

func (c childTarget) terminate() error {
	if c.h.Exited() {
		return errProcessGone
	}
	return terminatePID(c.h.pid)
}

func (c childTarget) kill() error {
	if c.h.Exited() {
		return errProcessGone
	}
	return killPID(c.h.pid)
}
