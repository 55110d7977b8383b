// Package lifecycle decides whether to reuse, start or skip the assistant
// server for a client session and performs the start when needed.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marmos91/opencode-sdk/internal/telemetry"
	"github.com/marmos91/opencode-sdk/pkg/detect"
	"github.com/marmos91/opencode-sdk/pkg/health"
	"github.com/marmos91/opencode-sdk/pkg/sdkerr"
	"github.com/marmos91/opencode-sdk/pkg/supervisor"
)

// Decision records which branch Ensure took.
type Decision string

const (
	DecisionDisabled Decision = "disabled"
	DecisionReused   Decision = "reused"
	DecisionStarted  Decision = "started"
)

// Server is a process started by Ensure.
type Server interface {
	PID() int
	// Managed reports whether this invocation started the process.
	Managed() bool
	// Shutdown stops the process. It is idempotent.
	Shutdown() error
}

// Result is the outcome of Ensure. Server is nil unless a server was
// started by this call.
type Result struct {
	BaseURL  string
	Server   Server
	Decision Decision
	// CommandPath is the resolved executable, empty when detection was
	// skipped.
	CommandPath string
}

// Detector locates the server executable.
type Detector interface {
	Detect(ctx context.Context, name string) detect.Result
}

// Installer installs the server executable and returns its path.
type Installer interface {
	Install(ctx context.Context, command string) (string, error)
}

// Prober checks whether a server answers at a base URL.
type Prober interface {
	Probe(ctx context.Context, baseURL string, timeout time.Duration) health.Result
}

// Waiter polls until a freshly started server is healthy.
type Waiter interface {
	WaitUntilHealthy(ctx context.Context, baseURL string, opts health.WaitOptions) health.Result
}

// Spawner starts the server process.
type Spawner interface {
	Spawn(ctx context.Context, command string, args []string, opts supervisor.Options) (Server, error)
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(ctx context.Context, command string, args []string, opts supervisor.Options) (Server, error)

func (f SpawnerFunc) Spawn(ctx context.Context, command string, args []string, opts supervisor.Options) (Server, error) {
	return f(ctx, command, args, opts)
}

// processSpawner starts real detached processes.
type processSpawner struct{}

func (processSpawner) Spawn(ctx context.Context, command string, args []string, opts supervisor.Options) (Server, error) {
	h, err := supervisor.Spawn(ctx, command, args, opts)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Manager runs the lifecycle decision procedure. It holds no per-call state
// and may be shared between goroutines.
type Manager struct {
	detector  Detector
	installer Installer
	prober    Prober
	waiter    Waiter
	spawner   Spawner
	metrics   Metrics
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

func WithDetector(d Detector) Option   { return func(m *Manager) { m.detector = d } }
func WithInstaller(i Installer) Option { return func(m *Manager) { m.installer = i } }
func WithProber(p Prober) Option       { return func(m *Manager) { m.prober = p } }
func WithWaiter(w Waiter) Option       { return func(m *Manager) { m.waiter = w } }
func WithSpawner(s Spawner) Option     { return func(m *Manager) { m.spawner = s } }
func WithMetrics(mt Metrics) Option    { return func(m *Manager) { m.metrics = mt } }
func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.logger = l } }

// New creates a Manager. Unset collaborators get real implementations.
func New(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.metrics == nil {
		m.metrics = noopMetrics{}
	}
	if m.detector == nil || m.installer == nil {
		d := detect.New(detect.WithLogger(m.logger))
		if m.detector == nil {
			m.detector = d
		}
		if m.installer == nil {
			m.installer = detect.NewInstaller(d)
		}
	}
	if m.prober == nil {
		m.prober = health.NewProber(
			health.WithProberLogger(m.logger),
			health.WithObserver(m.metrics),
		)
	}
	if m.waiter == nil {
		m.waiter = health.NewWaiter(m.prober, m.logger)
	}
	if m.spawner == nil {
		m.spawner = processSpawner{}
	}
	return m
}

// Ensure makes a server available at http://hostname:port.
//
// With AutoStart off it only returns the base URL. Otherwise the command
// must be detectable (optionally after installing it); a healthy server
// already listening is reused; else one is spawned and awaited. A server
// that never becomes healthy is shut down before the StartupTimeout error
// is returned.
func (m *Manager) Ensure(ctx context.Context, hostname string, port int, cfg Config) (*Result, error) {
	if hostname == "" {
		hostname = DefaultHostname
	}
	cfg = cfg.withDefaults()
	baseURL := BaseURL(hostname, port)
	logger := m.logger.With("base_url", baseURL)

	ctx, span := telemetry.StartLifecycleSpan(ctx, telemetry.SpanLifecycleEnsure,
		telemetry.BaseURL(baseURL), telemetry.Command(cfg.Command))
	defer span.End()

	result, err := m.ensure(ctx, logger, hostname, port, baseURL, cfg)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	telemetry.SetAttributes(ctx, telemetry.Decision(string(result.Decision)))
	m.metrics.RecordDecision(result.Decision)
	return result, nil
}

func (m *Manager) ensure(ctx context.Context, logger *slog.Logger, hostname string, port int, baseURL string, cfg Config) (*Result, error) {
	// S0
	if !cfg.AutoStart {
		logger.Debug("auto start disabled")
		return &Result{BaseURL: baseURL, Decision: DecisionDisabled}, nil
	}

	// S1
	path, err := m.resolveCommand(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	// S2
	probeCtx, probeSpan := telemetry.StartLifecycleSpan(ctx, telemetry.SpanProbe)
	existing := m.prober.Probe(probeCtx, baseURL, cfg.HealthCheckTimeout)
	probeSpan.SetAttributes(telemetry.Reason(string(existing.Reason)))
	probeSpan.End()
	if existing.Healthy {
		logger.Info("reusing running server")
		return &Result{BaseURL: baseURL, Decision: DecisionReused, CommandPath: path}, nil
	}
	logger.Debug("no running server", "reason", string(existing.Reason), "error", existing.Error)

	// S3
	server, err := m.spawn(ctx, logger, path, ServeArgs(hostname, port, cfg.ServerArgs), cfg)
	if err != nil {
		return nil, err
	}
	started := time.Now()

	// S4
	waitCtx, waitSpan := telemetry.StartLifecycleSpan(ctx, telemetry.SpanWait, telemetry.PID(server.PID()))
	ready := m.waiter.WaitUntilHealthy(waitCtx, baseURL, health.WaitOptions{Timeout: cfg.StartupTimeout})
	waitSpan.SetAttributes(telemetry.Reason(string(ready.Reason)))
	waitSpan.End()

	if !ready.Healthy {
		logger.Warn("server did not become healthy, stopping it",
			"pid", server.PID(), "reason", string(ready.Reason), "error", ready.Error)
		if err := m.rollback(ctx, server); err != nil {
			logger.Warn("failed to stop unhealthy server", "pid", server.PID(), "error", err)
		}
		timeoutErr := sdkerr.StartupTimeout(baseURL, cfg.StartupTimeout, ready.Error)
		if o, ok := server.(interface{ Output() string }); ok {
			timeoutErr.Output = o.Output()
		}
		return nil, timeoutErr
	}

	// S5
	elapsed := time.Since(started)
	m.metrics.ObserveStartup(elapsed)
	logger.Info("server started", "pid", server.PID(), "startup", elapsed)
	return &Result{BaseURL: baseURL, Server: server, Decision: DecisionStarted, CommandPath: path}, nil
}

func (m *Manager) resolveCommand(ctx context.Context, logger *slog.Logger, cfg Config) (string, error) {
	detectCtx, span := telemetry.StartLifecycleSpan(ctx, telemetry.SpanDetect, telemetry.Command(cfg.Command))
	found := m.detector.Detect(detectCtx, cfg.Command)
	span.End()
	if found.Available {
		logger.Debug("server command found", "command", cfg.Command, "path", found.Path)
		return found.Path, nil
	}

	notFound := sdkerr.CommandNotFound(cfg.Command)
	// Install methods only know how to provide the default command.
	if !cfg.AutoInstall || cfg.Command != DefaultCommand {
		return "", notFound
	}

	logger.Info("server command not found, installing", "command", cfg.Command)
	installCtx, span := telemetry.StartLifecycleSpan(ctx, telemetry.SpanInstall, telemetry.Command(cfg.Command))
	path, err := m.installer.Install(installCtx, cfg.Command)
	if err != nil {
		telemetry.RecordError(installCtx, err)
		span.End()
		logger.Warn("install failed", "command", cfg.Command, "error", err)
		notFound.Err = err
		return "", notFound
	}
	span.End()

	found = m.detector.Detect(ctx, cfg.Command)
	if found.Available {
		return found.Path, nil
	}
	if path != "" {
		return path, nil
	}
	return "", notFound
}

func (m *Manager) spawn(ctx context.Context, logger *slog.Logger, path string, args []string, cfg Config) (Server, error) {
	spawnCtx, span := telemetry.StartLifecycleSpan(ctx, telemetry.SpanSpawn, telemetry.Command(path))
	defer span.End()

	logger.Info("starting server", "command", path, "args", args)
	server, err := m.spawner.Spawn(spawnCtx, path, args, supervisor.Options{
		Silent:        cfg.Silent,
		LogFile:       cfg.LogFile,
		OnStdout:      cfg.OnStdout,
		OnStderr:      cfg.OnStderr,
		WorkDir:       cfg.WorkDir,
		ShutdownGrace: cfg.ShutdownGrace,
		OnShutdown:    func(mode supervisor.ShutdownMode) { m.metrics.RecordShutdown(string(mode)) },
		Logger:        logger,
	})
	if err != nil {
		m.metrics.RecordSpawn("failure")
		telemetry.RecordError(spawnCtx, err)
		var se *sdkerr.Error
		if !errors.As(err, &se) || se.Kind != sdkerr.KindSpawn {
			err = sdkerr.Spawn(path, err, "")
		}
		return nil, err
	}

	m.metrics.RecordSpawn("success")
	span.SetAttributes(telemetry.PID(server.PID()))
	return server, nil
}

// rollback stops a server that failed to become ready. Shutdown is not
// cancellable so ctx only scopes the span.
func (m *Manager) rollback(ctx context.Context, server Server) error {
	_, span := telemetry.StartLifecycleSpan(ctx, telemetry.SpanShutdown, telemetry.PID(server.PID()))
	defer span.End()
	return server.Shutdown()
}
