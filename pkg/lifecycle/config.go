package lifecycle

import (
	"net"
	"strconv"
	"time"

	"github.com/marmos91/opencode-sdk/pkg/health"
	"github.com/marmos91/opencode-sdk/pkg/supervisor"
)

const (
	// DefaultCommand is the server executable looked up on PATH.
	DefaultCommand = "opencode"

	// DefaultHostname is the interface a started server binds to.
	DefaultHostname = "127.0.0.1"

	// DefaultPort is the port a started server listens on.
	DefaultPort = 4096
)

// Config drives one Ensure call.
type Config struct {
	// AutoStart allows starting a server. When false Ensure only computes
	// the base URL.
	AutoStart bool

	// Command is the executable name or absolute path.
	Command string

	// ServerArgs are appended after the mandatory serve arguments.
	ServerArgs []string

	// HealthCheckTimeout bounds the probe for an existing server.
	HealthCheckTimeout time.Duration

	// StartupTimeout bounds the readiness wait after spawning.
	StartupTimeout time.Duration

	// ShutdownGrace is the graceful stop window before a kill.
	ShutdownGrace time.Duration

	// Silent discards server output.
	Silent bool

	// AutoInstall installs the default command when it cannot be found.
	AutoInstall bool

	// WorkDir is the server's working directory.
	WorkDir string

	// LogFile receives server output instead of the callbacks.
	LogFile string

	OnStdout func(line string)
	OnStderr func(line string)
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		AutoStart:          true,
		Command:            DefaultCommand,
		HealthCheckTimeout: health.DefaultProbeTimeout,
		StartupTimeout:     health.DefaultWaitTimeout,
		ShutdownGrace:      supervisor.DefaultShutdownGrace,
	}
}

func (c Config) withDefaults() Config {
	if c.Command == "" {
		c.Command = DefaultCommand
	}
	if c.HealthCheckTimeout <= 0 {
		c.HealthCheckTimeout = health.DefaultProbeTimeout
	}
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = health.DefaultWaitTimeout
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = supervisor.DefaultShutdownGrace
	}
	return c
}

// BaseURL builds http://<hostname>:<port>, bracketing IPv6 literals.
func BaseURL(hostname string, port int) string {
	if hostname == "" {
		hostname = DefaultHostname
	}
	return "http://" + net.JoinHostPort(hostname, strconv.Itoa(port))
}

// ServeArgs returns the full argument list for starting the server.
func ServeArgs(hostname string, port int, extra []string) []string {
	args := []string{"serve", "--port", strconv.Itoa(port), "--hostname", hostname}
	return append(args, extra...)
}
