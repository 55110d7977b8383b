package config

import (
	"github.com/marmos91/opencode-sdk/internal/logger"
	"github.com/marmos91/opencode-sdk/internal/telemetry"
	"github.com/marmos91/opencode-sdk/pkg/lifecycle"
)

// ShouldAutoStart reports whether a local server may be started. An
// explicit URL always wins because it may point at a remote host.
func (c *Config) ShouldAutoStart() bool {
	return c.Server.URL == "" && c.Lifecycle.AutoStart
}

// BaseURL returns the explicit URL or the local http://hostname:port.
func (c *Config) BaseURL() string {
	if c.Server.URL != "" {
		return c.Server.URL
	}
	return lifecycle.BaseURL(c.Server.Hostname, c.Server.Port)
}

// LifecycleConfig converts the lifecycle section for lifecycle.Manager.
func (c *Config) LifecycleConfig() lifecycle.Config {
	return lifecycle.Config{
		AutoStart:          c.ShouldAutoStart(),
		Command:            c.Lifecycle.Command,
		ServerArgs:         append([]string(nil), c.Lifecycle.ServerArgs...),
		HealthCheckTimeout: c.Lifecycle.HealthCheckTimeout,
		StartupTimeout:     c.Lifecycle.StartupTimeout,
		ShutdownGrace:      c.Lifecycle.ShutdownGrace,
		Silent:             c.Lifecycle.Silent,
		AutoInstall:        c.Lifecycle.AutoInstall,
		WorkDir:            c.Lifecycle.WorkDir,
		LogFile:            c.Lifecycle.LogFile,
	}
}

// LoggerConfig converts the logging section.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// TelemetryConfig converts the telemetry section. version is reported as
// service.version.
func (c *Config) TelemetryConfig(version string) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.Enabled = c.Telemetry.Enabled
	tc.Endpoint = c.Telemetry.Endpoint
	tc.Insecure = c.Telemetry.Insecure
	tc.SampleRate = c.Telemetry.SampleRate
	if version != "" {
		tc.ServiceVersion = version
	}
	return tc
}
