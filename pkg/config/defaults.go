package config

import (
	"strings"

	"github.com/marmos91/opencode-sdk/pkg/apiclient"
	"github.com/marmos91/opencode-sdk/pkg/lifecycle"
	"github.com/spf13/viper"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced with defaults and explicit values are kept.
// Booleans are left alone: their defaults come from the viper layer.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyLifecycleDefaults(&cfg.Lifecycle)
	applyClientDefaults(&cfg.Client)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(cfg *ServerConfig) {
	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if cfg.Hostname == "" {
		cfg.Hostname = lifecycle.DefaultHostname
	}
	if cfg.Port == 0 {
		cfg.Port = lifecycle.DefaultPort
	}
	if cfg.Username == "" {
		cfg.Username = apiclient.BasicAuthUsername
	}
}

func applyLifecycleDefaults(cfg *LifecycleConfig) {
	d := lifecycle.DefaultConfig()
	if cfg.Command == "" {
		cfg.Command = d.Command
	}
	if cfg.HealthCheckTimeout == 0 {
		cfg.HealthCheckTimeout = d.HealthCheckTimeout
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = d.StartupTimeout
	}
	if cfg.ShutdownGrace == 0 {
		cfg.ShutdownGrace = d.ShutdownGrace
	}
}

func applyClientDefaults(cfg *ClientConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = apiclient.DefaultTimeout
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)

	// stdout carries command output.
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// setViperDefaults registers every key so environment variables resolve
// even without a config file.
func setViperDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("server.url", d.Server.URL)
	v.SetDefault("server.hostname", d.Server.Hostname)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.username", d.Server.Username)
	v.SetDefault("server.password", d.Server.Password)

	v.SetDefault("lifecycle.auto_start", d.Lifecycle.AutoStart)
	v.SetDefault("lifecycle.command", d.Lifecycle.Command)
	v.SetDefault("lifecycle.server_args", d.Lifecycle.ServerArgs)
	v.SetDefault("lifecycle.health_check_timeout", d.Lifecycle.HealthCheckTimeout.String())
	v.SetDefault("lifecycle.startup_timeout", d.Lifecycle.StartupTimeout.String())
	v.SetDefault("lifecycle.shutdown_grace", d.Lifecycle.ShutdownGrace.String())
	v.SetDefault("lifecycle.silent", d.Lifecycle.Silent)
	v.SetDefault("lifecycle.auto_install", d.Lifecycle.AutoInstall)
	v.SetDefault("lifecycle.workdir", d.Lifecycle.WorkDir)
	v.SetDefault("lifecycle.log_file", d.Lifecycle.LogFile)

	v.SetDefault("client.timeout", d.Client.Timeout.String())
	v.SetDefault("client.agent", d.Client.Agent)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.insecure", d.Telemetry.Insecure)
	v.SetDefault("telemetry.sample_rate", d.Telemetry.SampleRate)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}

// GetDefaultConfig returns a Config struct with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Lifecycle: LifecycleConfig{
			AutoStart: true,
		},
		Telemetry: TelemetryConfig{
			Insecure: true,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
