// Package config loads ocsdk settings from a YAML file, OPENCODE_*
// environment variables and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. OPENCODE_SERVER_PORT.
const EnvPrefix = "OPENCODE"

// Config represents the ocsdk configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (OPENCODE_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Server locates the assistant server
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Lifecycle controls starting a local server on demand
	Lifecycle LifecycleConfig `mapstructure:"lifecycle" yaml:"lifecycle"`

	// Client controls API requests
	Client ClientConfig `mapstructure:"client" yaml:"client"`

	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig locates the assistant server.
type ServerConfig struct {
	// URL points at an existing server. When set, no local server is
	// started because the address may be remote.
	// Override: OPENCODE_SERVER_URL, OPENCODE_BASE_URL (compat)
	URL string `mapstructure:"url" validate:"omitempty,url" yaml:"url,omitempty"`

	// Hostname is the interface a local server binds to.
	// Default: 127.0.0.1
	Hostname string `mapstructure:"hostname" validate:"required" yaml:"hostname"`

	// Port is the port a local server listens on.
	// Default: 4096
	Port int `mapstructure:"port" validate:"min=1,max=65535" yaml:"port"`

	// Username for HTTP basic auth.
	// Default: opencode
	Username string `mapstructure:"username" yaml:"username"`

	// Password enables HTTP basic auth when non-empty.
	// Override: OPENCODE_SERVER_PASSWORD
	Password string `mapstructure:"password" yaml:"password,omitempty"`
}

// LifecycleConfig controls starting a local server on demand.
type LifecycleConfig struct {
	// AutoStart starts a server when none is running.
	// Default: true
	AutoStart bool `mapstructure:"auto_start" yaml:"auto_start"`

	// Command is the server executable name or absolute path.
	// Default: opencode
	Command string `mapstructure:"command" validate:"required" yaml:"command"`

	// ServerArgs are appended after "serve --port P --hostname H".
	ServerArgs []string `mapstructure:"server_args" yaml:"server_args,omitempty"`

	// HealthCheckTimeout bounds the probe for an already running server.
	// Default: 3s
	HealthCheckTimeout time.Duration `mapstructure:"health_check_timeout" validate:"gt=0" yaml:"health_check_timeout"`

	// StartupTimeout bounds the wait for a started server to become healthy.
	// Default: 30s
	StartupTimeout time.Duration `mapstructure:"startup_timeout" validate:"gt=0" yaml:"startup_timeout"`

	// ShutdownGrace is the graceful stop window before a forced kill.
	// Default: 5s
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace" validate:"gt=0" yaml:"shutdown_grace"`

	// Silent discards server output.
	Silent bool `mapstructure:"silent" yaml:"silent"`

	// AutoInstall installs the command when it is missing.
	// Default: false
	AutoInstall bool `mapstructure:"auto_install" yaml:"auto_install"`

	// WorkDir is the working directory of a started server.
	WorkDir string `mapstructure:"workdir" yaml:"workdir,omitempty"`

	// LogFile receives server output.
	LogFile string `mapstructure:"log_file" yaml:"log_file,omitempty"`
}

// ClientConfig controls API requests.
type ClientConfig struct {
	// Timeout bounds a single API request.
	// Default: 30s
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0" yaml:"timeout"`

	// Agent is the agent new sessions are created with.
	// Override: OPENCODE_CLIENT_AGENT, OPENCODE_AGENT (compat)
	Agent string `mapstructure:"agent" yaml:"agent,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level" jsonschema:"enum=DEBUG,enum=INFO,enum=WARN,enum=ERROR"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format" jsonschema:"enum=text,enum=json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: true (for local development)
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
}

// MetricsConfig controls Prometheus metrics collection.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics are collected
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Textfile is written in Prometheus text format when a command exits,
	// for node_exporter's textfile collector.
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
//
// A missing config file is not an error: environment variables and
// defaults still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, failing with instructions when an
// explicitly requested file does not exist.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  ocsdk config init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold the server password.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: OPENCODE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Compatibility names used by the other opencode clients.
	_ = v.BindEnv("server.url", EnvPrefix+"_SERVER_URL", EnvPrefix+"_BASE_URL")
	_ = v.BindEnv("server.password", EnvPrefix+"_SERVER_PASSWORD")
	_ = v.BindEnv("client.agent", EnvPrefix+"_CLIENT_AGENT", EnvPrefix+"_AGENT")

	// AutomaticEnv only resolves keys viper already knows.
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for durations and
// comma-separated lists coming from the environment.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Raw integers are nanoseconds, as written by SaveConfig.
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/ocsdk, ~/.config/ocsdk, or "." when
// no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ocsdk")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ocsdk")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
