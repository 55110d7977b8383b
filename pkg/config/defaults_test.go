package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Empty(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Hostname != "127.0.0.1" || cfg.Server.Port != 4096 {
		t.Errorf("Unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Server.Username != "opencode" {
		t.Errorf("Expected username opencode, got %q", cfg.Server.Username)
	}
	if cfg.Lifecycle.Command != "opencode" {
		t.Errorf("Expected command opencode, got %q", cfg.Lifecycle.Command)
	}
	if cfg.Lifecycle.HealthCheckTimeout != 3*time.Second {
		t.Errorf("Expected 3s health check timeout, got %v", cfg.Lifecycle.HealthCheckTimeout)
	}
	if cfg.Lifecycle.StartupTimeout != 30*time.Second {
		t.Errorf("Expected 30s startup timeout, got %v", cfg.Lifecycle.StartupTimeout)
	}
	if cfg.Lifecycle.ShutdownGrace != 5*time.Second {
		t.Errorf("Expected 5s shutdown grace, got %v", cfg.Lifecycle.ShutdownGrace)
	}
	if cfg.Client.Timeout != 30*time.Second {
		t.Errorf("Expected 30s client timeout, got %v", cfg.Client.Timeout)
	}
	if cfg.Logging.Level != "INFO" || cfg.Logging.Format != "text" || cfg.Logging.Output != "stderr" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Telemetry.Endpoint != "localhost:4317" || cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Unexpected telemetry defaults: %+v", cfg.Telemetry)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Hostname: "0.0.0.0", Port: 8000, URL: " http://remote:4096/ "},
		Lifecycle: LifecycleConfig{Command: "oc", StartupTimeout: time.Minute},
		Logging:   LoggingConfig{Level: "debug", Format: "JSON", Output: "/tmp/x.log"},
	}
	ApplyDefaults(cfg)

	if cfg.Server.Hostname != "0.0.0.0" || cfg.Server.Port != 8000 {
		t.Errorf("Server values overwritten: %+v", cfg.Server)
	}
	if cfg.Server.URL != "http://remote:4096" {
		t.Errorf("Expected trimmed URL, got %q", cfg.Server.URL)
	}
	if cfg.Lifecycle.Command != "oc" || cfg.Lifecycle.StartupTimeout != time.Minute {
		t.Errorf("Lifecycle values overwritten: %+v", cfg.Lifecycle)
	}
	if cfg.Logging.Level != "DEBUG" || cfg.Logging.Format != "json" {
		t.Errorf("Expected normalized logging values, got %+v", cfg.Logging)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid, got: %v", err)
	}
	if !cfg.Lifecycle.AutoStart {
		t.Error("Expected auto_start default true")
	}
	if cfg.Lifecycle.AutoInstall {
		t.Error("Expected auto_install default false")
	}
	if !cfg.Telemetry.Insecure {
		t.Error("Expected telemetry insecure default true")
	}
}

func TestLifecycleConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Lifecycle.ServerArgs = []string{"--print-logs"}
	cfg.Lifecycle.WorkDir = "/src"

	lc := cfg.LifecycleConfig()
	if !lc.AutoStart || lc.Command != "opencode" || lc.WorkDir != "/src" {
		t.Errorf("Unexpected lifecycle config: %+v", lc)
	}

	// Mutating the result must not leak back.
	lc.ServerArgs[0] = "changed"
	if cfg.Lifecycle.ServerArgs[0] != "--print-logs" {
		t.Error("LifecycleConfig must copy ServerArgs")
	}

	cfg.Server.URL = "http://remote:4096"
	if cfg.LifecycleConfig().AutoStart {
		t.Error("Explicit URL must disable auto start")
	}
}

func TestBaseURL(t *testing.T) {
	cfg := GetDefaultConfig()
	if got := cfg.BaseURL(); got != "http://127.0.0.1:4096" {
		t.Errorf("Expected local base URL, got %q", got)
	}

	cfg.Server.Hostname = "::1"
	if got := cfg.BaseURL(); got != "http://[::1]:4096" {
		t.Errorf("Expected bracketed IPv6, got %q", got)
	}
}

func TestTelemetryConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.SampleRate = 0.25

	tc := cfg.TelemetryConfig("1.2.3")
	if !tc.Enabled || tc.SampleRate != 0.25 || tc.ServiceVersion != "1.2.3" || tc.ServiceName != "ocsdk" {
		t.Errorf("Unexpected telemetry config: %+v", tc)
	}
	if got := cfg.TelemetryConfig("").ServiceVersion; got != "dev" {
		t.Errorf("Expected dev version fallback, got %q", got)
	}
}
