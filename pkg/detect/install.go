package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marmos91/opencode-sdk/pkg/sdkerr"
)

// InstallScriptURL is fetched by the curl install method.
const InstallScriptURL = "https://opencode.ai/install"

// InstallMethod is one way of installing the server executable.
type InstallMethod struct {
	// Name identifies the method in logs ("npm", "brew", "curl").
	Name string
	// Probe is the tool that must be present, checked with `<Probe> --version`.
	Probe string
	// Command and Args perform the installation.
	Command string
	Args    []string
	// Platforms restricts the method to these GOOS values; empty means all.
	Platforms []string
}

func (m InstallMethod) supports(goos string) bool {
	if len(m.Platforms) == 0 {
		return true
	}
	for _, p := range m.Platforms {
		if p == goos {
			return true
		}
	}
	return false
}

// DefaultInstallMethods returns npm, Homebrew and the curl install script,
// in the order they are attempted.
func DefaultInstallMethods() []InstallMethod {
	return []InstallMethod{
		{
			Name:    "npm",
			Probe:   "npm",
			Command: "npm",
			Args:    []string{"install", "-g", "opencode-ai"},
		},
		{
			Name:      "brew",
			Probe:     "brew",
			Command:   "brew",
			Args:      []string{"install", "opencode-ai/tap/opencode"},
			Platforms: []string{"darwin", "linux"},
		},
		{
			Name:      "curl",
			Probe:     "curl",
			Command:   "bash",
			Args:      []string{"-c", fmt.Sprintf("curl -fsSL %s | bash", InstallScriptURL)},
			Platforms: []string{"darwin", "linux", "freebsd"},
		},
	}
}

// Installer installs the server executable with the first package manager
// that is present and succeeds.
type Installer struct {
	detector *Detector
	runner   Runner
	methods  []InstallMethod
	logger   *slog.Logger
}

// NewInstaller creates an Installer that shares the detector's runner and
// uses it to confirm each installation.
func NewInstaller(d *Detector, methods ...InstallMethod) *Installer {
	if len(methods) == 0 {
		methods = DefaultInstallMethods()
	}
	return &Installer{
		detector: d,
		runner:   d.runner,
		methods:  methods,
		logger:   d.logger,
	}
}

// Install tries each method in order and returns the detected path of
// command once one succeeds.
func (i *Installer) Install(ctx context.Context, command string) (string, error) {
	var errs []error

	for _, m := range i.methods {
		if !m.supports(i.detector.goos) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", &sdkerr.Error{Kind: sdkerr.KindInstall, Command: command, Err: err}
		}

		probe, err := i.runner.Run(ctx, m.Probe, "--version")
		if err != nil || !probe.Success() {
			i.logger.Debug("install method unavailable", "method", m.Name)
			continue
		}

		i.logger.Info("installing server", "method", m.Name, "command", m.Command)
		out, err := i.runner.Run(ctx, m.Command, m.Args...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Name, err))
			continue
		}
		if !out.Success() {
			errs = append(errs, fmt.Errorf("%s: exit status %d", m.Name, out.ExitCode))
			continue
		}

		if res := i.detector.Detect(ctx, command); res.Available {
			i.logger.Info("server installed", "method", m.Name, "path", res.Path)
			return res.Path, nil
		}
		errs = append(errs, fmt.Errorf("%s: %s still not found after install", m.Name, command))
	}

	return "", &sdkerr.Error{
		Kind:    sdkerr.KindInstall,
		Command: command,
		Reason:  "no install method succeeded (tried npm, brew, curl)",
		Err:     errors.Join(errs...),
	}
}
