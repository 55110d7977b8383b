// Package detect locates executables on the search path.
//
// Detection never fails with an error: a command that cannot be resolved
// for any reason (resolver missing, non-zero exit, empty output) is simply
// reported as unavailable.
package detect

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultVersionTimeout bounds the `<command> --version` probe.
const DefaultVersionTimeout = 5 * time.Second

// Result describes whether a command is available.
type Result struct {
	Available bool   `json:"available" yaml:"available"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Detector resolves command names to executable paths.
type Detector struct {
	runner         Runner
	logger         *slog.Logger
	goos           string
	versionTimeout time.Duration
}

// Option configures a Detector.
type Option func(*Detector)

// WithRunner overrides how the resolver is executed.
func WithRunner(r Runner) Option {
	return func(d *Detector) { d.runner = r }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithGOOS selects the resolver as if running on goos ("windows" uses where).
func WithGOOS(goos string) Option {
	return func(d *Detector) { d.goos = goos }
}

// WithVersionTimeout bounds the version probe.
func WithVersionTimeout(timeout time.Duration) Option {
	return func(d *Detector) { d.versionTimeout = timeout }
}

// New creates a Detector using os/exec and the host platform resolver.
func New(opts ...Option) *Detector {
	d := &Detector{
		runner:         ExecRunner{},
		logger:         slog.New(slog.DiscardHandler),
		goos:           runtime.GOOS,
		versionTimeout: DefaultVersionTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolver returns the platform lookup command: `where` on Windows,
// `which` everywhere else.
func (d *Detector) Resolver() string {
	if d.goos == "windows" {
		return "where"
	}
	return "which"
}

// Detect reports whether name is available.
//
// An absolute name is checked on disk without running a subprocess.
// Otherwise the platform resolver is run; the command is available when it
// exits 0 with non-empty output, and the first output line is the path.
func (d *Detector) Detect(ctx context.Context, name string) Result {
	if filepath.IsAbs(name) {
		return d.detectAbsolute(name)
	}

	resolver := d.Resolver()
	out, err := d.runner.Run(ctx, resolver, name)
	if err != nil {
		d.logger.Debug("resolver failed to run", "resolver", resolver, "command", name, "error", err)
		return Result{}
	}
	if !out.Success() {
		d.logger.Debug("command not found", "resolver", resolver, "command", name, "exit_code", out.ExitCode)
		return Result{}
	}

	path := firstLine(string(out.Stdout))
	if path == "" {
		d.logger.Debug("resolver returned empty output", "resolver", resolver, "command", name)
		return Result{}
	}

	d.logger.Debug("command resolved", "command", name, "path", path)
	return Result{Available: true, Path: path}
}

// DetectWithVersion is Detect followed by a `--version` probe when the
// command is available. Version probe failures leave Version empty.
func (d *Detector) DetectWithVersion(ctx context.Context, name string) Result {
	res := d.Detect(ctx, name)
	if res.Available {
		res.Version = d.Version(ctx, res.Path)
	}
	return res
}

// Version runs `<path> --version` and returns the first line of output,
// or "" when the probe fails or times out.
func (d *Detector) Version(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, d.versionTimeout)
	defer cancel()

	out, err := d.runner.Run(ctx, path, "--version")
	if err != nil || !out.Success() {
		d.logger.Debug("version probe failed", "path", path, "error", err, "exit_code", out.ExitCode)
		return ""
	}

	if v := firstLine(string(out.Stdout)); v != "" {
		return v
	}
	return firstLine(string(out.Stderr))
}

func (d *Detector) detectAbsolute(path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		d.logger.Debug("absolute path not found", "path", path, "error", err)
		return Result{}
	}
	if !isExecutable(info, d.goos) {
		d.logger.Debug("absolute path is not an executable file", "path", path, "mode", info.Mode().String())
		return Result{}
	}
	return Result{Available: true, Path: path}
}

func isExecutable(info fs.FileInfo, goos string) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	if goos == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// firstLine returns the first non-empty trimmed line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
