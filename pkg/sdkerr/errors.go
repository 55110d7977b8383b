// Package sdkerr defines the error type shared by the server lifecycle
// packages (detect, supervisor, lifecycle) and the CLI.
package sdkerr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Kind identifies which lifecycle step failed.
type Kind int

const (
	// KindUnknown is the zero value and never produced by this module.
	KindUnknown Kind = iota
	// KindCommandNotFound means the server executable could not be located.
	KindCommandNotFound
	// KindSpawn means the server process could not be launched or exited
	// immediately after launch.
	KindSpawn
	// KindStartupTimeout means a spawned server never became healthy.
	KindStartupTimeout
	// KindHealthCheck means a server did not answer a health probe.
	KindHealthCheck
	// KindInstall means automatic installation of the server failed.
	KindInstall
)

// String returns the stable code used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case KindCommandNotFound:
		return "COMMAND_NOT_FOUND"
	case KindSpawn:
		return "SPAWN_FAILED"
	case KindStartupTimeout:
		return "STARTUP_TIMEOUT"
	case KindHealthCheck:
		return "SERVER_UNHEALTHY"
	case KindInstall:
		return "INSTALL_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Sentinels for errors.Is matching. Only the Kind is compared.
var (
	ErrCommandNotFound = &Error{Kind: KindCommandNotFound}
	ErrSpawn           = &Error{Kind: KindSpawn}
	ErrStartupTimeout  = &Error{Kind: KindStartupTimeout}
	ErrHealthCheck     = &Error{Kind: KindHealthCheck}
	ErrInstall         = &Error{Kind: KindInstall}
)

// Error is the single tagged error returned by the lifecycle packages.
// Fields that do not apply to a Kind are left empty.
type Error struct {
	Kind Kind

	// Command is the executable name or path involved.
	Command string

	// BaseURL is the server address being probed or started.
	BaseURL string

	// Timeout is the limit that expired (StartupTimeout, HealthCheck).
	Timeout time.Duration

	// Output holds captured server output for diagnostics.
	Output string

	// Reason is a short human-readable cause (e.g. a probe error message).
	Reason string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	switch e.Kind {
	case KindCommandNotFound:
		fmt.Fprintf(&b, "command '%s' not found in PATH.\n\n%s", e.command(), InstallInstructions(runtime.GOOS))
	case KindSpawn:
		fmt.Fprintf(&b, "failed to start server process '%s'", e.command())
		if e.BaseURL != "" {
			fmt.Fprintf(&b, " for %s", e.BaseURL)
		}
	case KindStartupTimeout:
		fmt.Fprintf(&b, "server at %s did not become healthy within %dms", e.BaseURL, e.Timeout.Milliseconds())
	case KindHealthCheck:
		fmt.Fprintf(&b, "server at %s is not responding", e.BaseURL)
	case KindInstall:
		fmt.Fprintf(&b, "failed to install '%s'", e.command())
	default:
		b.WriteString("unknown lifecycle error")
	}

	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Output != "" {
		fmt.Fprintf(&b, "\n\nServer output:\n%s", strings.TrimRight(e.Output, "\n"))
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Code returns the stable string code of the error kind.
func (e *Error) Code() string {
	return e.Kind.String()
}

func (e *Error) command() string {
	if e.Command == "" {
		return "opencode"
	}
	return e.Command
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CommandNotFound builds a KindCommandNotFound error.
func CommandNotFound(command string) *Error {
	return &Error{Kind: KindCommandNotFound, Command: command}
}

// Spawn builds a KindSpawn error.
func Spawn(command string, err error, output string) *Error {
	return &Error{Kind: KindSpawn, Command: command, Err: err, Output: output}
}

// StartupTimeout builds a KindStartupTimeout error.
func StartupTimeout(baseURL string, timeout time.Duration, reason string) *Error {
	return &Error{Kind: KindStartupTimeout, BaseURL: baseURL, Timeout: timeout, Reason: reason}
}

// HealthCheck builds a KindHealthCheck error.
func HealthCheck(baseURL, reason string) *Error {
	return &Error{Kind: KindHealthCheck, BaseURL: baseURL, Reason: reason}
}
