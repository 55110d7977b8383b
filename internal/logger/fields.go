package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging. Components that take an
// injected *slog.Logger use the same keys so output stays greppable.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Server and process
	KeyComponent = "component"
	KeyBaseURL   = "base_url"
	KeyHostname  = "hostname"
	KeyPort      = "port"
	KeyPID       = "pid"
	KeyPath      = "path"
	KeyArgs      = "args"
	KeyMode      = "mode"
	KeyExitCode  = "exit_code"
	KeyDecision  = "decision"
	KeyReason    = "reason"

	// Client
	KeyCommand   = "command"
	KeySessionID = "session_id"
	KeyRequestID = "request_id"
	KeyMethod    = "method"
	KeyStatus    = "status"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// ============================================================================
// Field constructors
// ============================================================================

// BaseURL returns a slog.Attr for a server base URL
func BaseURL(u string) slog.Attr {
	return slog.String(KeyBaseURL, u)
}

// PID returns a slog.Attr for a process ID
func PID(pid int) slog.Attr {
	return slog.Int(KeyPID, pid)
}

// Path returns a slog.Attr for an executable or file path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// SessionID returns a slog.Attr for an assistant session
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// Decision returns a slog.Attr for a lifecycle decision
func Decision(d string) slog.Attr {
	return slog.String(KeyDecision, d)
}

// Reason returns a slog.Attr for a health probe reason
func Reason(r string) slog.Attr {
	return slog.String(KeyReason, r)
}

// ExitCode returns a slog.Attr for a process exit code
func ExitCode(code int) slog.Attr {
	return slog.Int(KeyExitCode, code)
}

// DurationMs returns a slog.Attr with d in milliseconds
func DurationMs(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMs, float64(d.Microseconds())/1000.0)
}

// Err returns a slog.Attr for an error, or an empty Attr for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
