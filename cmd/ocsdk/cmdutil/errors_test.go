package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/opencode-sdk/pkg/apiclient"
	"github.com/marmos91/opencode-sdk/pkg/sdkerr"
)

func TestHints(t *testing.T) {
	const baseURL = "http://127.0.0.1:4096"

	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), ""},
		{"command not found", sdkerr.CommandNotFound("opencode"), "--url"},
		{"startup timeout", sdkerr.StartupTimeout(baseURL, 30*time.Second, "timeout"), "ocsdk server logs"},
		{"wrapped spawn", fmt.Errorf("connect: %w", sdkerr.Spawn("opencode", errors.New("exec"), "")), "opencode serve"},
		{"health check", sdkerr.HealthCheck(baseURL, "unreachable"), "ocsdk server status"},
		{"auth", &apiclient.APIError{StatusCode: 401, Message: "unauthorized"}, "OPENCODE_SERVER_PASSWORD"},
		{"deadline", fmt.Errorf("request: %w", context.DeadlineExceeded), "took too long"},
		{"dial", fmt.Errorf("get sessions: %w", dialErr), "Failed to connect to " + baseURL},
		{"api not found", &apiclient.APIError{StatusCode: 404, Message: "missing"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := Hints(tt.err, baseURL)
			if tt.contains == "" {
				if hints != nil {
					t.Errorf("Hints() = %v, want nil", hints)
				}
				return
			}
			joined := strings.Join(hints, "\n")
			if !strings.Contains(joined, tt.contains) {
				t.Errorf("Hints() = %v, want one containing %q", hints, tt.contains)
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	withFlags(t, GlobalFlags{NoColor: true})
	SetConfig(nil)

	var buf bytes.Buffer
	PrintError(&buf, sdkerr.CommandNotFound("opencode"))

	got := buf.String()
	if !strings.HasPrefix(got, "Error: ") {
		t.Errorf("PrintError() = %q, want Error: prefix", got)
	}
	if !strings.Contains(got, "  Or point at a running server") {
		t.Errorf("PrintError() = %q, missing hint", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("PrintError() = %q, want no color codes", got)
	}

	buf.Reset()
	PrintError(&buf, errors.New("plain failure"))
	if got := buf.String(); got != "Error: plain failure\n" {
		t.Errorf("PrintError() = %q, want single line", got)
	}
}
