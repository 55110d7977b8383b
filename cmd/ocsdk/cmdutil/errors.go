package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/marmos91/opencode-sdk/pkg/apiclient"
	"github.com/marmos91/opencode-sdk/pkg/sdkerr"
)

// Hints returns follow-up suggestions for well-known failures, or nil.
func Hints(err error, baseURL string) []string {
	if err == nil {
		return nil
	}

	switch sdkerr.KindOf(err) {
	case sdkerr.KindCommandNotFound:
		return []string{
			"Or point at a running server with --url or OPENCODE_BASE_URL",
		}
	case sdkerr.KindHealthCheck:
		return []string{
			"Check the server state: ocsdk server status",
			"The recorded pid may now belong to another program; use --force only if it is still the server",
		}
	case sdkerr.KindSpawn, sdkerr.KindStartupTimeout:
		return []string{
			"Check the server output: ocsdk server logs",
			"Try starting it by hand: opencode serve",
			"Raise lifecycle.startup_timeout if the server is slow to boot",
		}
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuthError() {
		return []string{
			"Set server.password in the config or OPENCODE_SERVER_PASSWORD",
		}
	}

	if isTimeout(err) {
		return []string{
			fmt.Sprintf("The server at %s took too long to respond", baseURL),
			"Check that the server is running properly",
			"Raise client.timeout or try a different --url",
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return []string{
			fmt.Sprintf("Failed to connect to %s", baseURL),
			"Start a server: ocsdk server start (or opencode serve)",
			"Or specify a different URL with --url or OPENCODE_BASE_URL",
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// PrintError writes err and any hints to w.
func PrintError(w io.Writer, err error) {
	p := Printer(w)
	p.Error(fmt.Sprintf("Error: %v", err))

	hints := Hints(err, GetConfig().BaseURL())
	if len(hints) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	for _, h := range hints {
		p.Hint("  " + h)
	}
}
