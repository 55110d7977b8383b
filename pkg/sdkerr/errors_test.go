package sdkerr

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("ensure: %w", StartupTimeout("http://127.0.0.1:4096", 30*time.Second, "timed out after 30000ms"))

	assert.True(t, errors.Is(err, ErrStartupTimeout))
	assert.False(t, errors.Is(err, ErrSpawn))
	assert.False(t, errors.Is(err, ErrCommandNotFound))
	assert.Equal(t, KindStartupTimeout, KindOf(err))
}

func TestErrorAs(t *testing.T) {
	cause := errors.New("exec: \"opencode\": executable file not found in $PATH")
	err := fmt.Errorf("wrapped: %w", Spawn("opencode", cause, "boom\n"))

	var sdkErr *Error
	require.True(t, errors.As(err, &sdkErr))
	assert.Equal(t, KindSpawn, sdkErr.Kind)
	assert.Equal(t, "opencode", sdkErr.Command)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "SPAWN_FAILED", sdkErr.Code())
}

func TestErrorMessages(t *testing.T) {
	t.Run("CommandNotFoundIncludesInstructions", func(t *testing.T) {
		msg := CommandNotFound("opencode").Error()
		assert.Contains(t, msg, "command 'opencode' not found in PATH")
		assert.Contains(t, msg, "Install OpenCode using one of these methods")
	})

	t.Run("SpawnIncludesOutput", func(t *testing.T) {
		msg := Spawn("opencode", errors.New("exit status 1"), "address already in use\n").Error()
		assert.Contains(t, msg, "failed to start server process 'opencode'")
		assert.Contains(t, msg, "exit status 1")
		assert.Contains(t, msg, "Server output:\naddress already in use")
	})

	t.Run("StartupTimeoutIncludesAddressAndTimeout", func(t *testing.T) {
		msg := StartupTimeout("http://127.0.0.1:4096", 1500*time.Millisecond, "").Error()
		assert.Equal(t, "server at http://127.0.0.1:4096 did not become healthy within 1500ms", msg)
	})

	t.Run("HealthCheckIncludesReason", func(t *testing.T) {
		msg := HealthCheck("http://localhost:1", "HTTP 503: Service Unavailable").Error()
		assert.Equal(t, "server at http://localhost:1 is not responding: HTTP 503: Service Unavailable", msg)
	})
}

func TestKindOfNonSDKError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestInstallInstructions(t *testing.T) {
	assert.Contains(t, InstallInstructions("darwin"), "brew install opencode-ai/tap/opencode")
	assert.Contains(t, InstallInstructions("windows"), "pnpm add -g opencode-ai")
	assert.Equal(t, InstallInstructions("linux"), InstallInstructions("plan9"))
}
