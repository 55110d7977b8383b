package detect

import (
	"context"
	"errors"
	"testing"

	"github.com/marmos91/opencode-sdk/pkg/sdkerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installRunner flips "which opencode" to success once an install command ran.
type installRunner struct {
	*fakeRunner
	installed string
}

func (r *installRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	out, err := r.fakeRunner.Run(ctx, name, args...)
	if name == r.installed && out.Success() && err == nil && len(args) > 0 && args[0] != "--version" {
		r.fakeRunner.on("which opencode", Output{Stdout: []byte("/usr/local/bin/opencode\n")}, nil)
	}
	return out, err
}

func TestInstallFirstAvailableMethodWins(t *testing.T) {
	base := newFakeRunner().
		on("npm --version", Output{ExitCode: 127}, nil).
		on("brew --version", Output{Stdout: []byte("Homebrew 4.3.0\n")}, nil).
		on("brew install opencode-ai/tap/opencode", Output{}, nil)
	runner := &installRunner{fakeRunner: base, installed: "brew"}

	d := New(WithRunner(runner), WithGOOS("darwin"))
	path, err := NewInstaller(d).Install(context.Background(), "opencode")

	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/opencode", path)
	assert.NotContains(t, base.Calls(), "npm install -g opencode-ai")
	assert.NotContains(t, base.Calls(), "curl --version")
}

func TestInstallAllMethodsFail(t *testing.T) {
	runner := newFakeRunner().
		on("npm --version", Output{Stdout: []byte("10.2.0")}, nil).
		on("npm install -g opencode-ai", Output{ExitCode: 1}, nil)

	d := New(WithRunner(runner), WithGOOS("linux"))
	_, err := NewInstaller(d).Install(context.Background(), "opencode")

	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerr.ErrInstall))
	assert.Contains(t, err.Error(), "npm: exit status 1")
}

func TestInstallSkipsUnsupportedPlatforms(t *testing.T) {
	runner := newFakeRunner()

	d := New(WithRunner(runner), WithGOOS("windows"))
	_, err := NewInstaller(d).Install(context.Background(), "opencode")

	require.Error(t, err)
	assert.Equal(t, []string{"npm --version"}, runner.Calls())
}

func TestInstallCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newFakeRunner()
	d := New(WithRunner(runner), WithGOOS("linux"))
	_, err := NewInstaller(d).Install(ctx, "opencode")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.Calls())
}
