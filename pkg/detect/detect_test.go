package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner returns canned results keyed by "name arg1 arg2".
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   []string
}

type fakeResult struct {
	out Output
	err error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: make(map[string]fakeResult)}
}

func (f *fakeRunner) on(cmdline string, out Output, err error) *fakeRunner {
	f.results[cmdline] = fakeResult{out: out, err: err}
	return f
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (Output, error) {
	key := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)

	if r, ok := f.results[key]; ok {
		return r.out, r.err
	}
	return Output{ExitCode: 1}, nil
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("FoundReturnsFirstTrimmedLine", func(t *testing.T) {
		runner := newFakeRunner().on("which opencode", Output{Stdout: []byte("  /usr/local/bin/opencode \n/opt/bin/opencode\n")}, nil)
		d := New(WithRunner(runner), WithGOOS("linux"))

		res := d.Detect(ctx, "opencode")
		assert.True(t, res.Available)
		assert.Equal(t, "/usr/local/bin/opencode", res.Path)
		assert.Empty(t, res.Version)
	})

	t.Run("WindowsUsesWhereAndCRLF", func(t *testing.T) {
		runner := newFakeRunner().on("where opencode", Output{Stdout: []byte("C:\\tools\\opencode.exe\r\nC:\\other\\opencode.cmd\r\n")}, nil)
		d := New(WithRunner(runner), WithGOOS("windows"))

		res := d.Detect(ctx, "opencode")
		assert.True(t, res.Available)
		assert.Equal(t, "C:\\tools\\opencode.exe", res.Path)
		assert.Equal(t, []string{"where opencode"}, runner.Calls())
	})

	t.Run("NonZeroExitIsUnavailable", func(t *testing.T) {
		runner := newFakeRunner().on("which missing", Output{ExitCode: 1, Stderr: []byte("missing not found")}, nil)
		d := New(WithRunner(runner), WithGOOS("linux"))

		assert.Equal(t, Result{}, d.Detect(ctx, "missing"))
	})

	t.Run("EmptyOutputIsUnavailable", func(t *testing.T) {
		runner := newFakeRunner().on("which ghost", Output{Stdout: []byte("  \n")}, nil)
		d := New(WithRunner(runner), WithGOOS("linux"))

		assert.False(t, d.Detect(ctx, "ghost").Available)
	})

	t.Run("ResolverLaunchFailureIsUnavailable", func(t *testing.T) {
		runner := newFakeRunner().on("which opencode", Output{ExitCode: -1}, errors.New("exec: \"which\": executable file not found in $PATH"))
		d := New(WithRunner(runner), WithGOOS("linux"))

		assert.False(t, d.Detect(ctx, "opencode").Available)
	})
}

func TestDetectAbsolutePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bit semantics differ on Windows")
	}
	ctx := context.Background()
	dir := t.TempDir()

	exe := filepath.Join(dir, "opencode")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	plain := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(plain, []byte("hello"), 0o644))

	runner := newFakeRunner()
	d := New(WithRunner(runner))

	res := d.Detect(ctx, exe)
	assert.True(t, res.Available)
	assert.Equal(t, exe, res.Path)

	assert.False(t, d.Detect(ctx, plain).Available, "non-executable file")
	assert.False(t, d.Detect(ctx, dir).Available, "directory")
	assert.False(t, d.Detect(ctx, filepath.Join(dir, "nope")).Available, "missing file")

	assert.Empty(t, runner.Calls(), "absolute paths never spawn the resolver")
}

func TestDetectWithVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("VersionFromStdout", func(t *testing.T) {
		runner := newFakeRunner().
			on("which opencode", Output{Stdout: []byte("/bin/opencode\n")}, nil).
			on("/bin/opencode --version", Output{Stdout: []byte("0.15.2\n")}, nil)
		d := New(WithRunner(runner), WithGOOS("linux"))

		res := d.DetectWithVersion(ctx, "opencode")
		assert.Equal(t, Result{Available: true, Path: "/bin/opencode", Version: "0.15.2"}, res)
	})

	t.Run("VersionFailureLeavesEmpty", func(t *testing.T) {
		runner := newFakeRunner().
			on("which opencode", Output{Stdout: []byte("/bin/opencode\n")}, nil).
			on("/bin/opencode --version", Output{ExitCode: 2}, nil)
		d := New(WithRunner(runner), WithGOOS("linux"))

		res := d.DetectWithVersion(ctx, "opencode")
		assert.True(t, res.Available)
		assert.Empty(t, res.Version)
	})

	t.Run("UnavailableSkipsVersionProbe", func(t *testing.T) {
		runner := newFakeRunner()
		d := New(WithRunner(runner), WithGOOS("linux"))

		res := d.DetectWithVersion(ctx, "opencode")
		assert.False(t, res.Available)
		assert.Equal(t, []string{"which opencode"}, runner.Calls())
	})
}

func TestResolver(t *testing.T) {
	assert.Equal(t, "which", New(WithGOOS("darwin")).Resolver())
	assert.Equal(t, "which", New(WithGOOS("linux")).Resolver())
	assert.Equal(t, "where", New(WithGOOS("windows")).Resolver())
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "definitely-not-a-real-binary-ocsdk")
	assert.Error(t, err)
}
