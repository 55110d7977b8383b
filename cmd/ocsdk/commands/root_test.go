package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/cli/prompt"
	"github.com/marmos91/opencode-sdk/internal/testutil/fakeserver"
)

// isolate points config, state and PATH at empty temp dirs and clears the
// environment overrides the config loader reads.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("PATH", t.TempDir())
	for _, key := range []string{
		"OPENCODE_BASE_URL",
		"OPENCODE_SERVER_URL",
		"OPENCODE_SERVER_PASSWORD",
		"OPENCODE_CLIENT_AGENT",
		"OPENCODE_AGENT",
	} {
		t.Setenv(key, "")
	}

	prevInteractive := prompt.Interactive
	prompt.Interactive = func() bool { return false }
	t.Cleanup(func() {
		prompt.Interactive = prevInteractive
		cmdutil.SetConfig(nil)
	})
}

// resetFlags restores every flag to its default so values do not leak
// between executions of the shared root command.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()

	rootCmd.SetArgs(args)
	runErr := rootCmd.ExecuteContext(context.Background())
	if runErr != nil {
		teardown()
	}

	_ = w.Close()
	os.Stdout = orig
	out := <-done
	_ = r.Close()
	return out, runErr
}

func TestVersionShort(t *testing.T) {
	isolate(t)

	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestVersionSkipsBrokenConfig(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	out, err := run(t, "version", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ocsdk "+Version)
	assert.Contains(t, out, "Go version:")
}

func TestSessionCreateAndList(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)

	out, err := run(t, "session", "create", "-a", "build", "--url", fake.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "ses_0001"`)
	assert.Contains(t, out, `"agent": "build"`)

	out, err = run(t, "session", "list", "--url", fake.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "ses_0001")
	assert.Contains(t, out, "build")
}

func TestSessionListEmpty(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)

	out, err := run(t, "session", "list", "--url", fake.URL)
	require.NoError(t, err)
	assert.Equal(t, "No sessions found.\n", out)
}

func TestChatNewSession(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)

	out, err := run(t, "chat", "hello", "--url", fake.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Response:")
	assert.Contains(t, out, "echo: hello")
	assert.Contains(t, out, "Session ID: ses_0001")
	assert.True(t, fake.HasSession("ses_0001"))
}

func TestChatExistingSessionWithFiles(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)
	id := fake.AddSession("review", "build")

	out, err := run(t, "chat", "review", "-s", id, "-f", "a.go,b.go", "--url", fake.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"session_id": "`+id+`"`)
	assert.Contains(t, out, "(2 files: a.go, b.go)")

	msgs := fake.Messages(id)
	require.Len(t, msgs, 2)
	assert.Equal(t, "review", msgs[0].Content)
}

func TestFilesReadMissing(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)

	_, err := run(t, "files", "read", "missing.go", "--url", fake.URL)
	require.Error(t, err)
	assert.Equal(t, "file not found: missing.go", err.Error())
}

func TestFilesReadPrintsContent(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t, fakeserver.WithFile("main.go", "package main\n"))

	out, err := run(t, "files", "read", "main.go", "--url", fake.URL)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", out)
}

func TestSessionDeleteRequiresForce(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)
	id := fake.AddSession("", "")

	_, err := run(t, "session", "delete", id, "--url", fake.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use --force")
	assert.True(t, fake.HasSession(id))

	out, err := run(t, "session", "delete", id, "--force", "--url", fake.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted successfully")
	assert.False(t, fake.HasSession(id))
}

func TestSessionAbort(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)
	id := fake.AddSession("", "")

	_, err := run(t, "session", "abort", id, "--url", fake.URL)
	require.NoError(t, err)
	assert.True(t, fake.Aborted(id))
}

func TestConfigInitTwice(t *testing.T) {
	isolate(t)

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")

	_, err = run(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigValidateRejectsBadPort(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 70000\n"), 0o600))

	_, err := run(t, "config", "validate", "--config", path)
	assert.Error(t, err)
}

func TestConfigValidateOK(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 5000\n"), 0o600))

	out, err := run(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation: OK")
	assert.Contains(t, out, "5000")
}

func TestConfigShowRedactsPassword(t *testing.T) {
	isolate(t)
	t.Setenv("OPENCODE_SERVER_PASSWORD", "hunter2")

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "hunter2")
}

func TestServerStopWithoutRecord(t *testing.T) {
	isolate(t)

	_, err := run(t, "server", "stop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no server recorded")
}

func TestServerStatusHealthy(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)

	out, err := run(t, "server", "status", "--url", fake.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"healthy": true`)
	assert.Contains(t, out, `"auto_start": false`)
}

func TestServerStartRefusesExplicitURL(t *testing.T) {
	isolate(t)

	_, err := run(t, "server", "start", "--url", "http://127.0.0.1:1")
	assert.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	isolate(t)
	fake := fakeserver.New(t)

	_, err := run(t, "session", "list", "--url", fake.URL, "-o", "xml")
	assert.Error(t, err)
}
