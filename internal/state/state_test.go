package state

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG layout only")
	}

	t.Run("xdg state home", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
		assert.Equal(t, filepath.Join("/tmp/xdg-state", DirName), DefaultDir())
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "")
		t.Setenv("HOME", "/tmp/home")
		assert.Equal(t, filepath.Join("/tmp/home", ".local", "state", DirName), DefaultDir())
	})
}

func TestNewStoreDefaultsDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	assert.Equal(t, DefaultDir(), NewStore("").Dir())
}

func TestStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewStore(dir)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoServer)

	started := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := &Server{
		PID:       4242,
		BaseURL:   "http://127.0.0.1:4096",
		Command:   "/usr/local/bin/opencode",
		LogFile:   store.LogPath(),
		StartedAt: started,
	}
	require.NoError(t, store.Save(rec))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, rec.PID, got.PID)
	assert.Equal(t, rec.BaseURL, got.BaseURL)
	assert.Equal(t, rec.Command, got.Command)
	assert.Equal(t, filepath.Join(dir, LogFileName), got.LogFile)
	assert.True(t, started.Equal(got.StartedAt))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(store.ServerPath())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(FilePermissions), info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")

	require.NoError(t, store.Remove())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoServer)

	assert.NoError(t, store.Remove(), "removing twice is fine")
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(&Server{PID: 1, BaseURL: "http://127.0.0.1:4096"}))
	require.NoError(t, store.Save(&Server{PID: 2, BaseURL: "http://127.0.0.1:5000"}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, got.PID)
	assert.Equal(t, "http://127.0.0.1:5000", got.BaseURL)
}

func TestStoreLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"not json", "pid=12", "corrupt server state"},
		{"missing pid", `{"base_url":"http://127.0.0.1:4096"}`, "invalid pid 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(t.TempDir())
			require.NoError(t, os.WriteFile(store.ServerPath(), []byte(tt.content), 0600))

			_, err := store.Load()
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNoServer)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestServerUptime(t *testing.T) {
	assert.Zero(t, (&Server{}).Uptime())

	s := &Server{StartedAt: time.Now().Add(-time.Minute)}
	assert.GreaterOrEqual(t, s.Uptime(), time.Minute)
}
