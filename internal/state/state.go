// Package state persists the record of a server started by "ocsdk server
// start" so later invocations can find, inspect and stop it.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// DirName is the per-user state directory name.
	DirName = "ocsdk"
	// ServerFileName holds the Server record.
	ServerFileName = "server.json"
	// LogFileName receives the output of a started server.
	LogFileName = "server.log"

	FilePermissions = 0600
	DirPermissions  = 0700
)

// ErrNoServer indicates no server record exists.
var ErrNoServer = errors.New("no server recorded - run 'ocsdk server start' first")

// Server describes a server started in the background.
type Server struct {
	PID       int       `json:"pid" yaml:"pid"`
	BaseURL   string    `json:"base_url" yaml:"base_url"`
	Command   string    `json:"command,omitempty" yaml:"command,omitempty"`
	LogFile   string    `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
}

// Uptime is the time since StartedAt.
func (s *Server) Uptime() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.StartedAt)
}

// DefaultDir returns the per-user state directory:
// %LOCALAPPDATA%\ocsdk on Windows, $XDG_STATE_HOME/ocsdk or
// ~/.local/state/ocsdk elsewhere.
func DefaultDir() string {
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, DirName)
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), DirName)
		}
		return filepath.Join(home, "AppData", "Local", DirName)
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), DirName)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, DirName)
}

// Store reads and writes the server record in one directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, or DefaultDir when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

func (s *Store) Dir() string        { return s.dir }
func (s *Store) ServerPath() string { return filepath.Join(s.dir, ServerFileName) }
func (s *Store) LogPath() string    { return filepath.Join(s.dir, LogFileName) }

// EnsureDir creates the state directory.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, DirPermissions); err != nil {
		return fmt.Errorf("cannot create state directory: %w", err)
	}
	return nil
}

// Load returns the recorded server or ErrNoServer.
func (s *Store) Load() (*Server, error) {
	data, err := os.ReadFile(s.ServerPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoServer
		}
		return nil, fmt.Errorf("failed to read server state: %w", err)
	}

	var rec Server
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt server state %s: %w", s.ServerPath(), err)
	}
	if rec.PID <= 0 {
		return nil, fmt.Errorf("corrupt server state %s: invalid pid %d", s.ServerPath(), rec.PID)
	}
	return &rec, nil
}

// Save writes rec, replacing any previous record.
func (s *Store) Save(rec *Server) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ServerFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write server state: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write server state: %w", err)
	}
	if err := tmp.Chmod(FilePermissions); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write server state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write server state: %w", err)
	}
	return os.Rename(tmp.Name(), s.ServerPath())
}

// Remove deletes the record. A missing record is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.ServerPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove server state: %w", err)
	}
	return nil
}
