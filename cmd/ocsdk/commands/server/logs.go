package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
	"github.com/marmos91/opencode-sdk/internal/state"
)

var (
	logsFollow bool
	logsLines  int
	logsSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail server logs",
	Long: `Display and optionally follow the output of the server started by ocsdk.

The log file is the one recorded by "ocsdk server start", falling back to
lifecycle.log_file and then $XDG_STATE_HOME/ocsdk/server.log.

Examples:
  # Show last 100 lines (default)
  ocsdk server logs

  # Show last 50 lines
  ocsdk server logs -n 50

  # Follow logs in real-time
  ocsdk server logs -f

  # Show logs since a specific time
  ocsdk server logs --since "2026-01-15T10:00:00Z"`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since timestamp (RFC3339 format)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	logFile := resolveLogFile(cmdutil.StateStore(), cmdutil.GetConfig().Lifecycle.LogFile)

	if _, err := os.Stat(logFile); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("log file not found: %s\nThe server may not have been started by ocsdk", logFile)
	}

	var since time.Time
	if logsSince != "" {
		var err error
		since, err = time.Parse(time.RFC3339, logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since format (use RFC3339): %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if logsFollow {
		return followLogs(cmd.Context(), out, logFile, logsLines, since)
	}
	return showLogs(out, logFile, logsLines, since)
}

// resolveLogFile picks the recorded log file, then the configured one,
// then the default state location.
func resolveLogFile(store *state.Store, configured string) string {
	if rec, err := store.Load(); err == nil && rec.LogFile != "" {
		return rec.LogFile
	}
	if configured != "" {
		return configured
	}
	return store.LogPath()
}

// showLogs writes the last lines of logFile to w.
func showLogs(w io.Writer, logFile string, lines int, since time.Time) error {
	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return printTail(w, file, lines, since)
}

// printTail writes the last lines of r to w. r is read to EOF.
func printTail(w io.Writer, r io.Reader, lines int, since time.Time) error {
	tail, err := tailLines(r, lines, since)
	if err != nil {
		return err
	}
	for _, line := range tail {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// tailLines returns the last n lines of r, skipping lines with a timestamp
// before since. Lines without a timestamp are kept.
func tailLines(r io.Reader, n int, since time.Time) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !since.IsZero() {
			if ts := extractTimestamp(line); !ts.IsZero() && ts.Before(since) {
				continue
			}
		}
		if len(ring) == n {
			copy(ring, ring[1:])
			ring = ring[:n-1]
		}
		ring = append(ring, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}
	return ring, nil
}

// followLogs prints the tail of logFile, then new lines as they are
// written, until ctx is cancelled. The watch is armed before the file is
// read, and the tail and the follow share one descriptor, so no write is
// missed between them.
func followLogs(ctx context.Context, w io.Writer, logFile string, initialLines int, since time.Time) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(logFile); err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}

	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if initialLines > 0 {
		if err := printTail(w, file, initialLines, since); err != nil {
			return err
		}
	} else if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of log file: %w", err)
	}
	reader := bufio.NewReader(file)

	_, _ = fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)...\n", logFile)

	var partial strings.Builder
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				if err := copyNewLines(w, reader, &partial); err != nil {
					return err
				}
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				return fmt.Errorf("log file %s was removed", logFile)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// copyNewLines writes every complete line available in r. A trailing
// fragment without newline is held in partial until the rest arrives.
func copyNewLines(w io.Writer, r *bufio.Reader, partial *strings.Builder) error {
	for {
		chunk, err := r.ReadString('\n')
		partial.WriteString(chunk)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("error reading log file: %w", err)
		}
		if _, err := io.WriteString(w, partial.String()); err != nil {
			return err
		}
		partial.Reset()
	}
}

// extractTimestamp finds an RFC3339 timestamp at the start of a line or in
// a JSON "time" field.
func extractTimestamp(line string) time.Time {
	if len(line) >= 20 {
		if t, err := time.Parse(time.RFC3339, line[:20]); err == nil {
			return t
		}
		if len(line) >= 25 {
			if t, err := time.Parse(time.RFC3339, line[:25]); err == nil {
				return t
			}
		}
	}

	const timeKey = `"time":"`
	if idx := strings.Index(line, timeKey); idx >= 0 {
		start := idx + len(timeKey)
		if end := strings.IndexByte(line[start:], '"'); end > 0 {
			if t, err := time.Parse(time.RFC3339Nano, line[start:start+end]); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
