package supervisor

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
)

// DefaultTailSize bounds the output retained for diagnostics.
const DefaultTailSize = 64 * 1024

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(size int) *tailBuffer {
	if size <= 0 {
		size = DefaultTailSize
	}
	return &tailBuffer{max: size}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

// lineWriter splits a stream into lines for a callback and mirrors the raw
// bytes into a shared tail buffer.
type lineWriter struct {
	mu      sync.Mutex
	partial []byte
	emit    func(line string)
	tail    *tailBuffer
}

func newLineWriter(emit func(string), tail *tailBuffer) *lineWriter {
	return &lineWriter{emit: emit, tail: tail}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w.tail != nil {
		_, _ = w.tail.Write(p)
	}
	if w.emit == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.partial = append(w.partial, p...)
	for {
		line, rest, found := bytes.Cut(w.partial, []byte{'\n'})
		if !found {
			break
		}
		w.emit(strings.TrimRight(string(line), "\r"))
		w.partial = rest
	}
	// Keep the unterminated remainder in a fresh slice so the backing array
	// does not grow without bound.
	w.partial = append([]byte(nil), w.partial...)
	return len(p), nil
}

// Flush emits any unterminated trailing line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.emit != nil && len(w.partial) > 0 {
		w.emit(strings.TrimRight(string(w.partial), "\r"))
	}
	w.partial = nil
}

// readFileTail returns at most limit trailing bytes of path written after
// offset from.
func readFileTail(path string, from, limit int64) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return ""
	}
	start := max(from, info.Size()-limit)
	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			return ""
		}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	return string(data)
}
