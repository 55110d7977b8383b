package supervisor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailBufferKeepsLastBytes(t *testing.T) {
	tb := newTailBuffer(8)

	_, _ = tb.Write([]byte("0123"))
	_, _ = tb.Write([]byte("456789ab"))

	assert.Equal(t, "456789ab", tb.String())

	_, _ = tb.Write([]byte("cd"))
	assert.Equal(t, "6789abcd", tb.String())
}

func TestLineWriterSplitsLines(t *testing.T) {
	var got []string
	tail := newTailBuffer(0)
	w := newLineWriter(func(line string) { got = append(got, line) }, tail)

	_, _ = w.Write([]byte("first\r\nsec"))
	_, _ = w.Write([]byte("ond\n\nthi"))
	assert.Equal(t, []string{"first", "second", ""}, got)

	w.Flush()
	assert.Equal(t, []string{"first", "second", "", "thi"}, got)
	assert.Equal(t, "first\r\nsecond\n\nthi", tail.String())

	w.Flush()
	assert.Len(t, got, 4)
}

func TestLineWriterWithoutCallback(t *testing.T) {
	tail := newTailBuffer(0)
	w := newLineWriter(nil, tail)

	n, err := w.Write([]byte("only captured\n"))
	require.NoError(t, err)
	assert.Equal(t, 14, n)
	assert.Equal(t, "only captured\n", tail.String())
}

func TestReadFileTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"+strings.Repeat("x", 10)+"new\n"), 0644))

	assert.Equal(t, strings.Repeat("x", 10)+"new\n", readFileTail(path, 4, 1024))
	assert.Equal(t, "xxnew\n", readFileTail(path, 4, 6))
	assert.Empty(t, readFileTail(filepath.Join(t.TempDir(), "missing"), 0, 10))
}
