package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ColorTextHandler writes one human-readable line per record:
//
//	15:04:05.000 INFO  [lifecycle] server started pid=4242 startup=812ms
//
// A "component" attribute is lifted into the bracketed prefix.
type ColorTextHandler struct {
	opts      *slog.HandlerOptions
	w         io.Writer
	mu        *sync.Mutex
	attrs     []slog.Attr
	groups    []string
	component string
	useColor  bool
}

// NewColorTextHandler creates a new ColorTextHandler
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorTextHandler{
		opts:     opts,
		w:        w,
		mu:       &sync.Mutex{},
		useColor: useColor,
	}
}

// Enabled reports whether the handler handles records at the given level
func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes a log record
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf []byte
	buf = append(buf, h.paint(colorGray, r.Time.Format("15:04:05.000"))...)
	buf = append(buf, ' ')
	buf = append(buf, h.formatLevel(r.Level)...)

	component := h.component
	prefix := strings.Join(h.groups, ".")

	var recAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == KeyComponent && len(h.groups) == 0 {
			component = a.Value.String()
			return true
		}
		recAttrs = append(recAttrs, a)
		return true
	})

	if component != "" {
		buf = append(buf, ' ')
		buf = append(buf, h.paint(colorBlue, "["+component+"]")...)
	}
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, "", attr)
	}
	for _, attr := range recAttrs {
		buf = h.appendAttr(buf, prefix, attr)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	_, err := h.w.Write(buf)
	h.mu.Unlock()
	return err
}

func (h *ColorTextHandler) paint(color, s string) string {
	if !h.useColor {
		return s
	}
	return color + s + colorReset
}

// formatLevel returns a fixed-width level with optional color
func (h *ColorTextHandler) formatLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return h.paint(colorGray, "DEBUG")
	case level < slog.LevelWarn:
		return h.paint(colorGreen, "INFO ")
	case level < slog.LevelError:
		return h.paint(colorYellow, "WARN ")
	default:
		return h.paint(colorRed, "ERROR")
	}
}

// appendAttr formats and appends an attribute, flattening groups into
// dotted keys.
func (h *ColorTextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	a.Value = a.Value.Resolve()

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, key, ga)
		}
		return buf
	}

	return fmt.Appendf(buf, " %s=%s", h.paint(colorCyan, key), formatValue(a.Value))
}

// formatValue formats a slog.Value for text output, quoting strings that
// contain spaces or quotes.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return strconv.Quote(err.Error())
		}
		return fmt.Sprintf("%v", v.Any())
	default:
		return v.String()
	}
}

// WithAttrs returns a new handler with additional attrs
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		if a.Key == KeyComponent && prefix == "" {
			clone.component = a.Value.String()
			continue
		}
		if prefix != "" {
			a = slog.Attr{Key: prefix + "." + a.Key, Value: a.Value}
		}
		clone.attrs = append(clone.attrs, a)
	}
	return clone
}

// WithGroup returns a new handler with a group name
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *ColorTextHandler) clone() *ColorTextHandler {
	return &ColorTextHandler{
		opts:      h.opts,
		w:         h.w,
		mu:        h.mu, // Share mutex with parent
		attrs:     append([]slog.Attr{}, h.attrs...),
		groups:    append([]string{}, h.groups...),
		component: h.component,
		useColor:  h.useColor,
	}
}
