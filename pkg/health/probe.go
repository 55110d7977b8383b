// Package health checks whether an assistant server is answering HTTP
// requests and waits for a freshly started server to become ready.
package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// Path is the endpoint probed for liveness.
	Path = "/session"

	// DefaultProbeTimeout bounds a single probe.
	DefaultProbeTimeout = 3 * time.Second
)

// Reason classifies a probe outcome.
type Reason string

const (
	ReasonOK          Reason = "ok"
	ReasonHTTPStatus  Reason = "http_status"
	ReasonTimeout     Reason = "timeout"
	ReasonUnreachable Reason = "unreachable"
	ReasonAborted     Reason = "aborted"
)

// Result is the outcome of a probe or of a readiness wait.
type Result struct {
	Healthy      bool          `json:"healthy" yaml:"healthy"`
	StatusCode   int           `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	ResponseTime time.Duration `json:"response_time" yaml:"response_time"`
	Reason       Reason        `json:"reason" yaml:"reason"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Observer receives every probe outcome. Used for metrics.
type Observer interface {
	ObserveProbe(reason Reason, elapsed time.Duration)
}

// Prober performs single health probes.
type Prober struct {
	client   *http.Client
	logger   *slog.Logger
	observer Observer
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithHTTPClient sets the client used for probes. Its Timeout should be
// zero; probe deadlines are carried by the request context.
func WithHTTPClient(c *http.Client) ProberOption {
	return func(p *Prober) { p.client = c }
}

// WithProberLogger sets the logger. A nil logger discards output.
func WithProberLogger(l *slog.Logger) ProberOption {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver registers an observer for probe outcomes.
func WithObserver(o Observer) ProberOption {
	return func(p *Prober) { p.observer = o }
}

// NewProber creates a Prober.
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		client: &http.Client{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe issues one GET <baseURL>/session bounded by timeout.
//
// Any 2xx and 401 (authentication required) count as healthy: either way
// a server is answering. The elapsed time is always recorded. A
// non-positive timeout uses DefaultProbeTimeout.
func (p *Prober) Probe(ctx context.Context, baseURL string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	start := time.Now()
	res := p.probe(ctx, baseURL, timeout)
	res.ResponseTime = time.Since(start)

	if p.observer != nil {
		p.observer.ObserveProbe(res.Reason, res.ResponseTime)
	}
	p.logger.Debug("health probe",
		"base_url", baseURL,
		"healthy", res.Healthy,
		"reason", string(res.Reason),
		"duration_ms", float64(res.ResponseTime.Microseconds())/1000.0,
		"error", res.Error,
	)
	return res
}

func (p *Prober) probe(ctx context.Context, baseURL string, timeout time.Duration) Result {
	if ctx.Err() != nil {
		return Aborted()
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + Path
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Reason: ReasonUnreachable, Error: err.Error()}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return Aborted()
		case errors.Is(probeCtx.Err(), context.DeadlineExceeded):
			return Result{Reason: ReasonTimeout, Error: fmt.Sprintf("timeout after %dms", timeout.Milliseconds())}
		default:
			return Result{Reason: ReasonUnreachable, Error: err.Error()}
		}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		_ = resp.Body.Close()
	}()

	if IsHealthyStatus(resp.StatusCode) {
		return Result{Healthy: true, StatusCode: resp.StatusCode, Reason: ReasonOK}
	}

	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
	}
	return Result{
		StatusCode: resp.StatusCode,
		Reason:     ReasonHTTPStatus,
		Error:      fmt.Sprintf("HTTP %d: %s", resp.StatusCode, text),
	}
}

// IsHealthyStatus reports whether an HTTP status proves a live server.
func IsHealthyStatus(code int) bool {
	return (code >= 200 && code < 300) || code == http.StatusUnauthorized
}

// Aborted is the result reported when the caller cancels.
func Aborted() Result {
	return Result{Reason: ReasonAborted, Error: "aborted"}
}
