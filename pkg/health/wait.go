package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultInterval is the pause between readiness probes.
	DefaultInterval = 500 * time.Millisecond

	// DefaultWaitTimeout is the overall readiness deadline.
	DefaultWaitTimeout = 30 * time.Second
)

// Checker performs a single probe. *Prober implements it.
type Checker interface {
	Probe(ctx context.Context, baseURL string, timeout time.Duration) Result
}

// WaitOptions controls WaitUntilHealthy. Zero values select the defaults.
type WaitOptions struct {
	// Interval between probes. Default 500ms.
	Interval time.Duration
	// Timeout is the overall deadline. Default 30s.
	Timeout time.Duration
	// ProbeTimeout caps each probe; the effective bound is
	// min(remaining, ProbeTimeout). Default 3s.
	ProbeTimeout time.Duration
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultWaitTimeout
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
	return o
}

// Waiter polls a Checker until the server is healthy.
type Waiter struct {
	checker Checker
	logger  *slog.Logger
}

// NewWaiter creates a Waiter. A nil logger discards output.
func NewWaiter(checker Checker, logger *slog.Logger) *Waiter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Waiter{checker: checker, logger: logger}
}

// WaitUntilHealthy probes baseURL every Interval until a probe succeeds,
// Timeout elapses, or ctx is cancelled.
//
// The first healthy probe result is returned as is. Cancellation yields
// an "aborted" result and an already-cancelled ctx issues no probe at all.
// Expiry yields "timed out after <Timeout in ms>ms". Individual probe
// failures are only logged.
func (w *Waiter) WaitUntilHealthy(ctx context.Context, baseURL string, opts WaitOptions) Result {
	opts = opts.withDefaults()

	if ctx.Err() != nil {
		return Aborted()
	}

	start := time.Now()
	attempt := 0

	for {
		remaining := opts.Timeout - time.Since(start)
		if remaining <= 0 {
			break
		}
		if ctx.Err() != nil {
			return Aborted()
		}

		attempt++
		res := w.checker.Probe(ctx, baseURL, min(remaining, opts.ProbeTimeout))
		if ctx.Err() != nil {
			return Aborted()
		}
		if res.Healthy {
			w.logger.Debug("server ready", "base_url", baseURL, "attempts", attempt, "elapsed", time.Since(start))
			return res
		}
		w.logger.Debug("server not ready", "base_url", baseURL, "attempt", attempt, "reason", string(res.Reason), "error", res.Error)

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Aborted()
		case <-timer.C:
		}
	}

	return Result{
		Reason: ReasonTimeout,
		Error:  fmt.Sprintf("timed out after %dms", opts.Timeout.Milliseconds()),
	}
}
