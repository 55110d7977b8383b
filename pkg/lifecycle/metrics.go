package lifecycle

import (
	"time"

	"github.com/marmos91/opencode-sdk/pkg/health"
)

// Metrics observes lifecycle outcomes. Implementations must be safe for
// concurrent use.
type Metrics interface {
	health.Observer

	// RecordDecision counts the outcome of an Ensure call.
	RecordDecision(decision Decision)

	// RecordSpawn counts spawn attempts by result ("success" or "failure").
	RecordSpawn(result string)

	// ObserveStartup records the time from spawn to first healthy probe.
	ObserveStartup(elapsed time.Duration)

	// RecordShutdown counts server stops by mode.
	RecordShutdown(mode string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveProbe(health.Reason, time.Duration) {}
func (noopMetrics) RecordDecision(Decision)                   {}
func (noopMetrics) RecordSpawn(string)                        {}
func (noopMetrics) ObserveStartup(time.Duration)              {}
func (noopMetrics) RecordShutdown(string)                     {}
