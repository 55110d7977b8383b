package prometheus

import (
	"sync"
	"time"

	"github.com/marmos91/opencode-sdk/pkg/health"
	"github.com/marmos91/opencode-sdk/pkg/lifecycle"
	"github.com/marmos91/opencode-sdk/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterLifecycleMetricsConstructor(NewLifecycleMetrics)
}

// lifecycleMetrics is the Prometheus implementation of lifecycle.Metrics.
type lifecycleMetrics struct {
	probes          *prometheus.CounterVec
	probeDuration   prometheus.Histogram
	decisions       *prometheus.CounterVec
	spawns          *prometheus.CounterVec
	startupDuration prometheus.Histogram
	shutdowns       *prometheus.CounterVec
}

var (
	cacheMu     sync.Mutex
	cachedReg   *prometheus.Registry
	cachedStats *lifecycleMetrics
)

// NewLifecycleMetrics returns the Prometheus-backed lifecycle metrics for
// the active registry. Repeated calls share one instance per registry;
// a new registry from InitRegistry gets fresh collectors.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewLifecycleMetrics() lifecycle.Metrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cachedReg != reg {
		cachedStats = newLifecycleMetrics(reg)
		cachedReg = reg
	}
	return cachedStats
}

func newLifecycleMetrics(reg *prometheus.Registry) *lifecycleMetrics {
	return &lifecycleMetrics{
		probes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocsdk_health_probes_total",
				Help: "Total number of server health probes by outcome",
			},
			[]string{"reason"}, // ok, http_status, timeout, unreachable, aborted
		),
		probeDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "ocsdk_health_probe_duration_milliseconds",
				Help: "Duration of server health probes in milliseconds",
				Buckets: []float64{
					1,    // local server, warm
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms
					1000, // 1s
					3000, // default probe timeout
				},
			},
		),
		decisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocsdk_lifecycle_decisions_total",
				Help: "Total number of lifecycle decisions by outcome",
			},
			[]string{"decision"}, // disabled, reused, started
		),
		spawns: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocsdk_server_spawns_total",
				Help: "Total number of server spawn attempts by result",
			},
			[]string{"result"}, // success, failure
		),
		startupDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "ocsdk_server_startup_duration_milliseconds",
				Help: "Time from spawn until the server answered its first health probe",
				Buckets: []float64{
					100,   // 100ms
					250,   // 250ms
					500,   // 500ms
					1000,  // 1s
					2500,  // 2.5s
					5000,  // 5s
					10000, // 10s
					30000, // default startup timeout
				},
			},
		),
		shutdowns: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocsdk_server_shutdowns_total",
				Help: "Total number of server shutdowns by mode",
			},
			[]string{"mode"}, // already_exited, graceful, forced
		),
	}
}

func (m *lifecycleMetrics) ObserveProbe(reason health.Reason, elapsed time.Duration) {
	m.probes.WithLabelValues(string(reason)).Inc()
	m.probeDuration.Observe(milliseconds(elapsed))
}

func (m *lifecycleMetrics) RecordDecision(decision lifecycle.Decision) {
	m.decisions.WithLabelValues(string(decision)).Inc()
}

func (m *lifecycleMetrics) RecordSpawn(result string) {
	m.spawns.WithLabelValues(result).Inc()
}

func (m *lifecycleMetrics) ObserveStartup(elapsed time.Duration) {
	m.startupDuration.Observe(milliseconds(elapsed))
}

func (m *lifecycleMetrics) RecordShutdown(mode string) {
	m.shutdowns.WithLabelValues(mode).Inc()
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
