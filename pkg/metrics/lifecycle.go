package metrics

import "github.com/marmos91/opencode-sdk/pkg/lifecycle"

// NewLifecycleMetrics creates Prometheus-backed lifecycle metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called) or no
// implementation was linked in. Callers pass nil straight to
// lifecycle.WithMetrics, which then records nothing.
//
//	metrics.InitRegistry()
//	m := lifecycle.New(lifecycle.WithMetrics(metrics.NewLifecycleMetrics()))
func NewLifecycleMetrics() lifecycle.Metrics {
	if !IsEnabled() || newPrometheusLifecycleMetrics == nil {
		return nil
	}
	return newPrometheusLifecycleMetrics()
}

// newPrometheusLifecycleMetrics is set by pkg/metrics/prometheus so this
// package does not import the implementation.
var newPrometheusLifecycleMetrics func() lifecycle.Metrics

// RegisterLifecycleMetricsConstructor registers the Prometheus lifecycle
// metrics constructor. Called from pkg/metrics/prometheus during init.
func RegisterLifecycleMetricsConstructor(constructor func() lifecycle.Metrics) {
	newPrometheusLifecycleMetrics = constructor
}
