package prometheus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/opencode-sdk/pkg/health"
	"github.com/marmos91/opencode-sdk/pkg/lifecycle"
	"github.com/marmos91/opencode-sdk/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLifecycleMetricsDisabled(t *testing.T) {
	metrics.ResetRegistry()

	assert.Nil(t, NewLifecycleMetrics())
	assert.Nil(t, metrics.NewLifecycleMetrics())
}

func TestLifecycleMetricsRecords(t *testing.T) {
	reg := metrics.InitRegistry()
	t.Cleanup(metrics.ResetRegistry)

	m := metrics.NewLifecycleMetrics()
	require.NotNil(t, m)

	m.ObserveProbe(health.ReasonOK, 3*time.Millisecond)
	m.ObserveProbe(health.ReasonUnreachable, time.Millisecond)
	m.ObserveProbe(health.ReasonUnreachable, time.Millisecond)
	m.RecordDecision(lifecycle.DecisionStarted)
	m.RecordSpawn("success")
	m.ObserveStartup(800 * time.Millisecond)
	m.RecordShutdown("graceful")

	impl := m.(*lifecycleMetrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.probes.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(impl.probes.WithLabelValues("unreachable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.decisions.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.spawns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.shutdowns.WithLabelValues("graceful")))

	count, err := testutil.GatherAndCount(reg,
		"ocsdk_health_probe_duration_milliseconds",
		"ocsdk_server_startup_duration_milliseconds",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewLifecycleMetricsRepeated(t *testing.T) {
	reg := metrics.InitRegistry()
	t.Cleanup(metrics.ResetRegistry)

	var first, second lifecycle.Metrics
	require.NotPanics(t, func() {
		first = metrics.NewLifecycleMetrics()
		second = NewLifecycleMetrics()
	})
	require.NotNil(t, first)
	assert.Same(t, first, second)

	first.RecordSpawn("failure")
	second.RecordSpawn("failure")
	assert.Equal(t, 2.0, testutil.ToFloat64(first.(*lifecycleMetrics).spawns.WithLabelValues("failure")))

	count, err := testutil.GatherAndCount(reg, "ocsdk_server_spawns_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewLifecycleMetricsFreshRegistry(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(metrics.ResetRegistry)
	old := NewLifecycleMetrics()
	old.RecordDecision(lifecycle.DecisionStarted)

	metrics.InitRegistry()
	fresh := NewLifecycleMetrics()
	require.NotNil(t, fresh)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, 0.0, testutil.ToFloat64(fresh.(*lifecycleMetrics).decisions.WithLabelValues("started")))
}

func TestWriteTextfile(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(metrics.ResetRegistry)

	m := NewLifecycleMetrics()
	m.RecordDecision(lifecycle.DecisionReused)

	path := filepath.Join(t.TempDir(), "ocsdk.prom")
	require.NoError(t, metrics.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `ocsdk_lifecycle_decisions_total{decision="reused"} 1`))
}

func TestWriteTextfileDisabled(t *testing.T) {
	metrics.ResetRegistry()
	assert.Error(t, metrics.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}
