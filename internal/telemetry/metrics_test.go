package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordSubprocess("dacapo", "cold", 0)
	m.RecordSubprocess("dacapo", "cold", 1)
	m.RecordSubprocess("dacapo", "warm", 0)
	m.RecordTrial("avrora")
	m.RecordTrial("avrora")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubprocessRuns.WithLabelValues("dacapo", "cold", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubprocessRuns.WithLabelValues("dacapo", "cold", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubprocessRuns.WithLabelValues("dacapo", "warm", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrialsCompleted.WithLabelValues("avrora")))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.RunsActive.Inc()
	m.RecordIterations("avrora", "cold", []float64{100, 90})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "jitbench_runs_active 1")
	assert.Contains(t, body, "jitbench_iteration_time_ms")
}
