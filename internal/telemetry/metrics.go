package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes benchmark-run progress for scraping during long runs.
type Metrics struct {
	RunsActive      prometheus.Gauge
	SubprocessRuns  *prometheus.CounterVec
	TrialsCompleted *prometheus.CounterVec
	IterationTime   *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all run metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RunsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jitbench_runs_active",
		Help: "Whether a benchmark run is currently in progress",
	})

	m.SubprocessRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jitbench_subprocess_runs_total",
			Help: "Benchmark subprocess invocations by suite, mode and exit status",
		},
		[]string{"suite", "mode", "status"},
	)

	m.TrialsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jitbench_trials_completed_total",
			Help: "Completed cold/profile/warm trials per benchmark",
		},
		[]string{"benchmark"},
	)

	m.IterationTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jitbench_iteration_time_ms",
			Help:    "Parsed per-iteration latencies in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 14),
		},
		[]string{"benchmark", "mode"},
	)

	m.registry.MustRegister(
		m.RunsActive,
		m.SubprocessRuns,
		m.TrialsCompleted,
		m.IterationTime,
	)
	return m
}

// RecordSubprocess counts one subprocess invocation.
func (m *Metrics) RecordSubprocess(suite, mode string, exitCode int) {
	status := "ok"
	if exitCode != 0 {
		status = "failed"
	}
	m.SubprocessRuns.WithLabelValues(suite, mode, status).Inc()
}

// RecordIterations feeds the parsed latencies of one run into the histogram.
func (m *Metrics) RecordIterations(benchmark, mode string, times []float64) {
	for _, t := range times {
		m.IterationTime.WithLabelValues(benchmark, mode).Observe(t)
	}
}

// RecordTrial counts one completed trial for a benchmark.
func (m *Metrics) RecordTrial(benchmark string) {
	m.TrialsCompleted.WithLabelValues(benchmark).Inc()
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on the given port in the background. The
// returned server should be shut down by the caller when the run ends.
func (m *Metrics) StartServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()
	return srv
}
