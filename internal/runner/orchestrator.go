// Package runner drives the cold→profile→warm trial loop across benchmarks
// and persists raw logs and derived metrics for each run.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jitbench/internal/analysis"
	"jitbench/internal/suite"
	"jitbench/internal/telemetry"
)

// Orchestrator runs every requested benchmark through `Trials` independent
// cold→profile→warm sequences. Everything executes strictly sequentially:
// the profiling step's checkpoint file must exist on disk before the warm
// step can read it.
type Orchestrator struct {
	Suite        suite.Suite
	ProfileIters int
	BenchIters   int
	Trials       int
	OutputDir    string

	// Metrics is optional; when set, progress counters are updated as the
	// loop proceeds.
	Metrics *telemetry.Metrics

	// Out receives human-readable progress. Defaults to os.Stdout.
	Out io.Writer
}

// Output is the result of one orchestrator invocation.
type Output struct {
	RunDir  string
	Results map[string]*analysis.Accumulation
	Metrics map[string]*analysis.Metrics
}

// Run executes all trials for all benchmarks, writes per-run logs and
// metrics.json under a freshly timestamped directory, and returns the
// reduced metrics.
//
// Suite-level errors (spawn failure, timeout) abort the whole run. The only
// recognized non-fatal failure is a profiling step that did not produce its
// checkpoint file: that trial records an empty warm sequence and the loop
// continues.
func (o *Orchestrator) Run(ctx context.Context, benchmarks []string) (*Output, error) {
	out := o.Out
	if out == nil {
		out = os.Stdout
	}

	runDir := filepath.Join(o.OutputDir, time.Now().Format("20060102_150405"))
	rawDir := filepath.Join(runDir, "raw")
	if err := os.MkdirAll(rawDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	if o.Metrics != nil {
		o.Metrics.RunsActive.Inc()
		defer o.Metrics.RunsActive.Dec()
	}

	results := make(map[string]*analysis.Accumulation, len(benchmarks))

	for _, bench := range benchmarks {
		fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 60))
		fmt.Fprintf(out, "Benchmark: %s\n", bench)
		fmt.Fprintf(out, "%s\n", strings.Repeat("=", 60))

		acc := &analysis.Accumulation{}
		results[bench] = acc

		for trial := 0; trial < o.Trials; trial++ {
			fmt.Fprintf(out, "\n--- Trial %d/%d ---\n", trial+1, o.Trials)
			rec, err := o.runTrial(ctx, out, rawDir, bench, trial)
			if err != nil {
				return nil, err
			}
			acc.Add(rec)
			if o.Metrics != nil {
				o.Metrics.RecordTrial(bench)
			}
		}
	}

	metrics := analysis.Reduce(results)

	metricsPath := filepath.Join(runDir, "metrics.json")
	if err := writeMetrics(metricsPath, metrics); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\nMetrics saved to %s\n", metricsPath)

	return &Output{RunDir: runDir, Results: results, Metrics: metrics}, nil
}

// runTrial executes one cold→profile→warm sequence for bench.
func (o *Orchestrator) runTrial(ctx context.Context, out io.Writer, rawDir, bench string, trial int) (analysis.TrialRecord, error) {
	var rec analysis.TrialRecord

	profilePath := filepath.Join(rawDir, fmt.Sprintf("%s_trial%d.mdox", bench, trial))

	// Cold run. Recorded unconditionally: a failed run contributes whatever
	// partial sequence was parsed, possibly nothing.
	fmt.Fprintf(out, "[cold] %s (%d iters)\n", bench, o.BenchIters)
	cold, err := o.Suite.RunCold(ctx, bench, o.BenchIters)
	if err != nil {
		return rec, err
	}
	o.saveLog(filepath.Join(rawDir, logName(bench, trial, "cold")), cold)
	o.observe(bench, "cold", cold)
	rec.Cold = cold.IterationTimes
	fmt.Fprintf(out, "  -> %d iterations parsed, exit=%d\n", len(cold.IterationTimes), cold.ExitCode)

	// Profiling run.
	fmt.Fprintf(out, "[profile] %s (%d iters)\n", bench, o.ProfileIters)
	prof, err := o.Suite.RunProfiling(ctx, bench, o.ProfileIters, profilePath)
	if err != nil {
		return rec, err
	}
	o.saveLog(filepath.Join(rawDir, logName(bench, trial, "profile")), prof)
	o.observe(bench, "profile", prof)
	fmt.Fprintf(out, "  -> exit=%d, profile at %s\n", prof.ExitCode, profilePath)

	// A profiling run can legitimately fail to produce usable output (the
	// benchmark may never reach a checkpoint). That downgrades this trial's
	// warm data, not the whole pipeline.
	if _, err := os.Stat(profilePath); err != nil {
		fmt.Fprintf(out, "  WARNING: profile file not created at %s\n", profilePath)
		slog.Warn("profile artifact missing, skipping warm run",
			"benchmark", bench, "trial", trial, "path", profilePath)
		rec.Warm = []float64{}
		return rec, nil
	}

	// Warm run.
	fmt.Fprintf(out, "[warm] %s (%d iters)\n", bench, o.BenchIters)
	warm, err := o.Suite.RunWarm(ctx, bench, o.BenchIters, profilePath)
	if err != nil {
		return rec, err
	}
	o.saveLog(filepath.Join(rawDir, logName(bench, trial, "warm")), warm)
	o.observe(bench, "warm", warm)
	rec.Warm = warm.IterationTimes
	rec.CompileTime = warm.CompileTime
	fmt.Fprintf(out, "  -> %d iterations parsed, compile=%s, exit=%d\n",
		len(warm.IterationTimes), formatCompileTime(warm.CompileTime), warm.ExitCode)

	return rec, nil
}

func (o *Orchestrator) observe(bench, mode string, res *suite.RunResult) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.RecordSubprocess(o.Suite.Name(), mode, res.ExitCode)
	o.Metrics.RecordIterations(bench, mode, res.IterationTimes)
}

func writeMetrics(path string, metrics map[string]*analysis.Metrics) error {
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func logName(bench string, trial int, mode string) string {
	return fmt.Sprintf("%s_trial%d_%s.log", bench, trial, mode)
}

func formatCompileTime(ct *float64) string {
	if ct == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0fms", *ct)
}
