package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitbench/internal/analysis"
	"jitbench/internal/suite"
)

// fakeSuite scripts RunResult outcomes and records which calls were made.
type fakeSuite struct {
	coldResult    *suite.RunResult
	warmResult    *suite.RunResult
	writeArtifact bool
	coldErr       error

	coldCalls    int
	profileCalls int
	warmCalls    int
}

func (f *fakeSuite) Name() string                  { return "fake" }
func (f *fakeSuite) AvailableBenchmarks() []string { return []string{"bench-a"} }

func (f *fakeSuite) ValidateSetup(ctx context.Context) error { return nil }

func (f *fakeSuite) RunCold(ctx context.Context, benchmark string, iters int) (*suite.RunResult, error) {
	f.coldCalls++
	if f.coldErr != nil {
		return nil, f.coldErr
	}
	return f.coldResult, nil
}

func (f *fakeSuite) RunProfiling(ctx context.Context, benchmark string, iters int, profilePath string) (*suite.RunResult, error) {
	f.profileCalls++
	if f.writeArtifact {
		if err := os.WriteFile(profilePath, []byte("checkpoint"), 0644); err != nil {
			return nil, err
		}
	}
	return &suite.RunResult{RawOutput: "profiling output"}, nil
}

func (f *fakeSuite) RunWarm(ctx context.Context, benchmark string, iters int, profilePath string) (*suite.RunResult, error) {
	f.warmCalls++
	return f.warmResult, nil
}

func compileTime(v float64) *float64 { return &v }

func newOrchestrator(t *testing.T, s suite.Suite, trials int) *Orchestrator {
	t.Helper()
	return &Orchestrator{
		Suite:        s,
		ProfileIters: 1,
		BenchIters:   3,
		Trials:       trials,
		OutputDir:    t.TempDir(),
		Out:          &bytes.Buffer{},
	}
}

func TestOrchestratorRun_HappyPath(t *testing.T) {
	fake := &fakeSuite{
		coldResult:    &suite.RunResult{IterationTimes: []float64{100, 90, 80}, RawOutput: "cold out"},
		warmResult:    &suite.RunResult{IterationTimes: []float64{60, 55, 50}, CompileTime: compileTime(321), RawOutput: "warm out"},
		writeArtifact: true,
	}

	orch := newOrchestrator(t, fake, 2)
	out, err := orch.Run(context.Background(), []string{"bench-a"})
	require.NoError(t, err)

	assert.Equal(t, 2, fake.coldCalls)
	assert.Equal(t, 2, fake.profileCalls)
	assert.Equal(t, 2, fake.warmCalls)

	acc := out.Results["bench-a"]
	require.NotNil(t, acc)
	require.Len(t, acc.Trials, 2)
	for _, trial := range acc.Trials {
		assert.Equal(t, []float64{100, 90, 80}, trial.Cold)
		assert.Equal(t, []float64{60, 55, 50}, trial.Warm)
		require.NotNil(t, trial.CompileTime)
		assert.Equal(t, 321.0, *trial.CompileTime)
	}

	m := out.Metrics["bench-a"]
	require.NotNil(t, m)
	assert.Equal(t, 50.0, m.WarmTarget)
	assert.Equal(t, 2.0, m.OurImprovement)
}

func TestOrchestratorRun_WritesLogsAndMetrics(t *testing.T) {
	fake := &fakeSuite{
		coldResult:    &suite.RunResult{IterationTimes: []float64{100}, RawOutput: "cold raw output"},
		warmResult:    &suite.RunResult{IterationTimes: []float64{50}, RawOutput: "warm raw output"},
		writeArtifact: true,
	}

	orch := newOrchestrator(t, fake, 1)
	out, err := orch.Run(context.Background(), []string{"bench-a"})
	require.NoError(t, err)

	for _, mode := range []string{"cold", "profile", "warm"} {
		path := filepath.Join(out.RunDir, "raw", "bench-a_trial0_"+mode+".log")
		data, err := os.ReadFile(path)
		require.NoError(t, err, "missing log for %s", mode)
		assert.Contains(t, string(data), "exit_code: 0")
	}
	coldLog, _ := os.ReadFile(filepath.Join(out.RunDir, "raw", "bench-a_trial0_cold.log"))
	assert.Contains(t, string(coldLog), "cold raw output")

	data, err := os.ReadFile(filepath.Join(out.RunDir, "metrics.json"))
	require.NoError(t, err)
	var parsed map[string]*analysis.Metrics
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Contains(t, parsed, "bench-a")
	assert.Equal(t, []float64{100}, parsed["bench-a"].ColdCurve)
}

func TestOrchestratorRun_MissingArtifactSkipsWarm(t *testing.T) {
	fake := &fakeSuite{
		coldResult:    &suite.RunResult{IterationTimes: []float64{100, 90}},
		writeArtifact: false,
	}

	orch := newOrchestrator(t, fake, 2)
	out, err := orch.Run(context.Background(), []string{"bench-a"})
	require.NoError(t, err)

	// the warm step is never invoked, and the loop continues to the next trial
	assert.Equal(t, 0, fake.warmCalls)
	assert.Equal(t, 2, fake.profileCalls)

	acc := out.Results["bench-a"]
	require.Len(t, acc.Trials, 2)
	for _, trial := range acc.Trials {
		assert.Equal(t, []float64{100, 90}, trial.Cold)
		assert.Empty(t, trial.Warm)
		assert.Nil(t, trial.CompileTime)
	}
}

func TestOrchestratorRun_DegradedColdRunIsRecorded(t *testing.T) {
	// A failed cold run contributes whatever was parsed, even nothing.
	fake := &fakeSuite{
		coldResult:    &suite.RunResult{IterationTimes: nil, ExitCode: 1, RawOutput: "crash"},
		warmResult:    &suite.RunResult{IterationTimes: []float64{50}},
		writeArtifact: true,
	}

	orch := newOrchestrator(t, fake, 1)
	out, err := orch.Run(context.Background(), []string{"bench-a"})
	require.NoError(t, err)

	acc := out.Results["bench-a"]
	require.Len(t, acc.Trials, 1)
	assert.Empty(t, acc.Trials[0].Cold)
	assert.Equal(t, []float64{50}, acc.Trials[0].Warm)

	// the benchmark still appears in the metrics with sentinel values
	m := out.Metrics["bench-a"]
	require.NotNil(t, m)
	assert.Zero(t, m.OurImprovement)
}

func TestOrchestratorRun_FatalErrorAborts(t *testing.T) {
	fatal := errors.New("boom: process could not be started")
	fake := &fakeSuite{coldErr: fatal}

	orch := newOrchestrator(t, fake, 3)
	_, err := orch.Run(context.Background(), []string{"bench-a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	// aborted on the first trial, no retries
	assert.Equal(t, 1, fake.coldCalls)
	assert.Equal(t, 0, fake.profileCalls)
}

func TestOrchestratorRun_FreshRunDirs(t *testing.T) {
	fake := &fakeSuite{
		coldResult:    &suite.RunResult{IterationTimes: []float64{100}},
		warmResult:    &suite.RunResult{IterationTimes: []float64{50}},
		writeArtifact: true,
	}

	orch := newOrchestrator(t, fake, 1)
	out, err := orch.Run(context.Background(), []string{"bench-a"})
	require.NoError(t, err)

	info, err := os.Stat(out.RunDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, orch.OutputDir, filepath.Dir(out.RunDir))
}
