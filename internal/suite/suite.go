package suite

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"jitbench/internal/config"
)

// RunResult is the outcome of a single benchmark subprocess invocation.
// A failed run is still a RunResult: whatever latencies were parsed out of
// the output are kept, and the exit code records the failure.
type RunResult struct {
	IterationTimes []float64 `json:"iteration_times"` // per-iteration ms
	CompileTime    *float64  `json:"compile_time"`    // ms, nil when the run did not report one
	RawOutput      string    `json:"-"`               // full stdout+stderr
	ExitCode       int       `json:"exit_code"`
}

// Suite drives one benchmark suite's subprocesses.
//
// Errors are reserved for fatal conditions: the process could not be spawned
// or exceeded its timeout. A benchmark that runs and fails comes back as a
// RunResult with a non-zero exit code and possibly empty iteration times.
type Suite interface {
	Name() string
	AvailableBenchmarks() []string
	// ValidateSetup fails with a *SetupError when the java binary or the
	// suite jar is missing or broken.
	ValidateSetup(ctx context.Context) error
	// RunCold runs without any profile involved.
	RunCold(ctx context.Context, benchmark string, iters int) (*RunResult, error)
	// RunProfiling runs with profile recording enabled. Writing the artifact
	// at profilePath is a side effect of the benchmark process and is not
	// guaranteed; callers must check for the file themselves.
	RunProfiling(ctx context.Context, benchmark string, iters int, profilePath string) (*RunResult, error)
	// RunWarm runs with the profile artifact at profilePath loaded eagerly.
	RunWarm(ctx context.Context, benchmark string, iters int, profilePath string) (*RunResult, error)
}

// SetupError reports a missing or broken java binary / suite artifact.
type SetupError struct {
	Msg string
}

func (e *SetupError) Error() string { return e.Msg }

// Both suites ship the same profile-checkpoint runtime, so the compile-time
// marker is shared.
var compileTimePattern = regexp.MustCompile(`ProfileCheckpoint: load\+compile took (\d+) ms`)

func parseCompileTime(output string) *float64 {
	m := compileTimePattern.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	ms, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &ms
}

// Names returns the registered suite names in CLI-choice order.
func Names() []string {
	return []string{"dacapo", "renaissance"}
}

// New builds the named suite with pre-resolved paths. The timeout bounds
// every benchmark subprocess invocation.
func New(name string, paths config.Paths, timeout time.Duration) (Suite, error) {
	switch name {
	case "dacapo":
		return NewDaCapo(paths, timeout), nil
	case "renaissance":
		return NewRenaissance(paths, timeout), nil
	default:
		return nil, fmt.Errorf("unknown suite %q (choices: %v)", name, Names())
	}
}
