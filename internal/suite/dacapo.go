package suite

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jitbench/internal/config"
)

// JVM flags passed on every run: expose the profilecheckpoint internals and
// log compilation so compile times can be parsed out.
var baseJVMArgs = []string{
	"--add-exports=java.base/jdk.internal.profilecheckpoint=ALL-UNNAMED",
	"-XX:+UnlockDiagnosticVMOptions",
	"-Xlog:compilation=info",
}

// Benchmarks known to work with the modified DaCapo jar.
var dacapoBenchmarks = []string{
	"avrora", "batik", "biojava", "eclipse", "fop",
	"graphchi", "h2", "jme", "kafka",
}

var (
	dacapoWarmupPattern = regexp.MustCompile(`completed warmup \d+ in (\d+) msec`)
	dacapoFinalPattern  = regexp.MustCompile(`PASSED in (\d+) msec`)
)

// DaCapo adapts the modified DaCapo jar with profilecheckpoint hooks.
type DaCapo struct {
	paths   config.Paths
	timeout time.Duration
}

func NewDaCapo(paths config.Paths, timeout time.Duration) *DaCapo {
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	return &DaCapo{paths: paths, timeout: timeout}
}

func (d *DaCapo) Name() string { return "dacapo" }

func (d *DaCapo) AvailableBenchmarks() []string {
	out := make([]string, len(dacapoBenchmarks))
	copy(out, dacapoBenchmarks)
	return out
}

func (d *DaCapo) ValidateSetup(ctx context.Context) error {
	if _, err := os.Stat(d.paths.Java); err != nil {
		return &SetupError{Msg: fmt.Sprintf("java binary not found: %s", d.paths.Java)}
	}
	if _, err := os.Stat(d.paths.Jar); err != nil {
		return &SetupError{Msg: fmt.Sprintf("dacapo jar not found: %s", d.paths.Jar)}
	}
	out, code, err := runCommand(ctx, 30*time.Second, d.paths.Java, "-version")
	if err != nil {
		return &SetupError{Msg: fmt.Sprintf("java binary failed: %v", err)}
	}
	if code != 0 {
		return &SetupError{Msg: fmt.Sprintf("java binary failed: %s", out)}
	}
	return nil
}

func (d *DaCapo) run(ctx context.Context, benchmark string, iters int, extraJVMArgs []string) (*RunResult, error) {
	args := append([]string{}, baseJVMArgs...)
	args = append(args, extraJVMArgs...)
	args = append(args, "-jar", d.paths.Jar, "-n", strconv.Itoa(iters), "-s", "small", benchmark)

	fmt.Printf("  Running: %s %s\n", d.paths.Java, strings.Join(args, " "))
	output, code, err := runCommand(ctx, d.timeout, d.paths.Java, args...)
	if err != nil {
		return nil, err
	}
	return &RunResult{
		IterationTimes: parseDaCapoLatencies(output),
		CompileTime:    parseCompileTime(output),
		RawOutput:      output,
		ExitCode:       code,
	}, nil
}

func (d *DaCapo) RunCold(ctx context.Context, benchmark string, iters int) (*RunResult, error) {
	return d.run(ctx, benchmark, iters, nil)
}

func (d *DaCapo) RunProfiling(ctx context.Context, benchmark string, iters int, profilePath string) (*RunResult, error) {
	return d.run(ctx, benchmark, iters, []string{
		"-Ddacapo.profilecheckpoint.file=" + profilePath,
	})
}

func (d *DaCapo) RunWarm(ctx context.Context, benchmark string, iters int, profilePath string) (*RunResult, error) {
	return d.run(ctx, benchmark, iters, []string{
		"-Ddacapo.profilecheckpoint.file=" + profilePath,
		"-Ddacapo.profilecheckpoint.loadafter=0",
		"-XX:+EagerCompileAfterLoad",
	})
}

// parseDaCapoLatencies pulls per-iteration wall times out of the harness
// output. Warmup iterations and the final PASSED line both count.
func parseDaCapoLatencies(output string) []float64 {
	var latencies []float64
	for _, line := range strings.Split(output, "\n") {
		m := dacapoWarmupPattern.FindStringSubmatch(line)
		if m == nil {
			m = dacapoFinalPattern.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}
		if ms, err := strconv.ParseFloat(m[1], 64); err == nil {
			latencies = append(latencies, ms)
		}
	}
	return latencies
}
