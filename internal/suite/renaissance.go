package suite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"jitbench/internal/config"
)

// Plugin class shipped with the custom Renaissance build.
const renaissancePluginClass = "org.renaissance.plugins.profilecheckpoint.ProfileCheckpointPlugin"

// The plugin jar lives in the Renaissance repo next to the harness jar.
const renaissancePluginGlob = "plugins/profile-checkpoint/target/plugin-profile-checkpoint-assembly-*.jar"

// Full benchmark list from renaissance 0.16.x (--raw-list output), minus the
// dummy-* harness-test benchmarks. Used when the jar cannot be queried.
var renaissanceBenchmarks = []string{
	// apache-spark
	"als", "chi-square", "dec-tree", "gauss-mix", "log-regression",
	"movie-lens", "naive-bayes", "page-rank",
	// concurrency
	"akka-uct", "fj-kmeans", "reactors",
	// database
	"db-shootout", "neo4j-analytics",
	// functional
	"future-genetic", "mnemonics", "par-mnemonics", "rx-scrabble", "scrabble",
	// scala
	"dotty", "philosophers", "scala-doku", "scala-kmeans", "scala-stm-bench7",
	// web
	"finagle-chirper", "finagle-http",
}

// Renaissance adapts the Renaissance harness with the profile-checkpoint
// plugin. Latencies come from the harness --json output file rather than
// stdout.
type Renaissance struct {
	paths     config.Paths
	pluginJar string
	timeout   time.Duration
}

func NewRenaissance(paths config.Paths, timeout time.Duration) *Renaissance {
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	return &Renaissance{
		paths:     paths,
		pluginJar: findPluginJar(paths.Jar),
		timeout:   timeout,
	}
}

func (r *Renaissance) Name() string { return "renaissance" }

// AvailableBenchmarks asks the jar via --raw-list, falling back to the static
// list when the jar cannot be queried.
func (r *Renaissance) AvailableBenchmarks() []string {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, code, err := runCommand(ctx, time.Minute, r.paths.Java, "-jar", r.paths.Jar, "--raw-list")
	if err == nil && code == 0 {
		var benchmarks []string
		for _, line := range strings.Split(out, "\n") {
			b := strings.TrimSpace(line)
			if b == "" || strings.HasPrefix(b, "dummy-") {
				continue
			}
			benchmarks = append(benchmarks, b)
		}
		if len(benchmarks) > 0 {
			return benchmarks
		}
	}
	out2 := make([]string, len(renaissanceBenchmarks))
	copy(out2, renaissanceBenchmarks)
	return out2
}

func (r *Renaissance) ValidateSetup(ctx context.Context) error {
	if _, err := os.Stat(r.paths.Java); err != nil {
		return &SetupError{Msg: fmt.Sprintf("java binary not found: %s", r.paths.Java)}
	}
	if _, err := os.Stat(r.paths.Jar); err != nil {
		return &SetupError{Msg: fmt.Sprintf("renaissance jar not found: %s", r.paths.Jar)}
	}
	if r.pluginJar == "" {
		fmt.Println("WARNING: profile-checkpoint plugin jar not found. " +
			"Profile/warm runs will not produce checkpoint files.")
	} else {
		fmt.Printf("Plugin: %s\n", r.pluginJar)
	}
	out, code, err := runCommand(ctx, 30*time.Second, r.paths.Java, "-version")
	if err != nil {
		return &SetupError{Msg: fmt.Sprintf("java binary failed: %v", err)}
	}
	if code != 0 {
		return &SetupError{Msg: fmt.Sprintf("java binary failed: %s", out)}
	}
	return nil
}

func (r *Renaissance) pluginHarnessArgs() []string {
	if r.pluginJar == "" {
		return nil
	}
	return []string{"--plugin", r.pluginJar + "!" + renaissancePluginClass}
}

func (r *Renaissance) run(ctx context.Context, benchmark string, iters int, extraJVMArgs, extraHarnessArgs []string) (*RunResult, error) {
	jsonOut, err := os.CreateTemp("", "renaissance-*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create json output file: %w", err)
	}
	jsonPath := jsonOut.Name()
	jsonOut.Close()
	defer os.Remove(jsonPath)

	args := append([]string{}, baseJVMArgs...)
	args = append(args, extraJVMArgs...)
	args = append(args, "-jar", r.paths.Jar)
	args = append(args, extraHarnessArgs...)
	args = append(args, "-r", strconv.Itoa(iters), "--json", jsonPath, benchmark)

	fmt.Printf("  Running: %s %s\n", r.paths.Java, strings.Join(args, " "))
	output, code, err := runCommand(ctx, r.timeout, r.paths.Java, args...)
	if err != nil {
		return nil, err
	}
	return &RunResult{
		IterationTimes: parseRenaissanceJSON(jsonPath, benchmark),
		CompileTime:    parseCompileTime(output),
		RawOutput:      output,
		ExitCode:       code,
	}, nil
}

func (r *Renaissance) RunCold(ctx context.Context, benchmark string, iters int) (*RunResult, error) {
	return r.run(ctx, benchmark, iters, nil, nil)
}

func (r *Renaissance) RunProfiling(ctx context.Context, benchmark string, iters int, profilePath string) (*RunResult, error) {
	return r.run(ctx, benchmark, iters,
		[]string{"-Drenaissance.profilecheckpoint.file=" + profilePath},
		r.pluginHarnessArgs())
}

func (r *Renaissance) RunWarm(ctx context.Context, benchmark string, iters int, profilePath string) (*RunResult, error) {
	return r.run(ctx, benchmark, iters,
		[]string{
			"-Drenaissance.profilecheckpoint.file=" + profilePath,
			"-Drenaissance.profilecheckpoint.loadafter=1",
			"-XX:+EagerCompileAfterLoad",
		},
		r.pluginHarnessArgs())
}

// renaissanceResults mirrors the slice of the harness --json schema we need.
// Format v6+ keeps timings under data[benchmark].results; older builds used a
// top-level benchmarks key and duration_ms instead of duration_ns.
type renaissanceResults struct {
	Data       map[string]renaissanceBench `json:"data"`
	Benchmarks map[string]renaissanceBench `json:"benchmarks"`
}

type renaissanceBench struct {
	Results []renaissanceIteration `json:"results"`
}

type renaissanceIteration struct {
	DurationNs *float64 `json:"duration_ns"`
	DurationMs *float64 `json:"duration_ms"`
}

func parseRenaissanceJSON(jsonPath, benchmark string) []float64 {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil
	}
	var parsed renaissanceResults
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil
	}
	container := parsed.Data
	if container == nil {
		container = parsed.Benchmarks
	}
	results := container[benchmark].Results

	var times []float64
	for _, res := range results {
		if res.DurationNs != nil {
			times = append(times, *res.DurationNs/1e6)
		}
	}
	if len(times) > 0 {
		return times
	}
	for _, res := range results {
		if res.DurationMs != nil {
			times = append(times, *res.DurationMs)
		}
	}
	return times
}

// findPluginJar locates the profile-checkpoint plugin relative to the
// Renaissance repo root. The harness jar lives at <repo>/target/.
func findPluginJar(renaissanceJar string) string {
	abs, err := filepath.Abs(renaissanceJar)
	if err != nil {
		return ""
	}
	repoRoot := filepath.Dir(filepath.Dir(abs))
	matches, err := filepath.Glob(filepath.Join(repoRoot, renaissancePluginGlob))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[len(matches)-1]
}
