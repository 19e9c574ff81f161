package runner

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"jitbench/internal/suite"
)

// saveLog writes one raw log per (benchmark, trial, mode): the parsed
// summary header followed by the full captured output. These exist for
// post-hoc debugging only and never feed back into the metrics.
func (o *Orchestrator) saveLog(path string, res *suite.RunResult) {
	var b strings.Builder
	fmt.Fprintf(&b, "exit_code: %d\n", res.ExitCode)
	fmt.Fprintf(&b, "iteration_times: %v\n", res.IterationTimes)
	fmt.Fprintf(&b, "compile_time: %s\n", formatCompileTime(res.CompileTime))
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n")
	b.WriteString(res.RawOutput)

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		slog.Error("failed to write run log", "path", path, "error", err)
	}
}
