package ui

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"jitbench/internal/analysis"
)

// RenderSummary prints the per-benchmark comparison table for a finished
// run. Improvement ratios at or above parity are green, below parity red.
func RenderSummary(w io.Writer, metrics map[string]*analysis.Metrics) {
	benchmarks := make([]string, 0, len(metrics))
	for bench := range metrics {
		benchmarks = append(benchmarks, bench)
	}
	sort.Strings(benchmarks)

	fmt.Fprintln(w)
	fmt.Fprintln(w, Header("Run Summary"))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "BENCHMARK\tCOLD[0]\tWARM TARGET\tIMPROVEMENT\tSPEEDUP\tITERS TO OPT\tCOMPILE MED")
	for _, bench := range benchmarks {
		m := metrics[bench]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			bench,
			formatMs(firstOf(m.ColdCurve)),
			formatMs(m.WarmTarget),
			formatImprovement(m.OurImprovement),
			formatRatio(m.OptimalSpeedup),
			formatTimeToOptimal(m),
			formatCompile(m.CompileTimeMedian),
		)
	}
	tw.Flush()
}

func firstOf(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	return curve[0]
}

func formatMs(v float64) string {
	if v <= 0 {
		return dimStyle.Render("-")
	}
	return fmt.Sprintf("%.0fms", v)
}

func formatRatio(v float64) string {
	if v <= 0 {
		return dimStyle.Render("-")
	}
	return fmt.Sprintf("%.2fx", v)
}

func formatImprovement(v float64) string {
	if v <= 0 {
		return dimStyle.Render("-")
	}
	s := fmt.Sprintf("%.2fx", v)
	if v >= 1 {
		return goodStyle.Render(s)
	}
	return badStyle.Render(s)
}

func formatTimeToOptimal(m *analysis.Metrics) string {
	if len(m.ColdCurve) == 0 {
		return dimStyle.Render("-")
	}
	if m.ColdTimeToOptimal >= len(m.ColdCurve) {
		return badStyle.Render("never")
	}
	return fmt.Sprintf("%d", m.ColdTimeToOptimal)
}

func formatCompile(ct *float64) string {
	if ct == nil {
		return dimStyle.Render("n/a")
	}
	return fmt.Sprintf("%.0fms", *ct)
}
