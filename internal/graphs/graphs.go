// Package graphs renders the metrics map into standalone SVG charts. It is a
// pure consumer: nothing here feeds back into orchestration.
package graphs

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jitbench/internal/analysis"
)

const (
	panelWidth  = 360
	panelHeight = 250
	titleBand   = 30
)

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const (
	colorCold    = "#1f77b4"
	colorWarm    = "#ff7f0e"
	colorOptimal = "#2ca02c"
	colorGuide   = "#808080"
)

// Generate writes the chart set for a run into <runDir>/graphs. Benchmarks
// without cold data are skipped; with no data at all it is a no-op.
func Generate(metrics map[string]*analysis.Metrics, runDir string) error {
	benchmarks := plottable(metrics)
	if len(benchmarks) == 0 {
		fmt.Println("No benchmark data to graph.")
		return nil
	}

	graphsDir := filepath.Join(runDir, "graphs")
	if err := os.MkdirAll(graphsDir, 0755); err != nil {
		return fmt.Errorf("failed to create graphs directory: %w", err)
	}

	charts := map[string]string{
		"convergence.svg":         renderConvergence(metrics, benchmarks),
		"cold_vs_warm.svg":        renderColdVsWarm(metrics, benchmarks),
		"summary_improvement.svg": renderImprovementBars(metrics, benchmarks),
		"closeness_ratio.svg":     renderClosenessRatio(metrics, benchmarks),
	}
	for name, svg := range charts {
		if svg == "" {
			continue
		}
		path := filepath.Join(graphsDir, name)
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	fmt.Printf("Graphs saved to %s\n", graphsDir)
	return nil
}

// plottable returns the benchmarks with a non-empty cold curve, sorted for
// stable output.
func plottable(metrics map[string]*analysis.Metrics) []string {
	var names []string
	for bench, m := range metrics {
		if m != nil && len(m.ColdCurve) > 0 {
			names = append(names, bench)
		}
	}
	sort.Strings(names)
	return names
}

// series is one polyline within a panel.
type series struct {
	label  string
	color  string
	values []float64
}

// guide is a horizontal reference line.
type guide struct {
	label string
	color string
	dash  string
	value float64
}

func renderConvergence(metrics map[string]*analysis.Metrics, benchmarks []string) string {
	return renderPanelGrid("Convergence: Cold vs Warm", benchmarks, func(bench string) ([]series, []guide) {
		m := metrics[bench]
		s := []series{{label: "Cold", color: colorCold, values: m.ColdCurve}}
		if len(m.WarmCurve) > 0 {
			s = append(s, series{label: "Warm", color: colorWarm, values: m.WarmCurve})
		}
		return s, nil
	})
}

func renderColdVsWarm(metrics map[string]*analysis.Metrics, benchmarks []string) string {
	return renderPanelGrid("Cold Curve vs Warm Target & Cold Optimal", benchmarks, func(bench string) ([]series, []guide) {
		m := metrics[bench]
		s := []series{{label: "Cold", color: colorCold, values: m.ColdCurve}}
		var g []guide
		if m.WarmTarget > 0 {
			g = append(g, guide{
				label: fmt.Sprintf("Warm target = %.0fms", m.WarmTarget),
				color: colorWarm, dash: "6,3", value: m.WarmTarget,
			})
		}
		if m.ColdOptimal > 0 {
			g = append(g, guide{
				label: fmt.Sprintf("Cold optimal = %.0fms", m.ColdOptimal),
				color: colorOptimal, dash: "2,3", value: m.ColdOptimal,
			})
		}
		return s, g
	})
}

// renderPanelGrid lays benchmarks out in a grid of up to 3 columns, one
// latency-per-iteration panel each.
func renderPanelGrid(title string, benchmarks []string, panelData func(bench string) ([]series, []guide)) string {
	cols := len(benchmarks)
	if cols > 3 {
		cols = 3
	}
	rows := (len(benchmarks) + cols - 1) / cols
	width := cols * panelWidth
	height := rows*panelHeight + titleBand

	var b strings.Builder
	openSVG(&b, width, height)
	fmt.Fprintf(&b, `<text x="%d" y="20" text-anchor="middle" font-size="16" font-weight="bold">%s</text>`+"\n",
		width/2, escape(title))

	for i, bench := range benchmarks {
		x := float64((i % cols) * panelWidth)
		y := float64((i/cols)*panelHeight + titleBand)
		s, g := panelData(bench)
		drawPanel(&b, x, y, bench, s, g)
	}

	b.WriteString("</svg>\n")
	return b.String()
}

// drawPanel renders one axes box with its series, guides and legend at the
// given origin.
func drawPanel(b *strings.Builder, ox, oy float64, title string, ss []series, gs []guide) {
	const (
		padLeft   = 52
		padRight  = 14
		padTop    = 26
		padBottom = 34
	)
	plotX := ox + padLeft
	plotY := oy + padTop
	plotW := float64(panelWidth) - padLeft - padRight
	plotH := float64(panelHeight) - padTop - padBottom

	maxY := 0.0
	maxN := 1
	for _, s := range ss {
		if len(s.values) > maxN {
			maxN = len(s.values)
		}
		for _, v := range s.values {
			maxY = math.Max(maxY, v)
		}
	}
	for _, g := range gs {
		maxY = math.Max(maxY, g.value)
	}
	if maxY <= 0 {
		maxY = 1
	}
	maxY *= 1.05

	toX := func(i int) float64 {
		if maxN == 1 {
			return plotX
		}
		return plotX + float64(i)/float64(maxN-1)*plotW
	}
	toY := func(v float64) float64 {
		return plotY + plotH - v/maxY*plotH
	}

	// Axes box and labels
	fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#cccccc"/>`+"\n",
		plotX, plotY, plotW, plotH)
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="12" font-weight="bold">%s</text>`+"\n",
		plotX+plotW/2, oy+16, escape(title))
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="end" font-size="9">%.0f</text>`+"\n",
		plotX-4, plotY+8, maxY)
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="end" font-size="9">0</text>`+"\n",
		plotX-4, plotY+plotH)
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="10">Iteration</text>`+"\n",
		plotX+plotW/2, oy+float64(panelHeight)-8)
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="10" transform="rotate(-90 %.1f %.1f)">Latency (ms)</text>`+"\n",
		ox+14, plotY+plotH/2, ox+14, plotY+plotH/2)

	for _, g := range gs {
		y := toY(g.value)
		fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="%s"/>`+"\n",
			plotX, y, plotX+plotW, y, g.color, g.dash)
	}

	legendY := plotY + 12
	for _, s := range ss {
		writePolyline(b, s.values, s.color, toX, toY)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="9" fill="%s">%s</text>`+"\n",
			plotX+plotW-70, legendY, s.color, escape(s.label))
		legendY += 11
	}
	for _, g := range gs {
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="9" fill="%s">%s</text>`+"\n",
			plotX+plotW-160, legendY, g.color, escape(g.label))
		legendY += 11
	}
}

func writePolyline(b *strings.Builder, values []float64, color string, toX func(int) float64, toY func(float64) float64) {
	if len(values) == 0 {
		return
	}
	var pts []string
	for i, v := range values {
		pts = append(pts, fmt.Sprintf("%.1f,%.1f", toX(i), toY(v)))
	}
	fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
		strings.Join(pts, " "), color)
	for i, v := range values {
		fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="2" fill="%s"/>`+"\n", toX(i), toY(v), color)
	}
}

// renderImprovementBars draws the first-iteration improvement ratio per
// benchmark. Benchmarks without a ratio are left out; no ratios at all means
// no chart.
func renderImprovementBars(metrics map[string]*analysis.Metrics, benchmarks []string) string {
	var labels []string
	var ratios []float64
	maxRatio := 0.0
	for _, bench := range benchmarks {
		r := metrics[bench].OurImprovement
		if r > 0 {
			labels = append(labels, bench)
			ratios = append(ratios, r)
			maxRatio = math.Max(maxRatio, r)
		}
	}
	if len(ratios) == 0 {
		return ""
	}

	const (
		barWidth  = 56
		barGap    = 28
		padLeft   = 56
		padTop    = 50
		padBottom = 44
		plotH     = 300.0
	)
	width := padLeft + len(ratios)*(barWidth+barGap) + barGap
	height := int(plotH) + padTop + padBottom
	scaleMax := maxRatio * 1.15

	var b strings.Builder
	openSVG(&b, width, height)
	fmt.Fprintf(&b, `<text x="%d" y="24" text-anchor="middle" font-size="15" font-weight="bold">First-Iteration Improvement: Cold vs Profile-Loaded</text>`+"\n", width/2)
	fmt.Fprintf(&b, `<text x="16" y="%.1f" text-anchor="middle" font-size="10" transform="rotate(-90 16 %.1f)">Improvement Ratio (cold[0] / warm target)</text>`+"\n",
		padTop+plotH/2, padTop+plotH/2)

	// parity rule
	parityY := padTop + plotH - 1.0/scaleMax*plotH
	fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="6,3"/>`+"\n",
		padLeft, parityY, width-barGap, parityY, colorGuide)

	for i, r := range ratios {
		h := r / scaleMax * plotH
		x := float64(padLeft + barGap + i*(barWidth+barGap))
		y := padTop + plotH - h
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%d" height="%.1f" fill="%s" fill-opacity="0.8"/>`+"\n",
			x, y, barWidth, h, colorCold)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="10">%.2fx</text>`+"\n",
			x+barWidth/2, y-6, r)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="10">%s</text>`+"\n",
			x+barWidth/2, padTop+plotH+16, escape(labels[i]))
	}

	b.WriteString("</svg>\n")
	return b.String()
}

// renderClosenessRatio draws every benchmark's cold[N]/warm-target curve on
// shared axes with the parity line at 1.0.
func renderClosenessRatio(metrics map[string]*analysis.Metrics, benchmarks []string) string {
	const (
		width     = 720
		height    = 460
		padLeft   = 56
		padRight  = 150
		padTop    = 50
		padBottom = 44
	)
	plotW := float64(width - padLeft - padRight)
	plotH := float64(height - padTop - padBottom)

	maxY := 1.0
	maxN := 1
	hasData := false
	for _, bench := range benchmarks {
		cr := metrics[bench].ClosenessRatio
		if len(cr) == 0 {
			continue
		}
		hasData = true
		if len(cr) > maxN {
			maxN = len(cr)
		}
		for _, v := range cr {
			maxY = math.Max(maxY, v)
		}
	}
	if !hasData {
		return ""
	}
	maxY *= 1.05

	toX := func(i int) float64 {
		if maxN == 1 {
			return padLeft
		}
		return padLeft + float64(i)/float64(maxN-1)*plotW
	}
	toY := func(v float64) float64 {
		return padTop + plotH - v/maxY*plotH
	}

	var b strings.Builder
	openSVG(&b, width, height)
	fmt.Fprintf(&b, `<text x="%d" y="24" text-anchor="middle" font-size="15" font-weight="bold">Cold Convergence Toward Warm Target</text>`+"\n", width/2)
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%.1f" height="%.1f" fill="none" stroke="#cccccc"/>`+"\n",
		padLeft, padTop, plotW, plotH)
	fmt.Fprintf(&b, `<text x="%.1f" y="%d" text-anchor="middle" font-size="11">Cold Iteration</text>`+"\n",
		padLeft+plotW/2, height-12)
	fmt.Fprintf(&b, `<text x="16" y="%.1f" text-anchor="middle" font-size="11" transform="rotate(-90 16 %.1f)">Ratio (cold[N] / warm target)</text>`+"\n",
		padTop+plotH/2, padTop+plotH/2)

	parityY := toY(1.0)
	fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="6,3"/>`+"\n",
		padLeft, parityY, float64(padLeft)+plotW, parityY, colorGuide)

	legendY := float64(padTop) + 8
	ci := 0
	for _, bench := range benchmarks {
		cr := metrics[bench].ClosenessRatio
		if len(cr) == 0 {
			continue
		}
		color := palette[ci%len(palette)]
		ci++
		writePolyline(&b, cr, color, toX, toY)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="10" fill="%s">%s</text>`+"\n",
			float64(padLeft)+plotW+10, legendY, color, escape(bench))
		legendY += 14
	}
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="10" fill="%s">Parity</text>`+"\n",
		float64(padLeft)+plotW+10, legendY, colorGuide)

	b.WriteString("</svg>\n")
	return b.String()
}

func openSVG(b *strings.Builder, width, height int) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n",
		width, height, width, height)
	fmt.Fprintf(b, `<rect width="%d" height="%d" fill="white"/>`+"\n", width, height)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
