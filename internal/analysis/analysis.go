// Package analysis reduces raw per-trial benchmark timings to comparison
// metrics. It is a pure function of its input: no I/O, no state.
package analysis

import "sort"

// TrialRecord is one cold→profile→warm attempt for a benchmark. Warm is
// empty and CompileTime nil when the profiling step failed to produce its
// checkpoint file.
type TrialRecord struct {
	Cold        []float64 `json:"cold"`
	Warm        []float64 `json:"warm"`
	CompileTime *float64  `json:"compile_time"`
}

// Accumulation collects the trial records for one benchmark, in trial order.
type Accumulation struct {
	Trials []TrialRecord `json:"trials"`
}

func (a *Accumulation) Add(rec TrialRecord) {
	a.Trials = append(a.Trials, rec)
}

// Metrics is the derived record for one benchmark. Field names are the
// stable serialization contract for metrics.json.
type Metrics struct {
	ColdCurve         []float64 `json:"cold_curve"`
	WarmCurve         []float64 `json:"warm_curve"`
	ColdOptimal       float64   `json:"cold_optimal"`
	OptimalSpeedup    float64   `json:"optimal_speedup"`
	ColdTimeToOptimal int       `json:"cold_time_to_optimal"`
	WarmTarget        float64   `json:"warm_target"`
	OurImprovement    float64   `json:"our_improvement"`
	ClosenessRatio    []float64 `json:"closeness_ratio"`
	CompileTimeMedian *float64  `json:"compile_time_median"`
}

// Fixed policy constants, kept as observed in practice: the steady state is
// the mean of the last 10 median iterations, and "reached optimal" means
// within 10% of the curve minimum.
const (
	optimalTailWindow = 10
	optimalSlack      = 1.1
	warmTargetIndex   = 2
)

// Reduce computes per-benchmark metrics from the accumulated trials. Every
// benchmark present in the input gets a Metrics entry, even with zero
// successful trials; degraded data yields zero/absent sentinels, never an
// error.
func Reduce(results map[string]*Accumulation) map[string]*Metrics {
	metrics := make(map[string]*Metrics, len(results))
	for bench, acc := range results {
		metrics[bench] = reduceOne(acc)
	}
	return metrics
}

func reduceOne(acc *Accumulation) *Metrics {
	var coldTrials, warmTrials [][]float64
	var compileTimes []float64
	if acc != nil {
		for _, t := range acc.Trials {
			coldTrials = append(coldTrials, t.Cold)
			warmTrials = append(warmTrials, t.Warm)
			if t.CompileTime != nil {
				compileTimes = append(compileTimes, *t.CompileTime)
			}
		}
	}

	cold := medianAcrossTrials(coldTrials)
	warm := medianAcrossTrials(warmTrials)

	m := &Metrics{
		ColdCurve:      cold,
		WarmCurve:      warm,
		ClosenessRatio: []float64{},
	}

	if len(cold) > 0 {
		tail := cold
		if len(cold) >= optimalTailWindow {
			tail = cold[len(cold)-optimalTailWindow:]
		}
		m.ColdOptimal = mean(tail)
		if m.ColdOptimal > 0 {
			m.OptimalSpeedup = cold[0] / m.ColdOptimal
		}

		threshold := minOf(cold) * optimalSlack
		m.ColdTimeToOptimal = len(cold)
		for i, t := range cold {
			if t <= threshold {
				m.ColdTimeToOptimal = i
				break
			}
		}
	}

	// Representative "loaded and stabilized" latency: the third warm
	// iteration, or the last one for shorter curves.
	if len(warm) > warmTargetIndex {
		m.WarmTarget = warm[warmTargetIndex]
	} else if len(warm) > 0 {
		m.WarmTarget = warm[len(warm)-1]
	}

	if len(cold) > 0 && m.WarmTarget > 0 {
		m.OurImprovement = cold[0] / m.WarmTarget
		m.ClosenessRatio = make([]float64, len(cold))
		for i, c := range cold {
			m.ClosenessRatio[i] = c / m.WarmTarget
		}
	}

	if len(compileTimes) > 0 {
		med := median(compileTimes)
		m.CompileTimeMedian = &med
	}

	return m
}

// medianAcrossTrials reduces multiple trials of iteration arrays to the
// median at each index. Trials shorter than an index simply don't vote
// there, so trials of differing lengths neither crash nor truncate the
// curve.
func medianAcrossTrials(trials [][]float64) []float64 {
	maxLen := 0
	for _, t := range trials {
		if len(t) > maxLen {
			maxLen = len(t)
		}
	}
	curve := make([]float64, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		var vals []float64
		for _, t := range trials {
			if len(t) > i {
				vals = append(vals, t[i])
			}
		}
		if len(vals) > 0 {
			curve = append(curve, median(vals))
		} else {
			curve = append(curve, 0)
		}
	}
	return curve
}

// median of a non-empty set; the mean of the two middle values for even
// counts.
func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
