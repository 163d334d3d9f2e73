// internal/results/latency.go
package results

import (
	"math"
	"slices"
)

// LatencyStats summarizes the measured latencies of a result set in
// milliseconds. Absent and zero measurements are left out.
type LatencyStats struct {
	Samples int      `json:"samples" yaml:"samples"`
	Mean    *float64 `json:"mean_ms" yaml:"mean_ms"`
	P50     *float64 `json:"p50_ms" yaml:"p50_ms"`
	P95     *float64 `json:"p95_ms" yaml:"p95_ms"`
}

// latencyOf summarizes the latency pick reads from each result. The mean is
// rounded to whole milliseconds; percentiles are not.
func latencyOf(rs []TestResult, pick func(TestResult) *float64) LatencyStats {
	var (
		vals []float64
		sum  float64
	)
	for _, r := range rs {
		if v := pick(r); v != nil && *v != 0 {
			vals = append(vals, *v)
			sum += *v
		}
	}
	if len(vals) == 0 {
		return LatencyStats{}
	}
	slices.Sort(vals)
	mean := math.Round(sum / float64(len(vals)))
	p50, p95 := percentile(vals, 50), percentile(vals, 95)
	return LatencyStats{Samples: len(vals), Mean: &mean, P50: &p50, P95: &p95}
}

// percentile interpolates the p-th percentile (0..100) between the two
// closest ranks of sorted, which must not be empty.
func percentile(sorted []float64, p float64) float64 {
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*(pos-float64(lo))
}
