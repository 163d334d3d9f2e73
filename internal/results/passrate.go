// internal/results/passrate.go
package results

import "math"

// PassRate is the pass statistic over a set of results.
type PassRate struct {
	Passed int `json:"passed" yaml:"passed"`
	Valid  int `json:"valid" yaml:"valid"`
	// Rate is the rounded percentage of Passed over Valid, 0 when Valid is 0.
	Rate int `json:"rate" yaml:"rate"`
}

// ComputePassRate counts valid (status ok) and passed results.
func ComputePassRate(results []TestResult) PassRate {
	var pr PassRate
	for _, r := range results {
		if !r.IsValid() {
			continue
		}
		pr.Valid++
		if r.Passed {
			pr.Passed++
		}
	}
	pr.Rate = percent(pr.Passed, pr.Valid)
	return pr
}

// percent returns round(num/den*100), rounding half away from zero, and 0
// for an empty denominator.
func percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den) * 100))
}

// thresholdPercent converts a fractional threshold to a whole percentage.
func thresholdPercent(threshold float64) int {
	return int(math.Round(threshold * 100))
}
