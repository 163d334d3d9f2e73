// internal/results/summary.go
package results

// ModelSummary aggregates one model's results for the summary panes.
type ModelSummary struct {
	Model      string        `json:"model" yaml:"model"`
	Tests      int           `json:"tests" yaml:"tests"`
	PassRate   PassRate      `json:"pass_rate" yaml:"pass_rate"`
	TTFT       LatencyStats  `json:"ttft" yaml:"ttft"`
	E2E        LatencyStats  `json:"e2e" yaml:"e2e"`
	Categories CategoryStats `json:"-" yaml:"-"`
	Verdict    bool          `json:"passed" yaml:"passed"`
}

// Summary is the full aggregate over a job's results.
type Summary struct {
	Models   []ModelSummary `json:"models" yaml:"models"`
	Order    []Category     `json:"categories" yaml:"categories"`
	Criteria PassCriteria   `json:"criteria" yaml:"criteria"`
	Overall  PassRate       `json:"overall" yaml:"overall"`
}

// AllPassed reports whether every model reached an overall pass. It is false
// for a summary without models.
func (s Summary) AllPassed() bool {
	if len(s.Models) == 0 {
		return false
	}
	for _, m := range s.Models {
		if !m.Verdict {
			return false
		}
	}
	return true
}

// GroupByModel splits results per model. Model names are returned in the
// order they first appear.
func GroupByModel(results []TestResult) ([]string, map[string][]TestResult) {
	byModel := map[string][]TestResult{}
	var names []string
	for _, r := range results {
		if _, ok := byModel[r.Model]; !ok {
			names = append(names, r.Model)
		}
		byModel[r.Model] = append(byModel[r.Model], r)
	}
	return names, byModel
}

// Summarize builds per-model summaries in first-seen model order.
func Summarize(results []TestResult, order []Category, c PassCriteria) Summary {
	names, byModel := GroupByModel(results)
	out := Summary{
		Models:   make([]ModelSummary, 0, len(names)),
		Order:    order,
		Criteria: c,
		Overall:  ComputePassRate(results),
	}
	for _, name := range names {
		rows := byModel[name]
		cats := ComputeCategoryStats(rows, order, c)
		out.Models = append(out.Models, ModelSummary{
			Model:      name,
			Tests:      len(rows),
			PassRate:   ComputePassRate(rows),
			TTFT:       latencyOf(rows, func(r TestResult) *float64 { return r.TTFTMs }),
			E2E:        latencyOf(rows, func(r TestResult) *float64 { return r.E2EMs }),
			Categories: cats,
			Verdict:    OverallVerdict(cats, c),
		})
	}
	return out
}
