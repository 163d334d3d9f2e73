// internal/results/category.go
package results

import (
	"slices"
	"strings"
)

// UnknownCategory groups results that carry no category id.
const UnknownCategory = "unknown"

// Category identifies a suite category in presentation order.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// CategoryRow is the per-category pass statistic for one model.
type CategoryRow struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Valid     int     `json:"valid" yaml:"valid"`
	Passed    int     `json:"passed" yaml:"passed"`
	Rate      int     `json:"rate" yaml:"rate"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Counted reports whether the row takes part in category totals.
func (r CategoryRow) Counted() bool { return r.Valid > 0 }

// ThresholdPct is the threshold as a rounded whole percentage.
func (r CategoryRow) ThresholdPct() int { return thresholdPercent(r.Threshold) }

// Pass reports whether a counted row meets its threshold. The comparison is
// inclusive.
func (r CategoryRow) Pass() bool { return r.Counted() && r.Rate >= r.ThresholdPct() }

// CategoryStats is the category breakdown for one set of results.
type CategoryStats struct {
	ByCategory map[string]*CategoryRow
	// Order lists ByCategory keys: the requested order first, then ids first
	// seen in the results.
	Order            []string
	TotalCategories  int
	PassedCategories int
}

// Rows returns every row in Order, including categories without valid results.
func (s CategoryStats) Rows() []CategoryRow {
	rows := make([]CategoryRow, 0, len(s.Order))
	for _, id := range s.Order {
		rows = append(rows, *s.ByCategory[id])
	}
	return rows
}

// Breakdown returns the counted rows sorted by rate, highest first.
func (s CategoryStats) Breakdown() []CategoryRow {
	var rows []CategoryRow
	for _, r := range s.Rows() {
		if r.Counted() {
			rows = append(rows, r)
		}
	}
	slices.SortStableFunc(rows, func(a, b CategoryRow) int { return b.Rate - a.Rate })
	return rows
}

// RatioPct is the rounded percentage of counted categories that passed.
func (s CategoryStats) RatioPct() int { return percent(s.PassedCategories, s.TotalCategories) }

// ComputeCategoryStats folds results into per-category rows. Every category in
// order gets a row even without results; such rows stay out of the totals.
func ComputeCategoryStats(results []TestResult, order []Category, c PassCriteria) CategoryStats {
	stats := CategoryStats{ByCategory: make(map[string]*CategoryRow, len(order))}
	addRow := func(id, name string) *CategoryRow {
		row := &CategoryRow{ID: id, Name: name, Threshold: ResolveThreshold(id, c)}
		stats.ByCategory[id] = row
		stats.Order = append(stats.Order, id)
		return row
	}
	for _, cat := range order {
		if _, ok := stats.ByCategory[cat.ID]; ok {
			continue
		}
		addRow(cat.ID, cat.Name)
	}

	for _, r := range results {
		id := r.CategoryKey()
		row, ok := stats.ByCategory[id]
		if !ok {
			row = addRow(id, r.CategoryLabel())
		}
		if !r.IsValid() {
			continue
		}
		row.Valid++
		if r.Passed {
			row.Passed++
		}
	}

	for _, id := range stats.Order {
		row := stats.ByCategory[id]
		if !row.Counted() {
			continue
		}
		row.Rate = percent(row.Passed, row.Valid)
		stats.TotalCategories++
		if row.Pass() {
			stats.PassedCategories++
		}
	}
	return stats
}

// OverallVerdict applies the category pass ratio. A model with no counted
// categories fails.
func OverallVerdict(s CategoryStats, c PassCriteria) bool {
	if s.TotalCategories <= 0 {
		return false
	}
	return float64(s.PassedCategories)/float64(s.TotalCategories) >= c.CategoryRatioThreshold
}

// CategoryOrder merges catalog order with categories first seen in results.
// Results are visited model by model, in the order models first appear.
func CategoryOrder(catalog []Category, results []TestResult) []Category {
	seen := make(map[string]bool)
	var order []Category
	for _, cat := range catalog {
		if cat.ID == "" || seen[cat.ID] {
			continue
		}
		name := cat.Name
		if name == "" {
			name = cat.ID
		}
		seen[cat.ID] = true
		order = append(order, Category{ID: cat.ID, Name: name})
	}
	models, byModel := GroupByModel(results)
	for _, m := range models {
		for _, r := range byModel[m] {
			id := r.CategoryKey()
			if seen[id] {
				continue
			}
			seen[id] = true
			order = append(order, Category{ID: id, Name: r.CategoryLabel()})
		}
	}
	return order
}

// SuitePathsMatch compares suite paths after normalising separators and case.
// An empty path matches anything.
func SuitePathsMatch(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	norm := func(p string) string { return strings.ToLower(strings.ReplaceAll(p, `\`, "/")) }
	return norm(a) == norm(b)
}
