package results

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePassRate_Empty(t *testing.T) {
	assert.Equal(t, PassRate{}, ComputePassRate(nil))
	assert.Equal(t, PassRate{}, ComputePassRate([]TestResult{}))
}

func TestComputePassRate_CountsOnlyOK(t *testing.T) {
	rs := []TestResult{
		ok("m", "a", "1", true),
		ok("m", "a", "2", false),
		{Status: StatusSkipped, Passed: true},
		{Status: StatusError, Passed: true},
		ok("m", "a", "3", true),
	}
	assert.Equal(t, PassRate{Passed: 2, Valid: 3, Rate: 67}, ComputePassRate(rs))
}

func TestComputePassRate_RoundsHalfAwayFromZero(t *testing.T) {
	// 1/8 = 12.5% -> 13
	rs := []TestResult{ok("m", "a", "1", true)}
	for i := 0; i < 7; i++ {
		rs = append(rs, ok("m", "a", "x", false))
	}
	assert.Equal(t, 13, ComputePassRate(rs).Rate)
}

func TestComputePassRate_PermutationInvariant(t *testing.T) {
	rs := []TestResult{
		ok("m", "a", "1", true), ok("m", "a", "2", false), {Status: StatusSkipped},
		ok("m", "b", "3", true), {Status: StatusError}, ok("m", "b", "4", true),
	}
	want := ComputePassRate(rs)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		cp := append([]TestResult(nil), rs...)
		rng.Shuffle(len(cp), func(a, b int) { cp[a], cp[b] = cp[b], cp[a] })
		assert.Equal(t, want, ComputePassRate(cp))
	}
}

func TestResolveThreshold(t *testing.T) {
	c := PassCriteria{DefaultCategoryThreshold: 0.6, CategoryThresholds: map[string]float64{"a": 0.9}}
	assert.Equal(t, 0.9, ResolveThreshold("a", c))
	assert.Equal(t, 0.6, ResolveThreshold("b", c))
}

func TestCriteriaFromMeta(t *testing.T) {
	var meta SuiteMeta
	require.NoError(t, json.Unmarshal([]byte(`{
		"category_threshold_default": 0.5,
		"category_pass_ratio_threshold": "0.8",
		"category_thresholds": {"a": 0.9, "b": "0.25", "c": "high", "d": null}
	}`), &meta))

	c := CriteriaFromMeta(meta)
	assert.Equal(t, 0.5, c.DefaultCategoryThreshold)
	assert.Equal(t, 0.8, c.CategoryRatioThreshold)
	assert.Equal(t, map[string]float64{"a": 0.9, "b": 0.25}, c.CategoryThresholds)
	assert.Equal(t, 0.5, ResolveThreshold("c", c), "non-numeric threshold falls back")
}

func TestCriteriaFromMeta_Defaults(t *testing.T) {
	assert.Equal(t, DefaultCriteria(), CriteriaFromMeta(nil))
	c := CriteriaFromMeta(SuiteMeta{"category_threshold_default": "nope", "category_thresholds": []any{1}})
	assert.Equal(t, DefaultCategoryThreshold, c.DefaultCategoryThreshold)
	assert.Equal(t, DefaultCategoryRatioThreshold, c.CategoryRatioThreshold)
	assert.Empty(t, c.CategoryThresholds)
}

func TestComputeCategoryStats_SkippedCategoryExcluded(t *testing.T) {
	rs := []TestResult{
		ok("m", "a", "1", true),
		{Model: "m", CategoryID: "s", CategoryName: "Skipped", Status: StatusSkipped},
		{Model: "m", CategoryID: "s", CategoryName: "Skipped", Status: StatusSkipped},
	}
	stats := ComputeCategoryStats(rs, nil, DefaultCriteria())

	require.Contains(t, stats.ByCategory, "s")
	assert.Zero(t, stats.ByCategory["s"].Valid)
	assert.Equal(t, 1, stats.TotalCategories)
	assert.Equal(t, 1, stats.PassedCategories)
}

func TestComputeCategoryStats_EmptyOrderedCategoryVisible(t *testing.T) {
	order := []Category{{ID: "x", Name: "Unrun"}, {ID: "a", Name: "A"}}
	stats := ComputeCategoryStats([]TestResult{ok("m", "a", "1", true)}, order, DefaultCriteria())

	assert.Equal(t, []string{"x", "a"}, stats.Order)
	assert.Equal(t, "Unrun", stats.ByCategory["x"].Name)
	assert.Equal(t, 1, stats.TotalCategories)
}

func TestComputeCategoryStats_UnknownCategoryNaming(t *testing.T) {
	rs := []TestResult{
		{Model: "m", CategoryID: "dyn", CategoryName: "Dynamic", Status: StatusOK, Passed: true},
		{Model: "m", CategoryID: "bare", Status: StatusOK},
		{Model: "m", Status: StatusOK, Passed: true},
	}
	stats := ComputeCategoryStats(rs, nil, DefaultCriteria())

	assert.Equal(t, []string{"dyn", "bare", UnknownCategory}, stats.Order)
	assert.Equal(t, "Dynamic", stats.ByCategory["dyn"].Name)
	assert.Equal(t, "bare", stats.ByCategory["bare"].Name)
	assert.Equal(t, UnknownCategory, stats.ByCategory[UnknownCategory].Name)
}

func TestComputeCategoryStats_ThresholdInclusive(t *testing.T) {
	c := PassCriteria{DefaultCategoryThreshold: 0.7, CategoryRatioThreshold: 1}
	var rs []TestResult
	for i := 0; i < 10; i++ {
		rs = append(rs, ok("m", "a", "t", i < 7))
	}
	stats := ComputeCategoryStats(rs, nil, c)

	row := stats.ByCategory["a"]
	assert.Equal(t, 70, row.Rate)
	assert.Equal(t, 70, row.ThresholdPct())
	assert.True(t, row.Pass())
	assert.Equal(t, 1, stats.PassedCategories)
}

func TestOverallVerdict(t *testing.T) {
	c := PassCriteria{CategoryRatioThreshold: 0.5}
	assert.False(t, OverallVerdict(CategoryStats{}, c))
	assert.True(t, OverallVerdict(CategoryStats{TotalCategories: 2, PassedCategories: 1}, c), "ratio equal to threshold passes")
	assert.False(t, OverallVerdict(CategoryStats{TotalCategories: 3, PassedCategories: 1}, c))
}

func TestEvaluation_TwoCategoryScenario(t *testing.T) {
	c := PassCriteria{
		DefaultCategoryThreshold: 0.7,
		CategoryRatioThreshold:   0.5,
		CategoryThresholds:       map[string]float64{"A": 0.5, "B": 0.8},
	}
	rs := []TestResult{
		ok("m", "A", "a1", true), ok("m", "A", "a2", true), ok("m", "A", "a3", true), ok("m", "A", "a4", false),
		ok("m", "B", "b1", true), ok("m", "B", "b2", false),
	}
	stats := ComputeCategoryStats(rs, []Category{{ID: "A", Name: "A"}, {ID: "B", Name: "B"}}, c)

	a, b := stats.ByCategory["A"], stats.ByCategory["B"]
	assert.Equal(t, 75, a.Rate)
	assert.True(t, a.Pass())
	assert.Equal(t, 50, b.Rate)
	assert.False(t, b.Pass())
	assert.Equal(t, 2, stats.TotalCategories)
	assert.Equal(t, 1, stats.PassedCategories)
	assert.Equal(t, 50, stats.RatioPct())
	assert.True(t, OverallVerdict(stats, c))
}

func TestEvaluation_OverrideThenRecompute(t *testing.T) {
	s := NewStore()
	s.Append([]TestResult{ok("m", "a", "1", false), ok("m", "a", "2", true), ok("m", "b", "3", true)})
	before := ComputeCategoryStats(s.All(), nil, DefaultCriteria()).ByCategory["a"]

	require.NoError(t, s.Override(0, true))
	after := ComputeCategoryStats(s.All(), nil, DefaultCriteria()).ByCategory["a"]
	assert.Equal(t, before.Passed+1, after.Passed)
	assert.Equal(t, before.Valid, after.Valid)

	require.NoError(t, s.Override(1, true))
	again := ComputeCategoryStats(s.All(), nil, DefaultCriteria()).ByCategory["a"]
	assert.Equal(t, *after, *again, "re-passing a passed result changes nothing")
}

func TestBreakdown_SortedByRate(t *testing.T) {
	rs := []TestResult{
		ok("m", "low", "1", false), ok("m", "low", "2", true), ok("m", "low", "3", false),
		ok("m", "high", "4", true),
		{Model: "m", CategoryID: "none", Status: StatusSkipped},
	}
	rows := ComputeCategoryStats(rs, nil, DefaultCriteria()).Breakdown()
	require.Len(t, rows, 2)
	assert.Equal(t, "high", rows[0].ID)
	assert.Equal(t, "low", rows[1].ID)
}

func TestCategoryOrder(t *testing.T) {
	catalog := []Category{{ID: "b", Name: "Bee"}, {ID: "a"}}
	rs := []TestResult{
		ok("m1", "a", "1", true),
		ok("m2", "late", "2", true),
		ok("m1", "dyn", "3", true),
		{Model: "m1", Status: StatusOK},
	}
	got := CategoryOrder(catalog, rs)
	assert.Equal(t, []Category{
		{ID: "b", Name: "Bee"},
		{ID: "a", Name: "a"},
		{ID: "dyn", Name: "dyn"},
		{ID: UnknownCategory, Name: UnknownCategory},
		{ID: "late", Name: "late"},
	}, got)
}

func TestSuitePathsMatch(t *testing.T) {
	assert.True(t, SuitePathsMatch(`bench\Suite.yaml`, "bench/suite.yaml"))
	assert.True(t, SuitePathsMatch("", "bench/suite.yaml"))
	assert.False(t, SuitePathsMatch("bench/a.yaml", "bench/b.yaml"))
}
