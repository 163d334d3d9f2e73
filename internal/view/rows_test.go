package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mwiater/benchdash/internal/results"
)

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, LabelPass, StatusLabel(results.TestResult{Status: results.StatusOK, Passed: true}))
	assert.Equal(t, LabelFail, StatusLabel(results.TestResult{Status: results.StatusOK}))
	assert.Equal(t, LabelSkip, StatusLabel(results.TestResult{Status: results.StatusSkipped, Passed: true}))
	assert.Equal(t, LabelError, StatusLabel(results.TestResult{Status: results.StatusError}))
}

func TestFormatRow(t *testing.T) {
	pass, total := 2, 3
	yes := true
	r := results.TestResult{
		Model:         "lmstudio-community/qwen2.5-7b-instruct-gguf",
		CategoryName:  "Reasoning",
		CaseID:        "r1",
		Status:        results.StatusOK,
		Passed:        true,
		TTFTMs:        ms(12.345),
		HumanOverride: &yes,
		Variant:       &results.Variant{PassCount: &pass, TotalCount: &total},
	}
	row := FormatRow(Indexed{Index: 7, Result: r})

	assert.Equal(t, 7, row.Index)
	assert.Equal(t, "lmstudio-community/qwe...", row.Model)
	assert.Equal(t, "r1", row.Name)
	assert.Equal(t, "12.3", row.TTFT)
	assert.Equal(t, "-", row.E2E)
	assert.Equal(t, "2/3", row.Variant)
	assert.Equal(t, []string{"lmstudio-community/qwe...", "Reasoning", "r1 [2/3]", "PASS*", "12.3", "-"}, row.Cells())
}

func TestRateClass(t *testing.T) {
	assert.Equal(t, RateGood, RateClass(70))
	assert.Equal(t, RateWarn, RateClass(69))
	assert.Equal(t, RateWarn, RateClass(40))
	assert.Equal(t, RateBad, RateClass(39))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "short-model", ShortName("short-model"))
	assert.Equal(t, "exactly-eighteen-c", ShortName("exactly-eighteen-c"))
	assert.Equal(t, "a-much-longer-m...", ShortName("a-much-longer-model-name"))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", FormatElapsed(0))
	assert.Equal(t, "01:05", FormatElapsed(65*time.Second+400*time.Millisecond))
	assert.Equal(t, "61:00", FormatElapsed(time.Hour+time.Minute))
}
