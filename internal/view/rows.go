// internal/view/rows.go
package view

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mwiater/benchdash/internal/results"
)

// Status labels shown in the results table.
const (
	LabelPass  = "PASS"
	LabelFail  = "FAIL"
	LabelSkip  = "SKIP"
	LabelError = "ERROR"
)

// Rate classes used to colour pass rates.
const (
	RateGood = "good"
	RateWarn = "warn"
	RateBad  = "bad"
)

// Row is one formatted results-table row.
type Row struct {
	Index       int
	Model       string
	Category    string
	Name        string
	Description string
	Status      string
	TTFT        string
	E2E         string
	// Variant is "pass/total" for variant results, empty otherwise.
	Variant    string
	Overridden bool
}

// Cells returns the row as table cells in column order.
func (r Row) Cells() []string {
	name := r.Name
	if r.Variant != "" {
		name += " [" + r.Variant + "]"
	}
	status := r.Status
	if r.Overridden {
		status += "*"
	}
	return []string{r.Model, r.Category, name, status, r.TTFT, r.E2E}
}

// Rows formats indexed results for the table.
func Rows(indexed []Indexed) []Row {
	out := make([]Row, 0, len(indexed))
	for _, ir := range indexed {
		out = append(out, FormatRow(ir))
	}
	return out
}

// FormatRow formats a single indexed result.
func FormatRow(ir Indexed) Row {
	r := ir.Result
	return Row{
		Index:       ir.Index,
		Model:       Truncate(r.Model, 25),
		Category:    r.CategoryName,
		Name:        r.DisplayName(),
		Description: r.CaseDescription,
		Status:      StatusLabel(r),
		TTFT:        FormatLatency(r.TTFTMs),
		E2E:         FormatLatency(r.E2EMs),
		Variant:     VariantBadge(r),
		Overridden:  r.Overridden(),
	}
}

// StatusLabel maps a result to PASS, FAIL, SKIP or ERROR.
func StatusLabel(r results.TestResult) string {
	switch {
	case r.Status == results.StatusSkipped:
		return LabelSkip
	case r.Status == results.StatusError:
		return LabelError
	case r.Passed:
		return LabelPass
	}
	return LabelFail
}

// FormatLatency renders milliseconds with one decimal, "-" when unmeasured.
func FormatLatency(v *float64) string {
	if v == nil || *v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

// VariantBadge renders "pass/total" for a variant result.
func VariantBadge(r results.TestResult) string {
	v := r.Variant
	if v == nil {
		return ""
	}
	pass, total := "?", "?"
	if v.PassCount != nil {
		pass = fmt.Sprint(*v.PassCount)
	}
	if v.TotalCount != nil {
		total = fmt.Sprint(*v.TotalCount)
	}
	return pass + "/" + total
}

// Truncate shortens s to n runes, ending with "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

// ShortName shortens a model name for the header pass rates.
func ShortName(model string) string { return Truncate(model, 18) }

// RateClass buckets a pass rate for colouring.
func RateClass(rate int) string {
	switch {
	case rate >= 70:
		return RateGood
	case rate >= 40:
		return RateWarn
	}
	return RateBad
}

// FormatElapsed renders d as mm:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// AverageMs rounds a mean latency for the summary, "-" when absent.
func AverageMs(mean *float64) string {
	if mean == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *mean)
}
