// internal/report/report.go
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/view"
)

// Format selects the output encoding of a report.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	JSON     Format = "json"
	YAML     Format = "yaml"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, Markdown, JSON, YAML:
		return f, nil
	case "":
		return Text, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, markdown, json or yaml)", s)
}

// Job is the headless view of a finished or running job.
type Job struct {
	JobID    string
	State    string
	Elapsed  time.Duration
	Done     int
	Expected int
	Summary  results.Summary
}

type modelDoc struct {
	Model            string                `json:"model" yaml:"model"`
	Tests            int                   `json:"tests" yaml:"tests"`
	PassRate         results.PassRate      `json:"pass_rate" yaml:"pass_rate"`
	TTFT             results.LatencyStats  `json:"ttft" yaml:"ttft"`
	E2E              results.LatencyStats  `json:"e2e" yaml:"e2e"`
	TotalCategories  int                   `json:"total_categories" yaml:"total_categories"`
	PassedCategories int                   `json:"passed_categories" yaml:"passed_categories"`
	CategoryRatioPct int                   `json:"category_ratio_pct" yaml:"category_ratio_pct"`
	Categories       []results.CategoryRow `json:"categories" yaml:"categories"`
	Passed           bool                  `json:"passed" yaml:"passed"`
}

type jobDoc struct {
	JobID     string               `json:"job_id" yaml:"job_id"`
	State     string               `json:"state" yaml:"state"`
	ElapsedMs int64                `json:"elapsed_ms" yaml:"elapsed_ms"`
	Done      int                  `json:"done" yaml:"done"`
	Expected  int                  `json:"expected" yaml:"expected"`
	Criteria  results.PassCriteria `json:"criteria" yaml:"criteria"`
	Overall   results.PassRate     `json:"overall" yaml:"overall"`
	AllPassed bool                 `json:"all_passed" yaml:"all_passed"`
	Models    []modelDoc           `json:"models" yaml:"models"`
}

func document(j Job) jobDoc {
	doc := jobDoc{
		JobID:     j.JobID,
		State:     j.State,
		ElapsedMs: j.Elapsed.Milliseconds(),
		Done:      j.Done,
		Expected:  j.Expected,
		Criteria:  j.Summary.Criteria,
		Overall:   j.Summary.Overall,
		AllPassed: j.Summary.AllPassed(),
		Models:    make([]modelDoc, 0, len(j.Summary.Models)),
	}
	for _, m := range j.Summary.Models {
		doc.Models = append(doc.Models, modelDoc{
			Model:            m.Model,
			Tests:            m.Tests,
			PassRate:         m.PassRate,
			TTFT:             m.TTFT,
			E2E:              m.E2E,
			TotalCategories:  m.Categories.TotalCategories,
			PassedCategories: m.Categories.PassedCategories,
			CategoryRatioPct: m.Categories.RatioPct(),
			Categories:       m.Categories.Breakdown(),
			Passed:           m.Verdict,
		})
	}
	return doc
}

// Write renders j to w in format f.
func Write(w io.Writer, f Format, j Job) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document(j))
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document(j)); err != nil {
			return err
		}
		return enc.Close()
	case Text, Markdown, "":
		_, err := io.WriteString(w, renderText(j, f == Markdown))
		return err
	}
	return fmt.Errorf("unknown report format %q", f)
}

func render(tw table.Writer, markdown bool) string {
	if markdown {
		return tw.RenderMarkdown()
	}
	return tw.Render()
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	return tw
}

func verdict(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func renderText(j Job, markdown bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %s: %s, %d/%d results in %s\n\n", j.JobID, j.State, j.Done, j.Expected, view.FormatElapsed(j.Elapsed))

	s := j.Summary
	if len(s.Models) == 0 {
		b.WriteString("No results.\n")
		return b.String()
	}

	tw := newTable()
	tw.AppendHeader(table.Row{"Model", "Tests", "Pass rate", "Categories", "Avg TTFT", "Avg E2E", "TTFT p50/p95", "Verdict"})
	for _, m := range s.Models {
		tw.AppendRow(table.Row{
			m.Model,
			m.Tests,
			fmt.Sprintf("%d%% (%d/%d)", m.PassRate.Rate, m.PassRate.Passed, m.PassRate.Valid),
			fmt.Sprintf("%d/%d (%d%%)", m.Categories.PassedCategories, m.Categories.TotalCategories, m.Categories.RatioPct()),
			view.AverageMs(m.TTFT.Mean),
			view.AverageMs(m.E2E.Mean),
			quantiles(m.TTFT),
			verdict(m.Verdict),
		})
	}
	tw.AppendFooter(table.Row{"overall", "", fmt.Sprintf("%d%% (%d/%d)", s.Overall.Rate, s.Overall.Passed, s.Overall.Valid)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	b.WriteString(render(tw, markdown))
	b.WriteString("\n")

	for _, m := range s.Models {
		fmt.Fprintf(&b, "\n%s: category breakdown (ratio threshold %.0f%%)\n", m.Model, s.Criteria.CategoryRatioThreshold*100)
		ct := newTable()
		ct.AppendHeader(table.Row{"Category", "Passed", "Rate", "Threshold", "Result"})
		for _, row := range m.Categories.Breakdown() {
			ct.AppendRow(table.Row{
				row.Name,
				fmt.Sprintf("%d/%d", row.Passed, row.Valid),
				fmt.Sprintf("%d%%", row.Rate),
				fmt.Sprintf("%d%%", row.ThresholdPct()),
				verdict(row.Pass()),
			})
		}
		b.WriteString(render(ct, markdown))
		b.WriteString("\n")
	}
	return b.String()
}

func quantiles(l results.LatencyStats) string {
	if l.P50 == nil || l.P95 == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f/%.0f", *l.P50, *l.P95)
}
