// internal/report/suite.go
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/runner"
)

// WriteSuite renders a suite catalog with its pass criteria.
func WriteSuite(w io.Writer, f Format, s runner.Suite) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case YAML:
		return yaml.NewEncoder(w).Encode(s)
	case Text, Markdown, "":
		_, err := io.WriteString(w, renderSuite(s, f == Markdown))
		return err
	}
	return fmt.Errorf("unknown report format %q", f)
}

func renderSuite(s runner.Suite, markdown bool) string {
	var b strings.Builder
	c := results.CriteriaFromMeta(s.Meta)
	fmt.Fprintf(&b, "Suite %s: %d tests in %d categories\n", s.SuitePath, s.TotalTests, len(s.Categories))
	fmt.Fprintf(&b, "Category threshold %.0f%%, pass ratio %.0f%%\n\n", c.DefaultCategoryThreshold*100, c.CategoryRatioThreshold*100)

	tw := newTable()
	tw.AppendHeader(table.Row{"Category", "Test", "Name", "Modality", "Weight", "Threshold"})
	for _, cat := range s.Categories {
		th := fmt.Sprintf("%.0f%%", results.ResolveThreshold(cat.ID, c)*100)
		for i, t := range cat.Tests {
			label, thCell := "", ""
			if i == 0 {
				label, thCell = cat.Name, th
			}
			modality := t.Modality
			if t.IsVision() {
				modality = "VLM"
			}
			tw.AppendRow(table.Row{label, t.ID, t.Name, modality, t.Weight, thCell})
		}
	}
	b.WriteString(render(tw, markdown))
	b.WriteString("\n")
	return b.String()
}

// WriteModels renders the model list of the inference server.
func WriteModels(w io.Writer, f Format, models []runner.ModelInfo) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	case YAML:
		return yaml.NewEncoder(w).Encode(models)
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"Model", "Type", "State", "Quantization", "Arch"})
	for _, m := range models {
		tw.AppendRow(table.Row{m.ID, m.Type, m.State, m.Quantization, m.Arch})
	}
	_, err := io.WriteString(w, render(tw, f == Markdown)+"\n")
	return err
}
