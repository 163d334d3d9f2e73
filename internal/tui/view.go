// internal/tui/view.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/mwiater/benchdash/internal/report"
	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/view"
)

// View renders the dashboard for the current screen.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.state {
	case viewLoading:
		return fmt.Sprintf("\n  %s Loading suite and models from %s...\n", m.spinner.View(), m.cfg.RunnerURL)
	case viewPicker:
		return m.pickerView()
	case viewDashboard:
		return m.dashboardView()
	case viewDetail:
		return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), "", m.pane.View(), m.footerView())
	default:
		return "Unknown state"
	}
}

func (m *model) pickerView() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Margin(1, 2, 0).Render(m.modelList.View()))
	b.WriteString("\n  ")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error loading models: %v", m.err)))
		b.WriteString("\n  ")
	}
	n := len(m.selectedModels())
	start := "enter start"
	if n == 0 {
		start = disabledStyle.Render(start)
	}
	fmt.Fprintf(&b, "%d selected  ", n)
	b.WriteString(helpStyle.Render("space toggle, a all, c none, r reload, ") + start + helpStyle.Render(", q quit"))
	if m.flash != "" {
		b.WriteString("\n  " + errorStyle.Render(m.flash))
	}
	return b.String()
}

func (m *model) dashboardView() string {
	var body string
	if m.tab == tabResults {
		if len(m.rows) == 0 {
			body = helpStyle.Render("  No results yet.")
		} else {
			body = m.table.View()
		}
	} else {
		body = m.pane.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.progressView(),
		m.tabsView(),
		body,
		m.footerView(),
	)
}

// headerView renders the job line and the per-model pass rates.
func (m *model) headerView() string {
	s := m.session()
	parts := []string{headerStyle.Render("benchdash")}
	if s.JobID != "" {
		parts = append(parts, headerStyle.MarginLeft(1).Render("Job: "+s.JobID))
	}
	state := styled(stateStyles, s.State, s.State.String())
	if m.busy() {
		state = m.spinner.View() + " " + state
	}
	parts = append(parts, " "+state, "  "+view.FormatElapsed(s.Elapsed()))
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	var rates []string
	for _, r := range s.HeaderPassRates() {
		rate := "-"
		if r.Valid > 0 {
			rate = styled(rateStyles, view.RateClass(r.Rate), fmt.Sprintf("%d%%", r.Rate))
		}
		rates = append(rates, view.ShortName(r.Model)+" "+rate)
	}
	if len(rates) == 0 {
		return line
	}
	return line + "\n" + strings.Join(rates, "   ")
}

func (m *model) progressView() string {
	p := m.session().Progress()
	expected := "?"
	if p.Expected > 0 {
		expected = fmt.Sprint(p.Expected)
	}
	return fmt.Sprintf("%s %d/%s (%d%%)", m.bar.ViewAs(float64(p.Pct)/100), p.Done, expected, p.Pct)
}

func (m *model) tabsView() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			tabs[i] = activeTab.Render(name)
		} else {
			tabs[i] = inactiveTab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *model) footerView() string {
	var help string
	switch {
	case m.state == viewDetail:
		help = "esc back, up/down scroll, " + m.overrideHelp() + ", q quit"
	case m.tab == tabResults:
		help = "1-6 sort, enter detail, tab next pane, x cancel, n new job, q quit"
	default:
		help = "tab next pane, up/down scroll, x cancel, n new job, q quit"
	}
	out := helpStyle.Render(help)
	if m.flash != "" {
		out = errorStyle.Render(m.flash) + "  " + out
	}
	return out
}

// overrideHelp renders the override controls, striking the one that would
// not change the verdict.
func (m *model) overrideHelp() string {
	pass, fail := "p mark pass", "f mark fail"
	r, err := m.session().Store.At(m.detail)
	if err != nil || m.pending {
		return disabledStyle.Render(pass) + ", " + disabledStyle.Render(fail)
	}
	if r.Passed {
		pass = disabledStyle.Render(pass)
	} else {
		fail = disabledStyle.Render(fail)
	}
	return pass + ", " + fail
}

func (m *model) logsView() string {
	logs := m.session().Logs
	if len(logs) == 0 {
		return helpStyle.Render("No log lines yet.")
	}
	var b strings.Builder
	for _, l := range logs {
		fmt.Fprintf(&b, "%s %s %s\n",
			helpStyle.Render(l.Time.Format("15:04:05")),
			styled(logStyles, l.Type, fmt.Sprintf("%-7s", "["+string(l.Type)+"]")),
			l.Message)
	}
	return b.String()
}

func (m *model) summaryView() string {
	s := m.session()
	p := s.Progress()
	var b strings.Builder
	err := report.Write(&b, m.paneFormat, report.Job{
		JobID:    s.JobID,
		State:    s.State.String(),
		Elapsed:  s.Elapsed(),
		Done:     p.Done,
		Expected: p.Expected,
		Summary:  s.Summary(),
	})
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not render summary: %v", err))
	}
	return b.String()
}

func (m *model) suiteView() string {
	if m.suiteErr != nil {
		return errorStyle.Render(fmt.Sprintf("Could not load suite: %v", m.suiteErr))
	}
	var b strings.Builder
	if err := report.WriteSuite(&b, m.paneFormat, m.suite); err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not render suite: %v", err))
	}
	return b.String()
}

// detailView renders one result: identity, verdict, texts and either the
// variant breakdown or the full response.
func (m *model) detailView() string {
	r, err := m.session().Store.At(m.detail)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	width := max(20, m.width-2)
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label) + "\n" + wrap.Render(value) + "\n\n")
	}

	fmt.Fprintf(&b, "%s  %s\n", labelStyle.Render(r.DisplayName()), helpStyle.Render(fmt.Sprintf("#%d %s / %s / %s", m.detail, r.Model, r.CategoryLabel(), r.CaseID)))
	label := view.StatusLabel(r)
	verdict := styled(statusStyles, label, label)
	if r.Overridden() {
		verdict += helpStyle.Render(" (changed manually)")
	}
	if r.ErrorType != "" {
		verdict += " " + errorStyle.Render(r.ErrorType)
	}
	fmt.Fprintf(&b, "%s  TTFT %s ms  E2E %s ms\n\n", verdict, view.FormatLatency(r.TTFTMs), view.FormatLatency(r.E2EMs))

	field("Description", r.CaseDescription)
	field("Expected", r.ExpectedAnswer)
	field("Prompt", r.TestPrompt)
	field("Evaluation", r.EvalReason)
	field("Reason", r.Reason)

	if r.Kind() == results.KindVariant {
		b.WriteString(labelStyle.Render("Variants "+view.VariantBadge(r)) + variantThreshold(r.Variant) + "\n")
		b.WriteString(variantTable(r.Variant) + "\n")
		return b.String()
	}
	resp := r.FullResponse
	if resp == "" {
		resp = r.ResponsePreview
	}
	field("Response", resp)
	return b.String()
}

func variantThreshold(v *results.Variant) string {
	if v.PassRate == nil || v.Threshold == nil {
		return ""
	}
	return helpStyle.Render(fmt.Sprintf("  rate %.0f%%, threshold %.0f%%", *v.PassRate*100, *v.Threshold*100))
}

func variantTable(v *results.Variant) string {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Run", "Status", "TTFT ms", "E2E ms", "Response")
	for _, d := range v.Details {
		status := view.LabelFail
		switch {
		case d.Status == results.StatusSkipped:
			status = view.LabelSkip
		case d.Status == results.StatusError:
			status = view.LabelError
		case d.Passed:
			status = view.LabelPass
		}
		t.Row(
			fmt.Sprint(d.VariantIndex),
			fmt.Sprint(d.RunIndex),
			status,
			view.FormatLatency(d.TTFTMs),
			view.FormatLatency(d.E2EMs),
			view.Truncate(strings.ReplaceAll(d.Response, "\n", " "), 40),
		)
	}
	return t.Render()
}
