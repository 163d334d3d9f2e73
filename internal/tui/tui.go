// internal/tui/tui.go
package tui

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/benchdash/internal/config"
	"github.com/mwiater/benchdash/internal/poller"
	"github.com/mwiater/benchdash/internal/report"
	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/runner"
	"github.com/mwiater/benchdash/internal/view"
)

// viewState represents the current screen of the dashboard.
type viewState int

const (
	// viewLoading waits for the suite catalog and the model list.
	viewLoading viewState = iota
	// viewPicker lets the operator choose the models to benchmark.
	viewPicker
	// viewDashboard shows the job: results, logs, summary and suite tabs.
	viewDashboard
	// viewDetail shows one result and the override controls.
	viewDetail
)

// tab is a pane of the dashboard screen.
type tab int

const (
	tabResults tab = iota
	tabLogs
	tabSummary
	tabSuite
)

var tabNames = [...]string{"Results", "Logs", "Summary", "Suite"}

// Rows taken by the header, progress line, tab bar and footer.
const chromeHeight = 7

// modelItem is a selectable entry of the model picker.
type modelItem struct {
	info     runner.ModelInfo
	selected bool
}

func (i modelItem) Title() string {
	box := "[ ]"
	if i.selected {
		box = "[x]"
	}
	return box + " " + i.info.ID
}

func (i modelItem) Description() string {
	parts := []string{i.info.Type}
	if i.info.Loaded() {
		parts = append(parts, "loaded")
	} else if i.info.State != "" {
		parts = append(parts, i.info.State)
	}
	if i.info.Quantization != "" {
		parts = append(parts, i.info.Quantization)
	}
	if i.info.Arch != "" {
		parts = append(parts, i.info.Arch)
	}
	return strings.Join(parts, ", ")
}

func (i modelItem) FilterValue() string { return i.info.ID }

// model is the Bubble Tea model of the dashboard.
type model struct {
	cfg       config.Config
	client    Client
	poller    *poller.Poller
	projector *view.Projector

	state viewState
	tab   tab

	modelList list.Model
	table     table.Model
	pane      viewport.Model
	bar       progress.Model
	spinner   spinner.Model

	suite    runner.Suite
	suiteErr error
	// err is the model list failure; the picker cannot start without models.
	err error
	// flash is a one-line notice shown in the footer until the next key.
	flash string

	// paneFormat renders the summary and suite panes.
	paneFormat report.Format

	sort    view.SortState
	rows    []view.Row
	detail  int
	pending bool

	width, height int
}

// initialModel builds the dashboard wired to client.
func initialModel(cfg config.Config, client Client) (*model, error) {
	projector, err := view.NewProjector(cfg.Locale)
	if err != nil {
		return nil, err
	}
	opts := []poller.Option{poller.WithInterval(cfg.PollInterval)}
	if cfg.Debug {
		opts = append(opts, poller.WithDebugLog(log.Default()))
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ml := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	ml.Title = "Select models to benchmark"
	ml.KeyMap.Quit.SetEnabled(false)

	t := table.New(table.WithFocused(true))
	return &model{
		cfg:        cfg,
		client:     client,
		poller:     poller.New(client, opts...),
		projector:  projector,
		state:      viewLoading,
		modelList:  ml,
		table:      t,
		pane:       viewport.New(0, 0),
		bar:        progress.New(progress.WithDefaultGradient()),
		spinner:    s,
		paneFormat: report.Text,
		detail:     -1,
	}, nil
}

// Init starts the spinner and loads the catalog.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCatalogCmd(m.client, m.cfg.SuitePath, m.cfg.BaseURL))
}

func (m *model) session() *poller.Session { return m.poller.Session() }

// busy reports whether the spinner should run.
func (m *model) busy() bool {
	st := m.session().State
	return m.state == viewLoading || st == poller.Starting || st == poller.Polling
}

// Update is the central update function of the dashboard.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	wasBusy := m.busy()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch m.state {
		case viewPicker:
			cmd = m.updatePicker(msg)
		case viewDashboard:
			cmd = m.updateDashboard(msg)
		case viewDetail:
			cmd = m.updateDetail(msg)
		case viewLoading:
			if msg.String() == "q" {
				cmd = tea.Quit
			}
		}
		cmds = append(cmds, cmd)

	case catalogMsg:
		m.applyCatalog(msg)

	case startedMsg:
		if err := m.poller.CompleteStart(msg.resp, msg.err); err != nil {
			m.flash = err.Error()
		} else {
			id := m.session().JobID
			cmds = append(cmds, pollTickCmd(m.poller.Interval(), id), clockCmd(id))
		}
		m.refresh()

	case pollTickMsg:
		cmds = append(cmds, m.onPollTick(msg))

	case statusMsg:
		cmds = append(cmds, m.onStatus(msg))

	case cancelMsg:
		if msg.err != nil && msg.jobID == m.session().JobID {
			m.poller.CancelFailed(msg.err)
			m.refresh()
		}

	case overrideMsg:
		if msg.jobID == m.session().JobID {
			m.pending = false
		}
		if err := m.poller.ApplyOverride(msg.jobID, msg.index, msg.passed, msg.resp, msg.err); err != nil {
			m.flash = err.Error()
		}
		m.refresh()

	case clockMsg:
		cmds = append(cmds, m.onClock(msg))

	default:
		if m.state == viewPicker {
			var cmd tea.Cmd
			m.modelList, cmd = m.modelList.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.busy() {
		if !wasBusy {
			cmds = append(cmds, m.spinner.Tick)
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// onPollTick fetches the next status while the tick's job is still polled.
// Ticks of an earlier job die here.
func (m *model) onPollTick(msg pollTickMsg) tea.Cmd {
	s := m.session()
	if msg.jobID != s.JobID || s.State != poller.Polling {
		return nil
	}
	return fetchCmd(m.poller, msg.jobID)
}

// onStatus merges a snapshot and re-arms the poll tick while polling goes on.
func (m *model) onStatus(msg statusMsg) tea.Cmd {
	more := m.poller.Apply(msg.jobID, msg.status, msg.err)
	m.refresh()
	if !more {
		return nil
	}
	return pollTickCmd(m.poller.Interval(), msg.jobID)
}

// onClock redraws the elapsed timer and re-arms it while its job is polled.
// A clock left over from an earlier job stops here.
func (m *model) onClock(msg clockMsg) tea.Cmd {
	s := m.session()
	if msg.jobID != s.JobID {
		return nil
	}
	if m.tab == tabSummary {
		m.updatePane()
	}
	if s.State != poller.Polling {
		return nil
	}
	return clockCmd(msg.jobID)
}

func (m *model) resize(w, h int) {
	m.width, m.height = w, h
	m.modelList.SetSize(w-2, h-4)
	body := max(3, h-chromeHeight)
	m.table.SetWidth(w)
	m.table.SetHeight(body)
	m.pane.Width = w
	m.pane.Height = body
	m.bar.Width = max(10, min(60, w-30))
	m.refresh()
}

func (m *model) applyCatalog(msg catalogMsg) {
	m.suite, m.suiteErr = msg.suite, msg.suiteErr
	if msg.suiteErr == nil {
		m.session().SetCatalog(msg.suite)
	}
	m.err = msg.modelsErr

	want := make(map[string]bool, len(m.cfg.Models))
	for _, name := range m.cfg.Models {
		want[name] = true
	}
	items := make([]list.Item, 0, len(msg.models))
	for _, info := range msg.models {
		items = append(items, modelItem{info: info, selected: want[info.ID]})
	}
	m.modelList.SetItems(items)
	m.state = viewPicker
	m.refresh()
}

// selectedModels returns the checked model ids in list order.
func (m *model) selectedModels() []string {
	var names []string
	for _, it := range m.modelList.Items() {
		if mi, ok := it.(modelItem); ok && mi.selected {
			names = append(names, mi.info.ID)
		}
	}
	return names
}

// toggleSelected flips the item under the cursor. The list index is looked up
// by id since Index counts filtered items.
func (m *model) toggleSelected() tea.Cmd {
	cur, ok := m.modelList.SelectedItem().(modelItem)
	if !ok {
		return nil
	}
	for i, it := range m.modelList.Items() {
		if mi, ok := it.(modelItem); ok && mi.info.ID == cur.info.ID {
			mi.selected = !mi.selected
			return m.modelList.SetItem(i, mi)
		}
	}
	return nil
}

func (m *model) setAllSelected(on bool) {
	items := m.modelList.Items()
	for i, it := range items {
		if mi, ok := it.(modelItem); ok {
			mi.selected = on
			items[i] = mi
		}
	}
	m.modelList.SetItems(items)
}

func (m *model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	if m.modelList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.modelList, cmd = m.modelList.Update(msg)
		return cmd
	}
	m.flash = ""
	switch msg.String() {
	case "q":
		return tea.Quit
	case " ":
		return m.toggleSelected()
	case "a":
		m.setAllSelected(true)
		return nil
	case "c":
		m.setAllSelected(false)
		return nil
	case "r":
		m.state = viewLoading
		return loadCatalogCmd(m.client, m.cfg.SuitePath, m.cfg.BaseURL)
	case "esc":
		if m.session().JobID != "" {
			m.state = viewDashboard
		}
		return nil
	case "enter":
		return m.startJob()
	}
	var cmd tea.Cmd
	m.modelList, cmd = m.modelList.Update(msg)
	return cmd
}

func (m *model) startJob() tea.Cmd {
	names := m.selectedModels()
	if len(names) == 0 {
		m.flash = "select at least one model"
		return nil
	}
	req := m.cfg.StartRequest(names)
	if err := m.poller.BeginStart(req); err != nil {
		m.flash = err.Error()
		return nil
	}
	m.state = viewDashboard
	m.tab = tabResults
	m.detail = -1
	m.refresh()
	return startCmd(m.client, req)
}

func (m *model) updateDashboard(msg tea.KeyMsg) tea.Cmd {
	m.flash = ""
	switch key := msg.String(); key {
	case "q":
		return tea.Quit
	case "tab":
		m.setTab((m.tab + 1) % tab(len(tabNames)))
		return nil
	case "shift+tab":
		m.setTab((m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames)))
		return nil
	case "x":
		id, err := m.poller.MarkCancelled()
		if err != nil {
			m.flash = "nothing to cancel"
			return nil
		}
		m.refresh()
		return cancelCmd(m.client, id)
	case "n":
		if !m.session().State.CanStart() {
			m.flash = "a job is running; press x to cancel it first"
			return nil
		}
		m.state = viewPicker
		return nil
	case "1", "2", "3", "4", "5", "6":
		if m.tab != tabResults {
			break
		}
		cols := view.Columns()
		m.sort = m.sort.Click(cols[int(key[0]-'1')])
		m.refresh()
		return nil
	case "enter":
		if m.tab != tabResults {
			break
		}
		if idx := m.selectedIndex(); idx >= 0 {
			m.detail = idx
			m.state = viewDetail
			m.updatePane()
			m.pane.GotoTop()
		}
		return nil
	}

	var cmd tea.Cmd
	if m.tab == tabResults {
		m.table, cmd = m.table.Update(msg)
	} else {
		m.pane, cmd = m.pane.Update(msg)
	}
	return cmd
}

func (m *model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	m.flash = ""
	switch msg.String() {
	case "q":
		return tea.Quit
	case "esc", "backspace":
		m.state = viewDashboard
		m.detail = -1
		m.updatePane()
		return nil
	case "p":
		return m.override(true)
	case "f":
		return m.override(false)
	}
	var cmd tea.Cmd
	m.pane, cmd = m.pane.Update(msg)
	return cmd
}

// override sends a verdict change for the result on the detail screen. The
// control matching the current verdict is disabled.
func (m *model) override(passed bool) tea.Cmd {
	if m.pending {
		m.flash = "override in progress"
		return nil
	}
	r, err := m.session().Store.At(m.detail)
	if err != nil {
		m.flash = err.Error()
		return nil
	}
	if r.Passed == passed {
		return nil
	}
	id, err := m.poller.CheckOverride(m.detail)
	if err != nil {
		var ie *results.IndexError
		if errors.As(err, &ie) {
			m.flash = fmt.Sprintf("result %d is gone", ie.Index)
		} else {
			m.flash = err.Error()
		}
		return nil
	}
	m.pending = true
	return overrideCmd(m.client, id, m.detail, passed)
}

func (m *model) setTab(t tab) {
	m.tab = t
	m.updatePane()
	if t == tabLogs {
		m.pane.GotoBottom()
	} else {
		m.pane.GotoTop()
	}
}

// selectedIndex returns the store index under the table cursor, or -1.
func (m *model) selectedIndex() int {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return -1
	}
	return m.rows[c].Index
}

// refresh rebuilds the table projection and the current pane from the
// session. The row under the cursor keeps the cursor across re-sorts.
func (m *model) refresh() {
	all := m.session().Store.All()
	selected := m.selectedIndex()
	indexed, err := m.projector.Project(all, m.sort)
	if err != nil {
		m.flash = err.Error()
		indexed = view.Index(all)
	}
	m.rows = view.Rows(indexed)

	rows := make([]table.Row, len(m.rows))
	cursor := 0
	for i, r := range m.rows {
		rows[i] = table.Row(r.Cells())
		if r.Index == selected {
			cursor = i
		}
	}
	m.table.SetColumns(m.columns())
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
	m.updatePane()
}

// columns returns the table columns, with the sort arrow on the sorted one.
func (m *model) columns() []table.Column {
	titles := []string{"Model", "Category", "Test", "Status", "TTFT ms", "E2E ms"}
	widths := []int{26, 18, 30, 7, 9, 9}
	cols := make([]table.Column, len(titles))
	for i, c := range view.Columns() {
		title := fmt.Sprintf("%d %s", i+1, titles[i])
		if m.sort.Column == c {
			title += " " + m.sort.Direction.Arrow()
		}
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

// updatePane fills the scrollable pane for the current screen.
func (m *model) updatePane() {
	atBottom := m.pane.AtBottom()
	switch {
	case m.state == viewDetail:
		m.pane.SetContent(m.detailView())
		return
	case m.tab == tabLogs:
		m.pane.SetContent(m.logsView())
		if atBottom {
			m.pane.GotoBottom()
		}
	case m.tab == tabSummary:
		m.pane.SetContent(m.summaryView())
	case m.tab == tabSuite:
		m.pane.SetContent(m.suiteView())
	}
}

// Start runs the dashboard until the operator quits.
func Start(cfg config.Config) error {
	f, err := tea.LogToFile(cfg.LogFile, "benchdash")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	m, err := initialModel(cfg, cfg.Client())
	if err != nil {
		return err
	}
	log.Printf("dashboard started against %s", cfg.RunnerURL)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	if s := m.session(); s.State == poller.Polling {
		log.Printf("quit while job %s was still running", s.JobID)
	}
	return nil
}
