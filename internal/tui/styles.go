// internal/tui/styles.go
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/benchdash/internal/poller"
	"github.com/mwiater/benchdash/internal/view"
)

var (
	headerStyle   = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	inactiveTab   = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	labelStyle    = lipgloss.NewStyle().Bold(true)
	disabledStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)

	rateStyles = map[string]lipgloss.Style{
		view.RateGood: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		view.RateWarn: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		view.RateBad:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}

	statusStyles = map[string]lipgloss.Style{
		view.LabelPass:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		view.LabelFail:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		view.LabelSkip:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		view.LabelError: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}

	logStyles = map[poller.LogType]lipgloss.Style{
		poller.LogInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		poller.LogWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		poller.LogError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		poller.LogSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		poller.LogPlain:   lipgloss.NewStyle(),
	}

	stateStyles = map[poller.State]lipgloss.Style{
		poller.Starting:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		poller.Polling:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		poller.Done:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		poller.Failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		poller.Cancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
)

// styled renders s with the style found under key, or plain when none is.
func styled[K comparable](styles map[K]lipgloss.Style, key K, s string) string {
	if st, ok := styles[key]; ok {
		return st.Render(s)
	}
	return s
}
