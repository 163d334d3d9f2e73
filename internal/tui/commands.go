// internal/tui/commands.go
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/mwiater/benchdash/internal/poller"
	"github.com/mwiater/benchdash/internal/runner"
)

// Client is everything the dashboard asks of the Job Runner.
type Client interface {
	poller.JobRunner
	Suite(ctx context.Context, suitePath string) (runner.Suite, error)
	Models(ctx context.Context, modelBaseURL string) ([]runner.ModelInfo, error)
}

// catalogMsg carries the suite catalog and the model list, loaded together.
type catalogMsg struct {
	suite     runner.Suite
	suiteErr  error
	models    []runner.ModelInfo
	modelsErr error
}

// startedMsg is the outcome of a start request.
type startedMsg struct {
	resp runner.StartResponse
	err  error
}

// pollTickMsg asks for the next status of jobID.
type pollTickMsg struct{ jobID string }

// statusMsg is one status snapshot for jobID.
type statusMsg struct {
	jobID  string
	status runner.Status
	err    error
}

// cancelMsg is the outcome of a cancel request.
type cancelMsg struct {
	jobID string
	err   error
}

// overrideMsg is the runner's answer to an override.
type overrideMsg struct {
	jobID  string
	index  int
	passed bool
	resp   runner.OverrideResponse
	err    error
}

// clockMsg redraws the elapsed timer of jobID.
type clockMsg struct {
	jobID string
	at    time.Time
}

// loadCatalogCmd fetches the suite catalog and the model list concurrently.
// Each half fails on its own.
func loadCatalogCmd(c Client, suitePath, modelBaseURL string) tea.Cmd {
	return func() tea.Msg {
		var (
			msg catalogMsg
			g   errgroup.Group
		)
		ctx := context.Background()
		g.Go(func() error {
			msg.suite, msg.suiteErr = c.Suite(ctx, suitePath)
			return nil
		})
		g.Go(func() error {
			msg.models, msg.modelsErr = c.Models(ctx, modelBaseURL)
			return nil
		})
		_ = g.Wait()
		return msg
	}
}

func startCmd(c Client, req runner.StartRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := c.Start(context.Background(), req)
		return startedMsg{resp: resp, err: err}
	}
}

// pollTickCmd waits one interval before the next poll of jobID.
func pollTickCmd(d time.Duration, jobID string) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return pollTickMsg{jobID: jobID}
	})
}

// fetchCmd requests the status of jobID. The id is captured so a late answer
// can be told apart from the current job's.
func fetchCmd(p *poller.Poller, jobID string) tea.Cmd {
	return func() tea.Msg {
		st, err := p.Fetch(context.Background(), jobID)
		return statusMsg{jobID: jobID, status: st, err: err}
	}
}

func cancelCmd(c Client, jobID string) tea.Cmd {
	return func() tea.Msg {
		return cancelMsg{jobID: jobID, err: c.Cancel(context.Background(), jobID)}
	}
}

func overrideCmd(c Client, jobID string, index int, passed bool) tea.Cmd {
	return func() tea.Msg {
		resp, err := c.Override(context.Background(), jobID, index, passed)
		return overrideMsg{jobID: jobID, index: index, passed: passed, resp: resp, err: err}
	}
}

func clockCmd(jobID string) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg{jobID: jobID, at: t}
	})
}
