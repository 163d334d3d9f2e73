// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mwiater/benchdash/internal/metrics"
	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/runner"
)

// DefaultInterval is the status poll cadence.
const DefaultInterval = 800 * time.Millisecond

// cancelTimeout bounds the cancel request sent when Run's context ends.
const cancelTimeout = 5 * time.Second

// JobRunner is the part of the runner client the poller needs.
type JobRunner interface {
	Start(ctx context.Context, req runner.StartRequest) (runner.StartResponse, error)
	Status(ctx context.Context, jobID string) (runner.Status, error)
	Cancel(ctx context.Context, jobID string) error
	Override(ctx context.Context, jobID string, index int, passed bool) (runner.OverrideResponse, error)
}

// Poller drives one Session through the job lifecycle. It is not safe for
// concurrent use; Fetch is the only method that may run off the owner's
// goroutine.
type Poller struct {
	client   JobRunner
	session  *Session
	interval time.Duration
	metrics  *metrics.Metrics
	debug    *log.Logger
	onTick   func(*Session)
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the headless poll interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMetrics instruments the poller.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

// WithDebugLog sends stale-response and dropped-message notes to l.
func WithDebugLog(l *log.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.debug = l
		}
	}
}

// WithTickHook is called by Run after every applied poll.
func WithTickHook(fn func(*Session)) Option {
	return func(p *Poller) { p.onTick = fn }
}

// New returns a poller over a fresh session.
func New(client JobRunner, opts ...Option) *Poller {
	p := &Poller{
		client:   client,
		session:  NewSession(),
		interval: DefaultInterval,
		debug:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.setState(Idle)
	return p
}

// Session returns the session the poller writes to.
func (p *Poller) Session() *Session { return p.session }

// Interval returns the poll interval.
func (p *Poller) Interval() time.Duration { return p.interval }

func (p *Poller) setState(s State) {
	p.session.State = s
	p.metrics.SetJobState(s.String(), StateNames())
}

// BeginStart resets the session and enters Starting. The caller then sends
// the start request and hands the outcome to CompleteStart.
func (p *Poller) BeginStart(req runner.StartRequest) error {
	if !p.session.State.CanStart() {
		return ErrJobActive
	}
	p.session.Reset()
	p.setState(Starting)
	p.session.Log(LogInfo, fmt.Sprintf("benchmark started: %d models", len(req.Models)))
	return nil
}

// CompleteStart applies the start response. On failure the session returns
// to Idle and the error is returned wrapped.
func (p *Poller) CompleteStart(resp runner.StartResponse, err error) error {
	s := p.session
	if s.State != Starting {
		return ErrNotStarting
	}
	if err != nil {
		s.Log(LogError, fmt.Sprintf("start failed: %v", err))
		p.setState(Idle)
		return fmt.Errorf("start job: %w", err)
	}
	s.JobID = resp.JobID
	s.setExpected(resp.ExpectedTotal)
	s.StartedAt = s.now()
	p.setState(Polling)
	if s.ExpectedTotal > 0 {
		s.Log(LogInfo, fmt.Sprintf("job %s accepted: %d results expected", resp.JobID, s.ExpectedTotal))
	} else {
		s.Log(LogInfo, fmt.Sprintf("job %s accepted", resp.JobID))
	}
	return nil
}

// Start runs BeginStart, the start request and CompleteStart in one call.
func (p *Poller) Start(ctx context.Context, req runner.StartRequest) error {
	if err := p.BeginStart(req); err != nil {
		return err
	}
	resp, err := p.client.Start(ctx, req)
	return p.CompleteStart(resp, err)
}

// Fetch requests the status of jobID. It touches no session state.
func (p *Poller) Fetch(ctx context.Context, jobID string) (runner.Status, error) {
	return p.client.Status(ctx, jobID)
}

// Apply merges a status response for jobID into the session and reports
// whether polling should continue. Transport and server errors are logged and
// leave the state unchanged.
func (p *Poller) Apply(jobID string, st runner.Status, err error) bool {
	s := p.session
	if jobID != s.JobID {
		p.debug.Printf("dropping status for job %q (current %q)", jobID, s.JobID)
		p.metrics.StaleResponse()
		return false
	}
	if err != nil {
		p.metrics.ObservePoll("error")
		s.Log(LogError, fmt.Sprintf("poll failed: %v", err))
		return s.State == Polling
	}
	p.metrics.ObservePoll("ok")

	s.setExpected(st.ExpectedTotal)
	if st.SuiteMeta != nil {
		s.SuiteMeta = st.SuiteMeta
		s.invalidate()
	}
	if st.SuitePath != "" && st.SuitePath != s.SuitePath {
		s.SuitePath = st.SuitePath
		s.invalidate()
	}
	s.mergeServerLogs(st.Logs)

	if len(st.Results) < s.Store.Len() {
		p.debug.Printf("stale status for job %s: %d results, have %d", jobID, len(st.Results), s.Store.Len())
		p.metrics.StaleResponse()
	}
	p.metrics.ResultsIngested(s.Store.Append(st.Results))

	if s.State == Polling && st.Status.Terminal() {
		s.FinishedAt = s.now()
		switch st.Status {
		case runner.JobDone:
			p.setState(Done)
			s.Log(LogSuccess, "benchmark complete")
		case runner.JobCancelled:
			p.setState(Cancelled)
			s.Log(LogWarn, "benchmark cancelled")
		default:
			p.setState(Failed)
			s.Log(LogError, "benchmark failed")
		}
		s.invalidate()
	}
	return s.State == Polling
}

// Poll fetches and applies one status snapshot.
func (p *Poller) Poll(ctx context.Context) bool {
	if p.session.State != Polling {
		return false
	}
	id := p.session.JobID
	st, err := p.Fetch(ctx, id)
	return p.Apply(id, st, err)
}

// MarkCancelled moves a polling session to Cancelled and returns the job id
// the cancel request should target.
func (p *Poller) MarkCancelled() (string, error) {
	s := p.session
	if s.JobID == "" {
		return "", ErrNoJob
	}
	if s.State != Polling {
		return "", ErrNotPolling
	}
	p.setState(Cancelled)
	s.FinishedAt = s.now()
	s.Log(LogWarn, "cancelled (runner may still be stopping)")
	s.invalidate()
	return s.JobID, nil
}

// CancelFailed records a failed cancel request. The local state stays Cancelled.
func (p *Poller) CancelFailed(err error) {
	p.session.Log(LogError, fmt.Sprintf("cancel request failed: %v", err))
}

// Cancel stops polling and asks the runner to stop the job.
func (p *Poller) Cancel(ctx context.Context) error {
	id, err := p.MarkCancelled()
	if err != nil {
		return err
	}
	if err := p.client.Cancel(ctx, id); err != nil {
		p.CancelFailed(err)
		return fmt.Errorf("cancel job %s: %w", id, err)
	}
	return nil
}

// CheckOverride validates an override before any request is sent and returns
// the job id it targets.
func (p *Poller) CheckOverride(index int) (string, error) {
	s := p.session
	if s.JobID == "" {
		return "", ErrNoJob
	}
	if index < 0 || index >= s.Store.Len() {
		return "", &results.IndexError{Index: index, Len: s.Store.Len()}
	}
	return s.JobID, nil
}

// ApplyOverride applies the runner's answer to an override of index.
func (p *Poller) ApplyOverride(jobID string, index int, passed bool, resp runner.OverrideResponse, err error) error {
	s := p.session
	if jobID != s.JobID {
		p.debug.Printf("dropping override answer for job %q (current %q)", jobID, s.JobID)
		return nil
	}
	if err != nil {
		p.metrics.ObserveOverride("error")
		s.Log(LogError, fmt.Sprintf("override failed: %v", err))
		return fmt.Errorf("override result %d: %w", index, err)
	}
	if !resp.Success {
		p.metrics.ObserveOverride("rejected")
		msg := resp.Error
		if msg == "" {
			msg = "rejected by runner"
		}
		s.Log(LogError, fmt.Sprintf("override failed: %s", msg))
		return fmt.Errorf("override result %d: %w", index, &runner.ServerError{StatusCode: 200, Message: msg})
	}
	if err := s.Store.Override(index, passed); err != nil {
		p.metrics.ObserveOverride("error")
		s.Log(LogError, fmt.Sprintf("override failed: %v", err))
		return err
	}
	p.metrics.ObserveOverride("ok")
	msg := resp.Message
	if msg == "" {
		verdict := "fail"
		if passed {
			verdict = "pass"
		}
		msg = fmt.Sprintf("result %d marked %s", index, verdict)
	}
	s.Log(LogInfo, msg)
	return nil
}

// Override flips the verdict of one result on the runner and locally.
func (p *Poller) Override(ctx context.Context, index int, passed bool) error {
	id, err := p.CheckOverride(index)
	if err != nil {
		return err
	}
	resp, err := p.client.Override(ctx, id, index, passed)
	return p.ApplyOverride(id, index, passed, resp, err)
}

// Run polls at the configured interval until the job ends or ctx is done.
// When ctx ends first the job is cancelled on the runner.
func (p *Poller) Run(ctx context.Context) error {
	if p.session.State != Polling {
		return ErrNotPolling
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
			err := p.Cancel(cctx)
			cancel()
			if err != nil && !errors.Is(err, ErrNotPolling) {
				p.debug.Printf("cancel on shutdown: %v", err)
			}
			return ctx.Err()
		case <-ticker.C:
			more := p.Poll(ctx)
			if p.onTick != nil {
				p.onTick(p.session)
			}
			if !more {
				return nil
			}
		}
	}
}
