// internal/poller/state.go
package poller

import "errors"

// State is the poller's view of the job lifecycle.
type State int

const (
	Idle State = iota
	Starting
	Polling
	Done
	Failed
	Cancelled
)

var stateNames = [...]string{"idle", "starting", "polling", "done", "failed", "cancelled"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the job has ended.
func (s State) Terminal() bool { return s == Done || s == Failed || s == Cancelled }

// CanStart reports whether a new job may be started from s.
func (s State) CanStart() bool { return s == Idle || s.Terminal() }

// StateNames lists every state label, for metrics.
func StateNames() []string { return stateNames[:] }

var (
	// ErrJobActive is returned when a start is requested while a job runs.
	ErrJobActive = errors.New("poller: a job is already active")
	// ErrNoJob is returned when an operation needs a job id and none is set.
	ErrNoJob = errors.New("poller: no job")
	// ErrNotPolling is returned when an operation requires the Polling state.
	ErrNotPolling = errors.New("poller: not polling")
	// ErrNotStarting is returned when a start completes without a pending start.
	ErrNotStarting = errors.New("poller: no start in progress")
)
