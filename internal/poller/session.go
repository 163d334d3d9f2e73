// internal/poller/session.go
package poller

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/runner"
)

// LogType classifies a session log line.
type LogType string

const (
	LogInfo    LogType = "info"
	LogWarn    LogType = "warn"
	LogError   LogType = "error"
	LogSuccess LogType = "success"
	LogPlain   LogType = "log"
)

// LogLine is one entry of the operator-facing session log.
type LogLine struct {
	Time    time.Time
	Type    LogType
	Message string
}

// Progress is the completion of the current job.
type Progress struct {
	Done     int
	Expected int
	// Pct is min(100, round(Done/Expected*100)), 0 while Expected is unknown.
	Pct int
}

// ModelRate is the header pass rate of one model.
type ModelRate struct {
	Model string
	Rate  int
	Valid int
}

// Session is everything known about the current job. It is owned by a single
// writer: the poller in headless mode, the Bubble Tea update loop in the TUI.
type Session struct {
	ID            string
	JobID         string
	State         State
	ExpectedTotal int
	Store         *results.Store
	Logs          []LogLine

	// SuiteMeta and SuitePath are adopted from status responses.
	SuiteMeta results.SuiteMeta
	SuitePath string

	// Catalog is the last suite catalog loaded, with its own path and meta.
	Catalog     []results.Category
	CatalogPath string
	CatalogMeta results.SuiteMeta

	StartedAt  time.Time
	FinishedAt time.Time

	serverLogsSeen int

	summary        results.Summary
	summaryVersion uint64
	summaryValid   bool

	now func() time.Time
}

// NewSession returns an idle session with an empty store.
func NewSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		Store: results.NewStore(),
		now:   time.Now,
	}
}

// Reset clears all job state for a new job. The catalog is kept.
func (s *Session) Reset() {
	s.ID = uuid.NewString()
	s.JobID = ""
	s.State = Idle
	s.ExpectedTotal = 0
	s.Store.Reset()
	s.Logs = nil
	s.SuiteMeta = nil
	s.SuitePath = ""
	s.StartedAt = time.Time{}
	s.FinishedAt = time.Time{}
	s.serverLogsSeen = 0
	s.invalidate()
}

// Log appends a typed line to the session log.
func (s *Session) Log(t LogType, msg string) {
	s.Logs = append(s.Logs, LogLine{Time: s.now(), Type: t, Message: msg})
}

// SetCatalog records a loaded suite catalog.
func (s *Session) SetCatalog(suite runner.Suite) {
	s.Catalog = suite.Catalog()
	s.CatalogPath = suite.SuitePath
	s.CatalogMeta = suite.Meta
	s.invalidate()
}

// mergeServerLogs appends server log lines not seen yet. The server sends its
// whole log every time; lines are identified by position.
func (s *Session) mergeServerLogs(logs []runner.LogEntry) int {
	added := 0
	for i := s.serverLogsSeen; i < len(logs); i++ {
		t := LogType(logs[i].Type)
		if t == "" {
			t = LogPlain
		}
		s.Log(t, logs[i].Message)
		added++
	}
	if len(logs) > s.serverLogsSeen {
		s.serverLogsSeen = len(logs)
	}
	return added
}

func (s *Session) setExpected(v *float64) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return
	}
	s.ExpectedTotal = int(math.Round(*v))
}

// Criteria returns the pass criteria of the job's suite, falling back to the
// catalog meta before the first status arrives.
func (s *Session) Criteria() results.PassCriteria {
	if s.SuiteMeta != nil {
		return results.CriteriaFromMeta(s.SuiteMeta)
	}
	return results.CriteriaFromMeta(s.CatalogMeta)
}

// CategoryOrder returns the presented category order. The catalog order is
// used only when the catalog belongs to the job's suite.
func (s *Session) CategoryOrder() []results.Category {
	var catalog []results.Category
	if results.SuitePathsMatch(s.CatalogPath, s.SuitePath) {
		catalog = s.Catalog
	}
	return results.CategoryOrder(catalog, s.Store.All())
}

// Summary returns the aggregate over the store, recomputed only after the
// store or the criteria changed.
func (s *Session) Summary() results.Summary {
	if s.summaryValid && s.summaryVersion == s.Store.Version() {
		return s.summary
	}
	s.summary = results.Summarize(s.Store.All(), s.CategoryOrder(), s.Criteria())
	s.summaryVersion = s.Store.Version()
	s.summaryValid = true
	return s.summary
}

func (s *Session) invalidate() { s.summaryValid = false }

// Progress reports how many of the expected results have arrived.
func (s *Session) Progress() Progress {
	p := Progress{Done: s.Store.Len(), Expected: s.ExpectedTotal}
	if p.Expected > 0 {
		p.Pct = min(100, int(math.Round(float64(p.Done)/float64(p.Expected)*100)))
	}
	return p
}

// HeaderPassRates returns each model's pass rate in first-seen order.
func (s *Session) HeaderPassRates() []ModelRate {
	names, byModel := results.GroupByModel(s.Store.All())
	out := make([]ModelRate, 0, len(names))
	for _, name := range names {
		pr := results.ComputePassRate(byModel[name])
		out = append(out, ModelRate{Model: name, Rate: pr.Rate, Valid: pr.Valid})
	}
	return out
}

// Elapsed is the time since the job started, frozen once it ended.
func (s *Session) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := s.now()
	if !s.FinishedAt.IsZero() {
		end = s.FinishedAt
	}
	return end.Sub(s.StartedAt)
}
