// internal/fakerunner/server.go
package fakerunner

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/runner"
)

// Server is a scripted Job Runner and Suite Catalog. Results are revealed a
// few at a time on every status poll, so tests advance the job by polling.
type Server struct {
	mu     sync.Mutex
	scn    Scenario
	jobs   map[string]*job
	engine *gin.Engine
	newID  func() string
	now    func() time.Time
}

type job struct {
	req       runner.StartRequest
	planned   []results.TestResult
	visible   int
	expected  int
	status    runner.JobStatus
	cancelled bool
	logs      []runner.LogEntry
}

func (j *job) log(t, msg string) { j.logs = append(j.logs, runner.LogEntry{Type: t, Message: msg}) }

// Option configures a Server.
type Option func(*Server)

// WithRequestLog writes one gin access-log line per request to w.
func WithRequestLog(w io.Writer) Option {
	return func(s *Server) { s.engine.Use(gin.LoggerWithWriter(w)) }
}

// New returns a server playing scn.
func New(scn Scenario, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		scn:    scn.withDefaults(),
		jobs:   map[string]*job{},
		engine: gin.New(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	s.engine.Use(gin.Recovery())
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler serving the runner API.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.GET("/models", s.handleModels)
		api.GET("/suite", s.handleSuite)
		api.POST("/bm/start", s.handleStart)
		api.GET("/bm/:id", s.handleStatus)
		api.POST("/bm/:id/cancel", s.handleCancel)
		api.POST("/bm/:id/override", s.handleOverride)
	}
}

func (s *Server) handleModels(c *gin.Context) {
	models := s.scn.Models
	if models == nil {
		models = []runner.ModelInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (s *Server) handleSuite(c *gin.Context) {
	path := c.DefaultQuery("suite_path", "bench/suite.yaml")
	if !results.SuitePathsMatch(path, s.scn.Suite.Path) {
		c.JSON(http.StatusOK, gin.H{
			"error":       fmt.Sprintf("suite not found: %s", path),
			"categories":  []any{},
			"total_tests": 0,
			"meta":        gin.H{},
			"suite_path":  path,
		})
		return
	}
	c.JSON(http.StatusOK, s.catalog())
}

// catalog groups cases by category in first-seen order.
func (s *Server) catalog() runner.Suite {
	suite := runner.Suite{
		TotalTests: len(s.scn.Suite.Cases),
		Meta:       s.scn.Suite.Meta,
		SuitePath:  s.scn.Suite.Path,
		Categories: []runner.SuiteCategory{},
	}
	if suite.Meta == nil {
		suite.Meta = results.SuiteMeta{}
	}
	index := map[string]int{}
	for _, cs := range s.scn.Suite.Cases {
		id := cs.CategoryID
		if id == "" {
			id = results.UnknownCategory
		}
		i, ok := index[id]
		if !ok {
			name := cs.CategoryName
			if name == "" {
				name = "Unknown"
			}
			i = len(suite.Categories)
			index[id] = i
			suite.Categories = append(suite.Categories, runner.SuiteCategory{ID: id, Name: name})
		}
		suite.Categories[i].Tests = append(suite.Categories[i].Tests, runner.SuiteTest{
			ID:          cs.ID,
			Name:        cs.Name,
			Description: cs.Description,
			Modality:    cs.Modality,
			Weight:      cs.Weight,
		})
	}
	return suite
}

func (s *Server) handleStart(c *gin.Context) {
	var req runner.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}
	if len(req.Models) == 0 {
		c.JSON(http.StatusOK, gin.H{"error": "no models selected"})
		return
	}
	if req.SuitePath != "" && !results.SuitePathsMatch(req.SuitePath, s.scn.Suite.Path) {
		c.JSON(http.StatusOK, gin.H{"error": fmt.Sprintf("could not load suite: %s", req.SuitePath)})
		return
	}
	if req.Runs < 1 {
		req.Runs = 1
	}

	j := &job{req: req, status: runner.JobRunning}
	j.planned = s.plan(req)
	j.expected = len(j.planned)
	j.log("info", "target models (sequential): "+strings.Join(req.Models, ", "))

	s.mu.Lock()
	id := s.newID()
	s.jobs[id] = j
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"job_id": id, "expected_total": j.expected})
}

func (s *Server) lookup(c *gin.Context) (*job, bool) {
	j, ok := s.jobs[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	}
	return j, ok
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.lookup(c)
	if !ok {
		return
	}
	s.advance(j)

	visible := slices.Clone(j.planned[:j.visible])
	c.JSON(http.StatusOK, gin.H{
		"status":         j.status,
		"cancelled":      j.cancelled,
		"logs":           slices.Clone(j.logs),
		"results":        visible,
		"expected_total": j.expected,
		"suite_path":     j.req.SuitePath,
		"suite_meta":     s.scn.Suite.Meta,
	})
}

// advance reveals the next step of results and settles the job status.
func (s *Server) advance(j *job) {
	if j.status != runner.JobRunning {
		return
	}
	if j.cancelled {
		j.status = runner.JobCancelled
		j.expected = j.visible
		j.log("warn", "benchmark cancelled")
		return
	}
	next := min(j.visible+s.scn.Step, len(j.planned))
	for _, r := range j.planned[j.visible:next] {
		j.log("log", resultLine(r))
	}
	j.visible = next

	switch {
	case s.scn.FailJobAfter > 0 && j.visible >= s.scn.FailJobAfter:
		j.status = runner.JobFailed
		j.log("error", "error: scripted failure")
	case j.visible == len(j.planned):
		j.status = runner.JobDone
		j.log("success", "benchmark complete")
	}
}

func resultLine(r results.TestResult) string {
	model := r.Model
	if len(model) > 20 {
		model = model[:20]
	}
	if r.Status == results.StatusSkipped {
		return fmt.Sprintf("[%s] [%s] %s: - (%s)", model, r.CategoryName, r.DisplayName(), r.Reason)
	}
	icon := "x"
	switch {
	case r.Status == results.StatusError:
		icon = "!"
	case r.Passed:
		icon = "o"
	}
	var ttft, e2e float64
	if r.TTFTMs != nil {
		ttft = *r.TTFTMs
	}
	if r.E2EMs != nil {
		e2e = *r.E2EMs
	}
	return fmt.Sprintf("[%s] [%s] %s #%d: %s (TTFT: %.0fms, E2E: %.0fms)", model, r.CategoryName, r.DisplayName(), r.RunIndex, icon, ttft, e2e)
}

func (s *Server) handleCancel(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.lookup(c)
	if !ok {
		return
	}
	j.cancelled = true
	j.log("warn", "cancel request accepted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleOverride(c *gin.Context) {
	var req runner.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.lookup(c)
	if !ok {
		return
	}
	if req.ResultIndex < 0 || req.ResultIndex >= j.visible {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result index"})
		return
	}
	r := &j.planned[req.ResultIndex]
	old := r.Passed
	passed := req.NewPassed
	r.Passed = passed
	r.HumanOverride = &passed

	action := "changed to fail"
	if passed {
		action = "changed to pass"
	}
	j.log("info", fmt.Sprintf("[override] %s: %s", r.DisplayName(), action))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "result " + action,
		"old_passed": old,
		"new_passed": passed,
	})
}
