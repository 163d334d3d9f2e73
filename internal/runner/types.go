// internal/runner/types.go
package runner

import (
	"github.com/mwiater/benchdash/internal/results"
)

// JobStatus is the lifecycle status reported by the Job Runner.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobDone      JobStatus = "done"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the runner will not change the job any further.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobFailed || s == JobCancelled
}

// StartRequest is the body of POST /api/bm/start.
type StartRequest struct {
	BaseURL     string   `json:"base_url"`
	Models      []string `json:"models"`
	Runs        int      `json:"runs"`
	Warmup      int      `json:"warmup"`
	Timeout     float64  `json:"timeout"`
	SuitePath   string   `json:"suite_path"`
	UseLLMJudge bool     `json:"use_llm_judge"`
	// JudgeModel is sent as null when nil.
	JudgeModel *string `json:"judge_model"`
}

// StartResponse is the reply to a start request.
type StartResponse struct {
	JobID         string   `json:"job_id"`
	ExpectedTotal *float64 `json:"expected_total"`
	Error         string   `json:"error,omitempty"`
}

// LogEntry is one typed line of the server-side job log.
type LogEntry struct {
	Type    string `json:"type"`
	Message string `json:"msg"`
}

// Status is the full job snapshot returned on every poll.
type Status struct {
	Status        JobStatus            `json:"status"`
	Cancelled     bool                 `json:"cancelled"`
	ExpectedTotal *float64             `json:"expected_total"`
	Logs          []LogEntry           `json:"logs"`
	Results       []results.TestResult `json:"results"`
	SuiteMeta     results.SuiteMeta    `json:"suite_meta,omitempty"`
	SuitePath     string               `json:"suite_path,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// OverrideRequest is the body of POST /api/bm/{id}/override.
type OverrideRequest struct {
	ResultIndex int  `json:"result_index"`
	NewPassed   bool `json:"new_passed"`
}

// OverrideResponse is the reply to an override request.
type OverrideResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	OldPassed *bool  `json:"old_passed,omitempty"`
	NewPassed *bool  `json:"new_passed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SuiteTest describes one test case in the catalog.
type SuiteTest struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Modality    string  `json:"modality" yaml:"modality"`
	Weight      float64 `json:"weight" yaml:"weight"`
}

// IsVision reports whether the test needs a vision-capable model.
func (t SuiteTest) IsVision() bool { return t.Modality == "vision" }

// SuiteCategory groups catalog tests.
type SuiteCategory struct {
	ID    string      `json:"id" yaml:"id"`
	Name  string      `json:"name" yaml:"name"`
	Tests []SuiteTest `json:"tests" yaml:"tests"`
}

// Suite is the reply of GET /api/suite.
type Suite struct {
	TotalTests int               `json:"total_tests" yaml:"total_tests"`
	Categories []SuiteCategory   `json:"categories" yaml:"categories"`
	Meta       results.SuiteMeta `json:"meta" yaml:"meta"`
	SuitePath  string            `json:"suite_path" yaml:"suite_path"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Catalog returns the suite's categories in catalog order.
func (s Suite) Catalog() []results.Category {
	out := make([]results.Category, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, results.Category{ID: c.ID, Name: c.Name})
	}
	return out
}

// ModelInfo is one entry of GET /api/models.
type ModelInfo struct {
	ID           string `json:"id" yaml:"id"`
	Type         string `json:"type" yaml:"type"`
	State        string `json:"state" yaml:"state"`
	Quantization string `json:"quantization,omitempty" yaml:"quantization,omitempty"`
	Arch         string `json:"arch,omitempty" yaml:"arch,omitempty"`
}

// IsVLM reports whether the model accepts images.
func (m ModelInfo) IsVLM() bool { return m.Type == "vlm" }

// Loaded reports whether the model is resident on the inference server.
func (m ModelInfo) Loaded() bool { return m.State == "loaded" }

type modelsResponse struct {
	Models []ModelInfo `json:"models"`
	Error  string      `json:"error,omitempty"`
}
