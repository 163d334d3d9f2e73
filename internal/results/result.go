// internal/results/result.go
package results

import "encoding/json"

// Status is the execution status the Job Runner reports for a test result.
type Status string

const (
	// StatusOK marks a result that ran to completion and was evaluated.
	StatusOK Status = "ok"
	// StatusSkipped marks a result that was not executed (cancelled, unsupported modality).
	StatusSkipped Status = "skipped"
	// StatusError marks a result whose request failed.
	StatusError Status = "error"
)

// Kind discriminates standard results from aggregated variant results.
type Kind int

const (
	KindStandard Kind = iota
	KindVariant
)

func (k Kind) String() string {
	if k == KindVariant {
		return "variant"
	}
	return "standard"
}

// VariantDetail is one prompt variant executed as part of a variant test.
type VariantDetail struct {
	VariantIndex int      `json:"variant_index"`
	RunIndex     int      `json:"run_index"`
	Passed       bool     `json:"passed"`
	Status       Status   `json:"status"`
	TTFTMs       *float64 `json:"ttft_ms"`
	E2EMs        *float64 `json:"e2e_ms"`
	Prompt       string   `json:"prompt"`
	Response     string   `json:"response"`
	Expected     string   `json:"expected"`
	EvalReason   string   `json:"eval_reason"`
}

// Variant holds the aggregation fields only variant tests carry.
type Variant struct {
	Count      int
	PassCount  *int
	TotalCount *int
	PassRate   *float64
	Threshold  *float64
	Details    []VariantDetail
}

// TestResult is a single result record as reported by the Job Runner.
//
// Fields shared by every result live directly on the struct. Variant is
// non-nil exactly when the runner flagged the record as a variant test.
// Only Passed and HumanOverride change after the record is appended.
type TestResult struct {
	Model           string
	CategoryID      string
	CategoryName    string
	CaseID          string
	CaseName        string
	CaseDescription string
	RunIndex        int
	Timestamp       string

	Status    Status
	ErrorType string
	Passed    bool

	TTFTMs *float64
	E2EMs  *float64

	// HumanOverride is nil until an operator flips Passed by hand.
	HumanOverride *bool

	TestPrompt      string
	ResponsePreview string
	FullResponse    string
	EvalReason      string
	ExpectedAnswer  string
	Reason          string

	Variant *Variant
}

// Kind reports whether r is a standard or a variant result.
func (r TestResult) Kind() Kind {
	if r.Variant != nil {
		return KindVariant
	}
	return KindStandard
}

// IsValid reports whether r counts toward pass-rate denominators.
func (r TestResult) IsValid() bool { return r.Status == StatusOK }

// IsPass reports whether r counts as a pass.
func (r TestResult) IsPass() bool { return r.Status == StatusOK && r.Passed }

// DisplayName returns the case name, falling back to the case id.
func (r TestResult) DisplayName() string {
	if r.CaseName != "" {
		return r.CaseName
	}
	return r.CaseID
}

// CategoryKey returns the category id used for grouping.
func (r TestResult) CategoryKey() string {
	if r.CategoryID == "" {
		return UnknownCategory
	}
	return r.CategoryID
}

// CategoryLabel returns the category name, falling back to the grouping key.
func (r TestResult) CategoryLabel() string {
	if r.CategoryName != "" {
		return r.CategoryName
	}
	return r.CategoryKey()
}

// Overridden reports whether an operator changed the verdict.
func (r TestResult) Overridden() bool { return r.HumanOverride != nil }

// resultWire is the flat JSON record emitted by the Job Runner.
type resultWire struct {
	Timestamp       string   `json:"timestamp,omitempty"`
	Model           string   `json:"model"`
	CaseID          string   `json:"case_id"`
	CaseName        string   `json:"case_name,omitempty"`
	CaseDescription string   `json:"case_description,omitempty"`
	CategoryID      string   `json:"category_id"`
	CategoryName    string   `json:"category_name,omitempty"`
	RunIndex        int      `json:"run_index"`
	Status          Status   `json:"status"`
	ErrorType       string   `json:"error_type,omitempty"`
	TTFTMs          *float64 `json:"ttft_ms"`
	E2EMs           *float64 `json:"e2e_ms"`
	Passed          bool     `json:"passed"`
	HumanOverride   *bool    `json:"human_override"`
	EvalReason      string   `json:"eval_reason,omitempty"`
	ExpectedAnswer  string   `json:"expected_answer,omitempty"`
	TestPrompt      string   `json:"test_prompt,omitempty"`
	ResponsePreview string   `json:"response_preview,omitempty"`
	FullResponse    string   `json:"full_response,omitempty"`
	Reason          string   `json:"reason,omitempty"`

	IsVariantTest     bool            `json:"is_variant_test,omitempty"`
	VariantCount      int             `json:"variant_count,omitempty"`
	VariantPassCount  *int            `json:"variant_pass_count,omitempty"`
	VariantTotalCount *int            `json:"variant_total_count,omitempty"`
	VariantPassRate   *float64        `json:"variant_pass_rate,omitempty"`
	VariantThreshold  *float64        `json:"variant_threshold,omitempty"`
	VariantDetails    []VariantDetail `json:"variant_details,omitempty"`
}

// UnmarshalJSON decodes the runner's flat record into the sum type.
func (r *TestResult) UnmarshalJSON(data []byte) error {
	var w resultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = TestResult{
		Model:           w.Model,
		CategoryID:      w.CategoryID,
		CategoryName:    w.CategoryName,
		CaseID:          w.CaseID,
		CaseName:        w.CaseName,
		CaseDescription: w.CaseDescription,
		RunIndex:        w.RunIndex,
		Timestamp:       w.Timestamp,
		Status:          w.Status,
		ErrorType:       w.ErrorType,
		Passed:          w.Passed,
		TTFTMs:          w.TTFTMs,
		E2EMs:           w.E2EMs,
		HumanOverride:   w.HumanOverride,
		TestPrompt:      w.TestPrompt,
		ResponsePreview: w.ResponsePreview,
		FullResponse:    w.FullResponse,
		EvalReason:      w.EvalReason,
		ExpectedAnswer:  w.ExpectedAnswer,
		Reason:          w.Reason,
	}
	if w.IsVariantTest {
		r.Variant = &Variant{
			Count:      w.VariantCount,
			PassCount:  w.VariantPassCount,
			TotalCount: w.VariantTotalCount,
			PassRate:   w.VariantPassRate,
			Threshold:  w.VariantThreshold,
			Details:    w.VariantDetails,
		}
	}
	return nil
}

// MarshalJSON encodes r back into the runner's flat record.
func (r TestResult) MarshalJSON() ([]byte, error) {
	w := resultWire{
		Timestamp:       r.Timestamp,
		Model:           r.Model,
		CaseID:          r.CaseID,
		CaseName:        r.CaseName,
		CaseDescription: r.CaseDescription,
		CategoryID:      r.CategoryID,
		CategoryName:    r.CategoryName,
		RunIndex:        r.RunIndex,
		Status:          r.Status,
		ErrorType:       r.ErrorType,
		TTFTMs:          r.TTFTMs,
		E2EMs:           r.E2EMs,
		Passed:          r.Passed,
		HumanOverride:   r.HumanOverride,
		EvalReason:      r.EvalReason,
		ExpectedAnswer:  r.ExpectedAnswer,
		TestPrompt:      r.TestPrompt,
		ResponsePreview: r.ResponsePreview,
		FullResponse:    r.FullResponse,
		Reason:          r.Reason,
	}
	if v := r.Variant; v != nil {
		w.IsVariantTest = true
		w.VariantCount = v.Count
		w.VariantPassCount = v.PassCount
		w.VariantTotalCount = v.TotalCount
		w.VariantPassRate = v.PassRate
		w.VariantThreshold = v.Threshold
		w.VariantDetails = v.Details
	}
	return json.Marshal(w)
}
