// internal/fakerunner/plan.go
package fakerunner

import (
	"slices"
	"time"

	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/runner"
)

// plan builds every result a job will report, model by model.
func (s *Server) plan(req runner.StartRequest) []results.TestResult {
	var out []results.TestResult
	seq := 0
	stamp := s.now().UTC().Format(time.RFC3339)
	for _, model := range req.Models {
		vlm := s.isVLM(model)
		for _, cs := range s.scn.Suite.Cases {
			base := results.TestResult{
				Model:           model,
				CategoryID:      cs.CategoryID,
				CategoryName:    cs.CategoryName,
				CaseID:          cs.ID,
				CaseName:        cs.Name,
				CaseDescription: cs.Description,
				Timestamp:       stamp,
				TestPrompt:      cs.Prompt,
				ExpectedAnswer:  cs.Expected,
			}
			if cs.vision() && !vlm {
				for run := 0; run < cs.resultsPerModel(req.Runs); run++ {
					r := base
					r.RunIndex = run
					r.Status = results.StatusSkipped
					r.Reason = "model does not support vision"
					out = append(out, r)
				}
				continue
			}
			fail := slices.Contains(s.scn.Fail[model], cs.ID)
			if len(cs.Variants) > 0 {
				out = append(out, variantResult(base, cs, fail, &seq))
				continue
			}
			broken := slices.Contains(s.scn.Errors[model], cs.ID)
			for run := 0; run < req.Runs; run++ {
				r := base
				r.RunIndex = run
				switch {
				case broken:
					r.Status = results.StatusError
					r.ErrorType = "timeout"
					r.Reason = "request timed out"
				default:
					r.Status = results.StatusOK
					r.Passed = !fail
					r.TTFTMs, r.E2EMs = latencies(seq)
					r.ResponsePreview = answer(cs, fail)
					r.FullResponse = r.ResponsePreview
					r.EvalReason = evalReason(fail)
				}
				seq++
				out = append(out, r)
			}
		}
	}
	return out
}

func (s *Server) isVLM(model string) bool {
	for _, m := range s.scn.Models {
		if m.ID == model {
			return m.IsVLM()
		}
	}
	return false
}

// variantResult aggregates one run of every prompt variant. A failing case
// passes only its first variant.
func variantResult(base results.TestResult, cs Case, fail bool, seq *int) results.TestResult {
	r := base
	r.Status = results.StatusOK
	details := make([]results.VariantDetail, 0, len(cs.Variants))
	passCount := 0
	for i, prompt := range cs.Variants {
		ok := !fail || i == 0
		if ok {
			passCount++
		}
		ttft, e2e := latencies(*seq)
		*seq++
		details = append(details, results.VariantDetail{
			VariantIndex: i,
			Passed:       ok,
			Status:       results.StatusOK,
			TTFTMs:       ttft,
			E2EMs:        e2e,
			Prompt:       prompt,
			Response:     answer(cs, !ok),
			Expected:     cs.Expected,
			EvalReason:   evalReason(!ok),
		})
	}
	total := len(cs.Variants)
	rate := float64(passCount) / float64(total)
	threshold := cs.VariantThreshold
	r.Passed = rate >= threshold
	r.TTFTMs, r.E2EMs = details[0].TTFTMs, details[0].E2EMs
	r.EvalReason = evalReason(!r.Passed)
	r.Variant = &results.Variant{
		Count:      total,
		PassCount:  &passCount,
		TotalCount: &total,
		PassRate:   &rate,
		Threshold:  &threshold,
		Details:    details,
	}
	return r
}

func latencies(seq int) (*float64, *float64) {
	ttft := float64(40 + 7*(seq%13))
	e2e := ttft * 8
	return &ttft, &e2e
}

func answer(cs Case, wrong bool) string {
	if wrong {
		return "I am not sure."
	}
	return cs.Expected
}

func evalReason(fail bool) string {
	if fail {
		return "expected answer not found in response"
	}
	return "expected answer found in response"
}
