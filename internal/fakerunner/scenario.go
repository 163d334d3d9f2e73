// internal/fakerunner/scenario.go
package fakerunner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/runner"
)

// Case is one scripted test case.
type Case struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	CategoryID   string  `yaml:"category_id"`
	CategoryName string  `yaml:"category_name"`
	Modality     string  `yaml:"modality"`
	Weight       float64 `yaml:"weight"`
	Prompt       string  `yaml:"prompt"`
	Expected     string  `yaml:"expected"`
	// Variants turns the case into one aggregated variant result.
	Variants []string `yaml:"variants"`
	// VariantThreshold is the fraction of variants that must pass.
	VariantThreshold float64 `yaml:"variant_threshold"`
}

func (c Case) vision() bool { return c.Modality == "vision" }

// resultsPerModel is how many results the case produces for one model.
func (c Case) resultsPerModel(runs int) int {
	if len(c.Variants) > 0 {
		return 1
	}
	return runs
}

// Suite is a scripted suite catalog.
type Suite struct {
	Path  string            `yaml:"path"`
	Meta  results.SuiteMeta `yaml:"meta"`
	Cases []Case            `yaml:"cases"`
}

// Scenario scripts the fake runner.
type Scenario struct {
	Suite  Suite              `yaml:"suite"`
	Models []runner.ModelInfo `yaml:"models"`
	// Step is how many results become visible per status poll.
	Step int `yaml:"step"`
	// Fail and Errors map a model to case ids that fail or error.
	Fail   map[string][]string `yaml:"fail"`
	Errors map[string][]string `yaml:"errors"`
	// FailJobAfter fails the job once that many results are visible. Zero never fails.
	FailJobAfter int `yaml:"fail_job_after"`
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("could not read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Scenario{}, fmt.Errorf("could not parse scenario YAML: %w", err)
	}
	if len(s.Suite.Cases) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s has no cases", path)
	}
	return s.withDefaults(), nil
}

func (s Scenario) withDefaults() Scenario {
	if s.Step <= 0 {
		s.Step = 1
	}
	if s.Suite.Path == "" {
		s.Suite.Path = "bench/suite.yaml"
	}
	for i, c := range s.Suite.Cases {
		if c.Name == "" {
			s.Suite.Cases[i].Name = c.ID
		}
		if c.Modality == "" {
			s.Suite.Cases[i].Modality = "text"
		}
		if c.Weight == 0 {
			s.Suite.Cases[i].Weight = 3
		}
		if c.VariantThreshold == 0 {
			s.Suite.Cases[i].VariantThreshold = 0.66
		}
	}
	return s
}

// DefaultScenario is a small two-category suite with one text model and
// one vision model.
func DefaultScenario() Scenario {
	return Scenario{
		Suite: Suite{
			Path: "bench/suite.yaml",
			Meta: results.SuiteMeta{
				"category_threshold_default":    0.7,
				"category_pass_ratio_threshold": 0.5,
				"category_thresholds":           map[string]any{"reasoning": 0.5},
			},
			Cases: []Case{
				{ID: "r1", Name: "Syllogism", CategoryID: "reasoning", CategoryName: "Reasoning", Prompt: "All cats are animals...", Expected: "yes"},
				{ID: "r2", Name: "Arithmetic chain", CategoryID: "reasoning", CategoryName: "Reasoning", Prompt: "17 * 3 + 4", Expected: "55"},
				{ID: "r3", Name: "Paraphrase robustness", CategoryID: "reasoning", CategoryName: "Reasoning",
					Variants: []string{"What is 2+2?", "Add two and two.", "2 plus 2 equals?"}, Expected: "4"},
				{ID: "v1", Name: "Chart reading", CategoryID: "vision", CategoryName: "Vision", Modality: "vision", Prompt: "Which bar is tallest?", Expected: "B"},
			},
		},
		Models: []runner.ModelInfo{
			{ID: "qwen2.5-7b-instruct", Type: "llm", State: "loaded", Quantization: "Q4_K_M", Arch: "qwen2"},
			{ID: "qwen2-vl-7b-instruct", Type: "vlm", State: "not-loaded", Quantization: "Q4_K_M", Arch: "qwen2_vl"},
		},
		Step: 1,
		Fail: map[string][]string{"qwen2.5-7b-instruct": {"r2"}},
	}.withDefaults()
}
