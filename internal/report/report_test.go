package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mwiater/benchdash/internal/results"
	"github.com/mwiater/benchdash/internal/runner"
)

func ms(v float64) *float64 { return &v }

func sampleJob() Job {
	c := results.PassCriteria{
		DefaultCategoryThreshold: 0.7,
		CategoryRatioThreshold:   0.5,
		CategoryThresholds:       map[string]float64{"A": 0.5, "B": 0.8},
	}
	rs := []results.TestResult{
		{Model: "m", CategoryID: "A", CategoryName: "Alpha", Status: results.StatusOK, Passed: true, TTFTMs: ms(100)},
		{Model: "m", CategoryID: "A", CategoryName: "Alpha", Status: results.StatusOK, Passed: true, TTFTMs: ms(200)},
		{Model: "m", CategoryID: "A", CategoryName: "Alpha", Status: results.StatusOK, Passed: true},
		{Model: "m", CategoryID: "A", CategoryName: "Alpha", Status: results.StatusOK, Passed: false},
		{Model: "m", CategoryID: "B", CategoryName: "Beta", Status: results.StatusOK, Passed: true},
		{Model: "m", CategoryID: "B", CategoryName: "Beta", Status: results.StatusOK, Passed: false},
	}
	order := results.CategoryOrder(nil, rs)
	return Job{
		JobID:    "job-1",
		State:    "done",
		Elapsed:  75 * time.Second,
		Done:     6,
		Expected: 6,
		Summary:  results.Summarize(rs, order, c),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Text, "TEXT": Text, "json": JSON, " yaml ": YAML, "markdown": Markdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text, sampleJob()))
	out := buf.String()

	assert.Contains(t, out, "Job job-1: done, 6/6 results in 01:15")
	assert.Contains(t, out, "67% (4/6)")
	assert.Contains(t, out, "1/2 (50%)")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "150", "average TTFT over measured values")
}

func TestWrite_TextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text, Job{JobID: "j", State: "polling"}))
	assert.Contains(t, buf.String(), "No results.")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sampleJob()))

	var doc jobDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Models, 1)
	m := doc.Models[0]
	assert.True(t, m.Passed)
	assert.Equal(t, 2, m.TotalCategories)
	assert.Equal(t, 1, m.PassedCategories)
	require.Len(t, m.Categories, 2)
	assert.Equal(t, "A", m.Categories[0].ID, "breakdown sorted by rate")
	assert.True(t, doc.AllPassed)
	assert.Equal(t, int64(75000), doc.ElapsedMs)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, YAML, sampleJob()))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "job-1", doc["job_id"])
	assert.Equal(t, true, doc["all_passed"])
}

func TestWriteSuite(t *testing.T) {
	s := runner.Suite{
		TotalTests: 2,
		SuitePath:  "bench/suite.yaml",
		Meta:       results.SuiteMeta{"category_thresholds": map[string]any{"vis": 0.9}},
		Categories: []runner.SuiteCategory{
			{ID: "vis", Name: "Vision", Tests: []runner.SuiteTest{{ID: "v1", Name: "Chart", Modality: "vision", Weight: 3}}},
			{ID: "txt", Name: "Text", Tests: []runner.SuiteTest{{ID: "t1", Name: "Sum", Modality: "text", Weight: 1}}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSuite(&buf, Text, s))
	out := buf.String()
	assert.Contains(t, out, "Suite bench/suite.yaml: 2 tests in 2 categories")
	assert.Contains(t, out, "VLM")
	assert.Contains(t, out, "90%")
	assert.Contains(t, out, "70%")

	buf.Reset()
	require.NoError(t, WriteSuite(&buf, YAML, s))
	assert.Contains(t, buf.String(), "total_tests: 2")
}

func TestWriteModels(t *testing.T) {
	var buf bytes.Buffer
	models := []runner.ModelInfo{{ID: "qwen-vl", Type: "vlm", State: "loaded"}}
	require.NoError(t, WriteModels(&buf, Text, models))
	assert.Contains(t, buf.String(), "qwen-vl")

	buf.Reset()
	require.NoError(t, WriteModels(&buf, JSON, models))
	assert.Contains(t, buf.String(), `"type": "vlm"`)
}
