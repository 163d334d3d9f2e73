package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(v float64) *float64 { return &v }

func TestSummarize_PerModel(t *testing.T) {
	rs := []TestResult{
		{Model: "b", CategoryID: "x", Status: StatusOK, Passed: true, TTFTMs: ms(100), E2EMs: ms(1000)},
		{Model: "a", CategoryID: "x", Status: StatusOK, Passed: false, TTFTMs: ms(0)},
		{Model: "b", CategoryID: "x", Status: StatusOK, Passed: true, TTFTMs: ms(201), E2EMs: nil},
		{Model: "a", CategoryID: "x", Status: StatusSkipped},
	}
	s := Summarize(rs, nil, DefaultCriteria())

	require.Len(t, s.Models, 2)
	assert.Equal(t, "b", s.Models[0].Model, "first-seen model order")
	b := s.Models[0]
	assert.Equal(t, 2, b.Tests)
	assert.Equal(t, PassRate{Passed: 2, Valid: 2, Rate: 100}, b.PassRate)
	require.NotNil(t, b.TTFT.Mean)
	assert.Equal(t, float64(151), *b.TTFT.Mean)
	assert.Equal(t, 1, b.E2E.Samples)
	assert.True(t, b.Verdict)

	a := s.Models[1]
	assert.Zero(t, a.TTFT.Samples, "zero latencies are not measurements")
	assert.Nil(t, a.TTFT.Mean)
	assert.False(t, a.Verdict)
	assert.False(t, s.AllPassed())
	assert.Equal(t, PassRate{Passed: 2, Valid: 3, Rate: 67}, s.Overall)
}

func TestSummary_AllPassedEmpty(t *testing.T) {
	assert.False(t, Summary{}.AllPassed())
}

func TestLatencyOf_Percentiles(t *testing.T) {
	rs := []TestResult{{E2EMs: ms(40)}, {E2EMs: ms(10)}, {E2EMs: nil}, {E2EMs: ms(30)}, {E2EMs: ms(0)}, {E2EMs: ms(20)}}
	got := latencyOf(rs, func(r TestResult) *float64 { return r.E2EMs })

	assert.Equal(t, 4, got.Samples)
	require.NotNil(t, got.P50)
	assert.Equal(t, 25.0, *got.P50)
	assert.InDelta(t, 38.5, *got.P95, 1e-9)
	assert.Equal(t, 25.0, *got.Mean)
	assert.Equal(t, 40.0, *rs[0].E2EMs, "results are not touched")

	one := latencyOf(rs[:1], func(r TestResult) *float64 { return r.E2EMs })
	assert.Equal(t, 40.0, *one.P95)

	assert.Equal(t, LatencyStats{}, latencyOf(nil, func(r TestResult) *float64 { return r.E2EMs }))
}

func TestPercentile_Bounds(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.Equal(t, 10.0, percentile(sorted, 0))
	assert.Equal(t, 40.0, percentile(sorted, 100))
	assert.Equal(t, 25.0, percentile(sorted, 50))
}
