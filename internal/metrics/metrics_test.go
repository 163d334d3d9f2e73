package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObservePoll("ok")
	m.ObservePoll("ok")
	m.ObservePoll("error")
	m.ResultsIngested(3)
	m.ResultsIngested(0)
	m.ObserveOverride("ok")
	m.StaleResponse()

	out := scrape(t, m)
	assert.Contains(t, out, `benchdash_polls_total{result="ok"} 2`)
	assert.Contains(t, out, `benchdash_polls_total{result="error"} 1`)
	assert.Contains(t, out, "benchdash_results_ingested_total 3")
	assert.Contains(t, out, `benchdash_overrides_total{result="ok"} 1`)
	assert.Contains(t, out, "benchdash_stale_responses_total 1")
}

func TestMetrics_JobState(t *testing.T) {
	m := New(prometheus.NewRegistry())
	all := []string{"idle", "polling", "done"}

	m.SetJobState("polling", all)
	assert.Contains(t, scrape(t, m), `benchdash_job_state{state="polling"} 1`)

	m.SetJobState("done", all)
	out := scrape(t, m)
	assert.Contains(t, out, `benchdash_job_state{state="polling"} 0`)
	assert.Contains(t, out, `benchdash_job_state{state="done"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePoll("ok")
		m.ResultsIngested(1)
		m.ObserveOverride("ok")
		m.StaleResponse()
		m.SetJobState("idle", []string{"idle"})
	})
}
