// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "benchdash"

// Metrics instruments a job poller. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg prometheus.Gatherer

	pollsTotal     *prometheus.CounterVec
	resultsTotal   prometheus.Counter
	overridesTotal *prometheus.CounterVec
	staleTotal     prometheus.Counter
	jobState       *prometheus.GaugeVec
}

// New registers the poller metrics on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		pollsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "polls_total",
			Help:      "Count of status polls by result",
		}, []string{"result"}),
		resultsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "results_ingested_total",
			Help:      "Count of test results appended to the store",
		}),
		overridesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "overrides_total",
			Help:      "Count of manual verdict overrides by result",
		}, []string{"result"}),
		staleTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stale_responses_total",
			Help:      "Count of poll responses ignored as stale",
		}),
		jobState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "job_state",
			Help:      "1 for the poller's current state, 0 otherwise",
		}, []string{"state"}),
	}
}

// ObservePoll counts one poll with result "ok" or "error".
func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.pollsTotal.WithLabelValues(result).Inc()
}

// ResultsIngested adds n appended results.
func (m *Metrics) ResultsIngested(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.resultsTotal.Add(float64(n))
}

// ObserveOverride counts one override with result "ok", "rejected" or "error".
func (m *Metrics) ObserveOverride(result string) {
	if m == nil {
		return
	}
	m.overridesTotal.WithLabelValues(result).Inc()
}

// StaleResponse counts a poll response older than the store.
func (m *Metrics) StaleResponse() {
	if m == nil {
		return
	}
	m.staleTotal.Inc()
}

// SetJobState marks current as the active state among all.
func (m *Metrics) SetJobState(current string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		m.jobState.WithLabelValues(s).Set(v)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
