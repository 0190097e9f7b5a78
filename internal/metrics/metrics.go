package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for finished executions
const (
	OutcomeCompleted   = "completed"
	OutcomeUnsupported = "unsupported_language"
	OutcomeSubmission  = "submission_failed"
	OutcomeTimeout     = "timeout"
	OutcomeCanceled    = "canceled"
	OutcomeError       = "error"
)

// Metrics holds the proxy's prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	executions    *prometheus.CounterVec
	pollAttempts  prometheus.Histogram
	judgeRequests *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "judgeproxy",
			Name:      "executions_total",
			Help:      "Finished executions by outcome.",
		}, []string{"outcome"}),
		pollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "judgeproxy",
			Name:      "poll_attempts",
			Help:      "Poll attempts spent per execution.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 30},
		}),
		judgeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "judgeproxy",
			Name:      "judge_requests_total",
			Help:      "Requests sent to the judge by operation and result.",
		}, []string{"operation", "result"}),
	}

	m.registry.MustRegister(
		m.executions,
		m.pollAttempts,
		m.judgeRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Execution records a finished execution
func (m *Metrics) Execution(outcome string) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(outcome).Inc()
}

// PollAttempts records how many poll attempts one execution used
func (m *Metrics) PollAttempts(n int) {
	if m == nil {
		return
	}
	m.pollAttempts.Observe(float64(n))
}

// JudgeRequest records one request to the judge
func (m *Metrics) JudgeRequest(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.judgeRequests.WithLabelValues(operation, result).Inc()
}

// ExecutionCount returns the counter for outcome, for tests
func (m *Metrics) ExecutionCount(outcome string) prometheus.Counter {
	return m.executions.WithLabelValues(outcome)
}

// JudgeRequestCount returns the counter for operation and result, for tests
func (m *Metrics) JudgeRequestCount(operation, result string) prometheus.Counter {
	return m.judgeRequests.WithLabelValues(operation, result)
}
