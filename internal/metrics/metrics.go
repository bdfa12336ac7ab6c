// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adaptutor"

var (
	// Labels: type (question type), outcome (succeeded, degraded, failed).
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "evaluator",
		Name:      "evaluations_total",
		Help:      "Answer evaluations by question type and overall outcome",
	}, []string{"type", "outcome"})

	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "evaluator",
		Name:      "duration_seconds",
		Help:      "Wall time of one answer evaluation",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
	}, []string{"type"})

	// Labels: step (grader, judge, scheduler, audit), status.
	steps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "evaluator",
		Name:      "steps_total",
		Help:      "Best-effort evaluation steps by status",
	}, []string{"step", "status"})

	// Labels: result (passed, failed, error).
	testcases = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "judge",
		Name:      "testcases_total",
		Help:      "Code testcases executed by result",
	}, []string{"result"})

	// Labels: kind (strict, recovered, failed).
	graderParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "grader",
		Name:      "parses_total",
		Help:      "Grader replies by parse result",
	}, []string{"kind"})

	selected = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "selector",
		Name:      "questions_returned",
		Help:      "Questions returned per selection",
		Buckets:   []float64{0, 1, 2, 3},
	})

	// Labels: result (ok, conflict, error).
	masteryUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mastery",
		Name:      "updates_total",
		Help:      "Mastery scheduler writes by result",
	}, []string{"result"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code",
	}, []string{"method", "route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RecordEvaluation counts one finished evaluation.
func RecordEvaluation(qtype, outcome string, d time.Duration) {
	evaluations.WithLabelValues(qtype, outcome).Inc()
	evaluationDuration.WithLabelValues(qtype).Observe(d.Seconds())
}

// RecordStep counts the status of one best-effort step.
func RecordStep(step, status string) {
	steps.WithLabelValues(step, status).Inc()
}

// RecordTestcase counts one executed testcase.
func RecordTestcase(result string) {
	testcases.WithLabelValues(result).Inc()
}

// RecordGraderParse counts how a grader reply was parsed.
func RecordGraderParse(kind string) {
	graderParses.WithLabelValues(kind).Inc()
}

// RecordSelection observes how many questions a selection returned.
func RecordSelection(n int) {
	selected.Observe(float64(n))
}

// RecordMasteryUpdate counts one scheduler write attempt.
func RecordMasteryUpdate(result string) {
	masteryUpdates.WithLabelValues(result).Inc()
}

// RecordHTTPRequest counts one served request. route is the matched
// pattern, not the raw path.
func RecordHTTPRequest(method, route string, code int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
