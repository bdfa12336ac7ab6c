package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEvaluation(t *testing.T) {
	before := testutil.ToFloat64(evaluations.WithLabelValues("mcq", "succeeded"))
	RecordEvaluation("mcq", "succeeded", 10*time.Millisecond)
	RecordEvaluation("mcq", "succeeded", 20*time.Millisecond)
	if got := testutil.ToFloat64(evaluations.WithLabelValues("mcq", "succeeded")); got != before+2 {
		t.Fatalf("expected %v, got %v", before+2, got)
	}
}

func TestRecordCounters(t *testing.T) {
	RecordStep("audit", "degraded")
	if got := testutil.ToFloat64(steps.WithLabelValues("audit", "degraded")); got < 1 {
		t.Fatalf("step not counted: %v", got)
	}

	RecordTestcase("passed")
	RecordTestcase("error")
	if got := testutil.ToFloat64(testcases.WithLabelValues("error")); got < 1 {
		t.Fatalf("testcase not counted: %v", got)
	}

	RecordGraderParse("recovered")
	if got := testutil.ToFloat64(graderParses.WithLabelValues("recovered")); got < 1 {
		t.Fatalf("parse not counted: %v", got)
	}

	RecordMasteryUpdate("conflict")
	if got := testutil.ToFloat64(masteryUpdates.WithLabelValues("conflict")); got < 1 {
		t.Fatalf("mastery update not counted: %v", got)
	}

	RecordHTTPRequest("GET", "/healthz", 200, time.Millisecond)
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/healthz", "200")); got < 1 {
		t.Fatalf("http request not counted: %v", got)
	}
}
