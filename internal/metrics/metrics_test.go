package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	if scanAttemptsTotal == nil || scanRoundsTotal == nil ||
		scanGateDecisionsTotal == nil || scanActiveWorkers == nil ||
		scanAttemptDurationSecs == nil || queryRetriesTotal == nil ||
		httpRequestsTotal == nil || httpRequestDurationSecs == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveAttempt(t *testing.T) {
	Init()

	before := testutil.ToFloat64(scanAttemptsTotal.WithLabelValues("match"))
	ObserveAttempt("match", 150*time.Millisecond)
	after := testutil.ToFloat64(scanAttemptsTotal.WithLabelValues("match"))

	if after != before+1 {
		t.Errorf("Expected scan_attempts_total{kind=match} to grow by 1, got %f -> %f", before, after)
	}
	if val := testutil.CollectAndCount(scanAttemptDurationSecs); val <= 0 {
		t.Errorf("Expected scan_attempt_duration_seconds to be observed, got %d", val)
	}
}

func TestActiveWorkersGauge(t *testing.T) {
	Init()

	base := testutil.ToFloat64(scanActiveWorkers)
	IncActiveWorkers()
	IncActiveWorkers()
	if val := testutil.ToFloat64(scanActiveWorkers); val != base+2 {
		t.Errorf("Expected scan_active_workers to be %f, got %f", base+2, val)
	}
	DecActiveWorkers()
	DecActiveWorkers()
	if val := testutil.ToFloat64(scanActiveWorkers); val != base {
		t.Errorf("Expected scan_active_workers to return to %f, got %f", base, val)
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	Init()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/status", "200"))
	ObserveHTTPRequest("GET", "/status", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/status", "200"))

	if after != before+1 {
		t.Errorf("Expected http_requests_total for GET /status to grow by 1, got %f -> %f", before, after)
	}
	if val := testutil.CollectAndCount(httpRequestDurationSecs); val <= 0 {
		t.Errorf("Expected http_request_duration_seconds to be observed, got %d", val)
	}
}
