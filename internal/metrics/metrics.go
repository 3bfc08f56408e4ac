// Package metrics exposes Prometheus collectors for the scanner.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scanAttemptsTotal       *prometheus.CounterVec
	scanRoundsTotal         prometheus.Counter
	scanGateDecisionsTotal  *prometheus.CounterVec
	scanActiveWorkers       prometheus.Gauge
	scanAttemptDurationSecs *prometheus.HistogramVec
	queryRetriesTotal       prometheus.Counter
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDurationSecs *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times; every observe helper calls it so collectors exist before first use.
func Init() {
	once.Do(func() {
		scanAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scan_attempts_total",
				Help: "Total worker attempts, labeled by outcome kind.",
			},
			[]string{"kind"},
		)

		scanRoundsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scan_rounds_total",
				Help: "Total scan rounds dispatched.",
			},
		)

		scanGateDecisionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scan_gate_decisions_total",
				Help: "Operator decisions taken at the match gate.",
			},
			[]string{"decision"},
		)

		scanActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scan_active_workers",
				Help: "Number of workers currently executing a query cycle.",
			},
		)

		scanAttemptDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scan_attempt_duration_seconds",
				Help:    "Histogram of worker cycle latencies, labeled by outcome kind.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"kind"},
		)

		queryRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "query_retries_total",
				Help: "Total transport-level retries against the inventory endpoint.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total requests handled by the status server.",
			},
			[]string{"method", "route", "status"},
		)

		httpRequestDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of status server request latencies.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveAttempt records one completed worker cycle.
func ObserveAttempt(kind string, duration time.Duration) {
	Init()
	scanAttemptsTotal.WithLabelValues(kind).Inc()
	scanAttemptDurationSecs.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveRound increments the round counter.
func ObserveRound() {
	Init()
	scanRoundsTotal.Inc()
}

// ObserveGateDecision records the operator's decision at the gate.
func ObserveGateDecision(decision string) {
	Init()
	scanGateDecisionsTotal.WithLabelValues(decision).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	Init()
	scanActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	Init()
	scanActiveWorkers.Dec()
}

// ObserveQueryRetry increments the transport retry counter.
func ObserveQueryRetry() {
	Init()
	queryRetriesTotal.Inc()
}

// ObserveHTTPRequest records one handled status server request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDurationSecs.WithLabelValues(method, route).Observe(duration.Seconds())
}
