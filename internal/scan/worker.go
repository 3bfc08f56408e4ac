package scan

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/solvik/vanityscan/internal/metrics"
	"github.com/solvik/vanityscan/internal/rules"
)

// Worker executes one query-then-classify cycle. The scheduler never sees an
// unhandled failure from a worker: anything unexpected becomes a transient
// outcome.
type Worker struct {
	source Source
	engine *rules.Engine
	clock  Clock
	logger *zap.Logger
}

// NewWorker constructs a Worker.
func NewWorker(source Source, engine *rules.Engine, clock Clock, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		source: source,
		engine: engine,
		clock:  clock,
		logger: logger,
	}
}

// RunOnce fetches one candidate, classifies it, and returns the outcome.
func (w *Worker) RunOnce(ctx context.Context) (outcome Outcome) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	start := w.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker panic recovered", zap.Any("panic", r))
			outcome = Outcome{
				Kind:     OutcomeTransientError,
				Err:      fmt.Errorf("worker panic: %v", r),
				Duration: w.clock.Now().Sub(start),
			}
		}
		metrics.ObserveAttempt(string(outcome.Kind), outcome.Duration)
	}()

	candidate, raw, err := w.source.FetchCandidate(ctx)
	if err != nil {
		w.logger.Debug("candidate fetch failed", zap.Error(err))
		return Outcome{
			Kind:     OutcomeTransientError,
			Err:      err,
			Duration: w.clock.Now().Sub(start),
		}
	}

	result := w.engine.Classify(candidate)
	dur := w.clock.Now().Sub(start)
	if result.Matched {
		w.logger.Debug("candidate matched",
			zap.String("candidate", candidate),
			zap.String("reason", result.Reason),
		)
		return Outcome{
			Kind:       OutcomeMatch,
			Candidate:  candidate,
			Result:     result,
			RawPayload: raw,
			Duration:   dur,
		}
	}
	return Outcome{
		Kind:      OutcomeNoMatch,
		Candidate: candidate,
		Result:    result,
		Duration:  dur,
	}
}
