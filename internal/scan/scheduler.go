package scan

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solvik/vanityscan/internal/metrics"
)

// Runner executes one worker cycle. Worker satisfies this interface; tests
// substitute fakes.
type Runner interface {
	RunOnce(ctx context.Context) Outcome
}

// SchedulerConfig controls round dispatch.
type SchedulerConfig struct {
	// Concurrency is the number of workers dispatched per round.
	Concurrency int
	// BatchDelay is the fixed pacing delay between rounds.
	BatchDelay time.Duration
}

// Scheduler drives the scan: it dispatches a bounded set of workers per
// round, folds their outcomes into the session in completion order, and owns
// the pause/resume protocol. On a match it invokes the gate synchronously
// and dispatches no new round until the operator decides.
type Scheduler struct {
	runner   Runner
	gate     Gate
	reporter Reporter
	session  *Session
	cfg      SchedulerConfig
	logger   *zap.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(
	runner Runner,
	gate Gate,
	reporter Reporter,
	session *Session,
	cfg SchedulerConfig,
	logger *zap.Logger,
) *Scheduler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		runner:   runner,
		gate:     gate,
		reporter: reporter,
		session:  session,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run loops over rounds until the operator stops the scan or the context is
// cancelled. It returns nil on an operator stop, the context error on
// cancellation, and the gate's error when the gate fails while deciding to
// stop; nothing a single worker does can end the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		matches := s.runRound(ctx)

		for _, match := range matches {
			decision, err := s.gate.Present(ctx, match)
			if err != nil {
				// A Stop decision stands even when the gate also failed.
				if decision == DecisionStop {
					s.logger.Warn("gate failed, stopping scan", zap.Error(err))
					metrics.ObserveGateDecision(string(decision))
					return err
				}
				s.logger.Warn("gate presentation failed, resuming scan", zap.Error(err))
				continue
			}
			metrics.ObserveGateDecision(string(decision))
			if decision == DecisionStop {
				s.logger.Info("operator stopped the scan",
					zap.Int64("total_attempts", s.session.Snapshot().TotalAttempts),
				)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.BatchDelay):
		}
	}
}

// runRound dispatches one batch of workers and drains every outcome, in
// completion order, before returning. All outcomes of the round are counted
// into the session even when a match occurs mid-round; matches are gated
// only after the round is fully accounted for.
func (s *Scheduler) runRound(ctx context.Context) []Outcome {
	s.session.BeginRound()
	metrics.ObserveRound()

	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan Outcome, s.cfg.Concurrency)
	g, gctx := errgroup.WithContext(roundCtx)
	for i := 0; i < s.cfg.Concurrency; i++ {
		g.Go(func() error {
			outcomes <- s.runner.RunOnce(gctx)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(outcomes)
	}()

	var matches []Outcome
	for outcome := range outcomes {
		s.session.RecordOutcome(outcome)
		if s.reporter != nil {
			s.reporter.OnOutcome(outcome, s.session.Snapshot())
		}
		if outcome.Kind == OutcomeMatch {
			matches = append(matches, outcome)
		}
	}
	return matches
}
