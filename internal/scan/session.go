package scan

import (
	"sync/atomic"
	"time"
)

// Session tracks process-wide scan counters. All counters are atomic because
// multiple workers complete concurrently; a Session is shared by the
// scheduler, workers, and reporters.
type Session struct {
	clock     Clock
	roundSize int
	start     time.Time

	totalAttempts   atomic.Int64
	matches         atomic.Int64
	transientErrors atomic.Int64
	rounds          atomic.Int64
	roundCompleted  atomic.Int64
}

// Snapshot is a point-in-time copy of the session counters.
type Snapshot struct {
	TotalAttempts   int64
	Matches         int64
	TransientErrors int64
	Rounds          int64
	RoundCompleted  int64
	RoundSize       int
	Elapsed         time.Duration
}

// NewSession builds a Session for rounds of the given size.
func NewSession(clock Clock, roundSize int) *Session {
	return &Session{
		clock:     clock,
		roundSize: roundSize,
		start:     clock.Now(),
	}
}

// BeginRound advances the round counter and resets per-round progress.
func (s *Session) BeginRound() {
	s.rounds.Add(1)
	s.roundCompleted.Store(0)
}

// RecordOutcome folds one worker outcome into the counters.
func (s *Session) RecordOutcome(o Outcome) {
	s.totalAttempts.Add(1)
	s.roundCompleted.Add(1)
	switch o.Kind {
	case OutcomeMatch:
		s.matches.Add(1)
	case OutcomeTransientError:
		s.transientErrors.Add(1)
	}
}

// Snapshot returns a consistent-enough copy of the counters for rendering.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		TotalAttempts:   s.totalAttempts.Load(),
		Matches:         s.matches.Load(),
		TransientErrors: s.transientErrors.Load(),
		Rounds:          s.rounds.Load(),
		RoundCompleted:  s.roundCompleted.Load(),
		RoundSize:       s.roundSize,
		Elapsed:         s.clock.Now().Sub(s.start),
	}
}
