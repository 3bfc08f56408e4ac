// Package scan implements the concurrent polling core: round scheduling,
// worker execution, session accounting, and the pause-on-match gate protocol.
package scan

import (
	"context"
	"time"

	"github.com/solvik/vanityscan/internal/rules"
)

// OutcomeKind tags the result of a single worker invocation.
type OutcomeKind string

// Supported outcome kinds.
const (
	OutcomeNoMatch        OutcomeKind = "no_match"
	OutcomeMatch          OutcomeKind = "match"
	OutcomeTransientError OutcomeKind = "transient_error"
)

// Outcome is the typed result of one query-then-classify cycle. It is
// produced once per worker invocation and consumed exactly once by the
// scheduler.
type Outcome struct {
	Kind      OutcomeKind
	Candidate string
	Result    rules.Result
	// RawPayload carries the full remote response for a match so the
	// operator can follow up manually.
	RawPayload []byte
	// Err holds the underlying failure for transient outcomes. It is
	// diagnostic only and never surfaced to the operator individually.
	Err      error
	Duration time.Duration
}

// Decision is the operator's verdict at the gate.
type Decision string

// Supported gate decisions.
const (
	DecisionContinue Decision = "continue"
	DecisionStop     Decision = "stop"
)

// Source fetches one candidate from the remote inventory. Implementations
// own connection pooling, transport-level retry, and the per-call timeout.
// A call that produces no candidate returns an error.
type Source interface {
	FetchCandidate(ctx context.Context) (candidate string, raw []byte, err error)
}

// Gate presents a match to the operator and blocks until a decision is made.
// An unbounded wait is expected; the scheduler suspends for its duration.
type Gate interface {
	Present(ctx context.Context, outcome Outcome) (Decision, error)
}

// Reporter consumes outcome events to render scan progress. Implementations
// must be safe for concurrent calls.
type Reporter interface {
	OnOutcome(outcome Outcome, snap Snapshot)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces correlation IDs for outbound calls.
type IDGenerator interface {
	NewID() (string, error)
}
