// Package progress renders scan progress for the operator.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/solvik/vanityscan/internal/scan"
)

// Terminal renders a single updating status line on a terminal. Writes are
// serialized so concurrent worker completions cannot tear the line, and the
// whole reporter can be suppressed while the gate holds the screen.
type Terminal struct {
	mu         sync.Mutex
	out        io.Writer
	isTerminal bool
	suppressed atomic.Bool
}

// NewTerminal builds a Terminal writing to out. The status line is only
// rendered when out is a real terminal; otherwise the reporter stays quiet
// and structured logs carry the progress.
func NewTerminal(out io.Writer) *Terminal {
	isTerminal := false
	if f, ok := out.(*os.File); ok {
		isTerminal = term.IsTerminal(int(f.Fd()))
	}
	return &Terminal{out: out, isTerminal: isTerminal}
}

// OnOutcome implements scan.Reporter.
func (t *Terminal) OnOutcome(_ scan.Outcome, snap scan.Snapshot) {
	if t.suppressed.Load() || !t.isTerminal {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\r[*] scanning... total: %d | round %d: %d/%d | matches: %d | errors: %d",
		snap.TotalAttempts,
		snap.Rounds,
		snap.RoundCompleted,
		snap.RoundSize,
		snap.Matches,
		snap.TransientErrors,
	)
}

// Suppress halts status-line output until Resume. The current line is
// terminated so subsequent output starts clean.
func (t *Terminal) Suppress() {
	if t.suppressed.Swap(true) {
		return
	}
	if !t.isTerminal {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out)
}

// Resume re-enables status-line output.
func (t *Terminal) Resume() {
	t.suppressed.Store(false)
}

// Multi fans one outcome out to several reporters.
type Multi []scan.Reporter

// OnOutcome implements scan.Reporter.
func (m Multi) OnOutcome(outcome scan.Outcome, snap scan.Snapshot) {
	for _, r := range m {
		if r != nil {
			r.OnOutcome(outcome, snap)
		}
	}
}
