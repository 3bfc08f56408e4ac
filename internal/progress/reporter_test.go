package progress

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solvik/vanityscan/internal/scan"
)

// forceTerminal flips the terminal detection so buffer-backed tests exercise
// the rendering path.
func forceTerminal(t *Terminal) *Terminal {
	t.isTerminal = true
	return t
}

func TestTerminalRendersStatusLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reporter := forceTerminal(NewTerminal(&buf))

	reporter.OnOutcome(scan.Outcome{Kind: scan.OutcomeNoMatch}, scan.Snapshot{
		TotalAttempts:  7,
		Rounds:         2,
		RoundCompleted: 3,
		RoundSize:      10,
		Matches:        1,
		Elapsed:        time.Second,
	})

	out := buf.String()
	require.Contains(t, out, "\r")
	require.Contains(t, out, "total: 7")
	require.Contains(t, out, "round 2: 3/10")
	require.Contains(t, out, "matches: 1")
}

func TestTerminalSuppression(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reporter := forceTerminal(NewTerminal(&buf))

	reporter.Suppress()
	mark := buf.Len()
	reporter.OnOutcome(scan.Outcome{}, scan.Snapshot{TotalAttempts: 1})
	require.Equal(t, mark, buf.Len(), "suppressed reporter must not write")

	reporter.Resume()
	reporter.OnOutcome(scan.Outcome{}, scan.Snapshot{TotalAttempts: 2})
	require.Greater(t, buf.Len(), mark, "resumed reporter must write again")
}

func TestTerminalQuietWhenNotTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reporter := NewTerminal(&buf)
	reporter.OnOutcome(scan.Outcome{}, scan.Snapshot{TotalAttempts: 1})
	require.Zero(t, buf.Len())
}

func TestTerminalConcurrentWrites(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reporter := forceTerminal(NewTerminal(&buf))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			reporter.OnOutcome(scan.Outcome{}, scan.Snapshot{TotalAttempts: int64(n)})
		}(i)
	}
	wg.Wait()
	require.NotZero(t, buf.Len())
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	var buf1, buf2 bytes.Buffer
	r1 := forceTerminal(NewTerminal(&buf1))
	r2 := forceTerminal(NewTerminal(&buf2))

	Multi{r1, nil, r2}.OnOutcome(scan.Outcome{}, scan.Snapshot{TotalAttempts: 5})
	require.NotZero(t, buf1.Len())
	require.NotZero(t, buf2.Len())
}
