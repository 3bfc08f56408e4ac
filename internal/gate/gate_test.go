package gate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solvik/vanityscan/internal/rules"
	"github.com/solvik/vanityscan/internal/scan"
)

type fakeSuppressor struct {
	suppressed int
	resumed    int
}

func (f *fakeSuppressor) Suppress() { f.suppressed++ }
func (f *fakeSuppressor) Resume()   { f.resumed++ }

func matchOutcome() scan.Outcome {
	return scan.Outcome{
		Kind:       scan.OutcomeMatch,
		Candidate:  "7778888",
		Result:     rules.Result{Matched: true, Reason: `custom target: contains "888"`},
		RawPayload: []byte(`{"data":{"availablePhoneNumbers":[{"phoneNumber":"7778888"}]}}`),
	}
}

func TestPresentDecisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  scan.Decision
	}{
		{name: "explicit stop", input: "q\n", want: scan.DecisionStop},
		{name: "uppercase stop", input: "Q\n", want: scan.DecisionStop},
		{name: "continue token", input: "c\n", want: scan.DecisionContinue},
		{name: "bare enter", input: "\n", want: scan.DecisionContinue},
		{name: "anything else", input: "yes please\n", want: scan.DecisionContinue},
		{name: "no input at all", input: "", want: scan.DecisionContinue},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			suppressor := &fakeSuppressor{}
			g := NewTerminal(strings.NewReader(tt.input), &out, suppressor, nil)

			decision, err := g.Present(context.Background(), matchOutcome())
			require.NoError(t, err)
			require.Equal(t, tt.want, decision)
			require.Equal(t, 1, suppressor.suppressed, "progress must be suppressed while gated")
			if tt.want == scan.DecisionContinue {
				require.Equal(t, 1, suppressor.resumed, "progress must be restored before Continue")
			} else {
				require.Zero(t, suppressor.resumed, "no resume needed on Stop")
			}
		})
	}
}

func TestPresentRendersMatchDetails(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	g := NewTerminal(strings.NewReader("\n"), &out, &fakeSuppressor{}, nil)

	_, err := g.Present(context.Background(), matchOutcome())
	require.NoError(t, err)

	rendered := out.String()
	require.Contains(t, rendered, "7778888")
	require.Contains(t, rendered, `contains "888"`)
	// Raw payload is pretty-printed for manual follow-up.
	require.Contains(t, rendered, "availablePhoneNumbers")
}

func TestPresentNonJSONPayloadFallsBackToRaw(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	g := NewTerminal(strings.NewReader("\n"), &out, &fakeSuppressor{}, nil)

	outcome := matchOutcome()
	outcome.RawPayload = []byte("not-json")
	_, err := g.Present(context.Background(), outcome)
	require.NoError(t, err)
	require.Contains(t, out.String(), "not-json")
}

type brokenReader struct{ err error }

func (r brokenReader) Read([]byte) (int, error) { return 0, r.err }

func TestPresentReadErrorStillResumesProgress(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	suppressor := &fakeSuppressor{}
	g := NewTerminal(brokenReader{err: errors.New("terminal detached")}, &out, suppressor, nil)

	decision, err := g.Present(context.Background(), matchOutcome())
	require.Error(t, err)
	require.Equal(t, scan.DecisionContinue, decision)
	require.Equal(t, 1, suppressor.suppressed)
	require.Equal(t, 1, suppressor.resumed, "a Continue must restore progress even when the read fails")
}

func TestPresentHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	g := NewTerminal(strings.NewReader("\n"), &out, &fakeSuppressor{}, nil)
	decision, err := g.Present(ctx, matchOutcome())
	require.Error(t, err)
	require.Equal(t, scan.DecisionStop, decision)
}
