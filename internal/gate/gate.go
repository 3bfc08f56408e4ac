// Package gate implements the interactive pause-on-match control gate.
package gate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/solvik/vanityscan/internal/scan"
)

// Suppressor mutes and restores progress output while the gate holds the
// screen.
type Suppressor interface {
	Suppress()
	Resume()
}

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle   = lipgloss.NewStyle().Faint(true)
)

// Terminal presents a match to the operator on a terminal and blocks until
// the operator decides. The wait is unbounded; scheduling stays suspended
// for its entire duration.
type Terminal struct {
	in       *bufio.Reader
	out      io.Writer
	reporter Suppressor
	logger   *zap.Logger
}

// NewTerminal constructs a Terminal gate reading decisions from in.
func NewTerminal(in io.Reader, out io.Writer, reporter Suppressor, logger *zap.Logger) *Terminal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Terminal{
		in:       bufio.NewReader(in),
		out:      out,
		reporter: reporter,
		logger:   logger,
	}
}

// Present implements scan.Gate. Progress output is suppressed before
// anything is rendered and restored before a Continue is returned, on every
// path including read failures. Only an explicit "q" stops the scan;
// anything else, including no input at all, continues it.
func (g *Terminal) Present(ctx context.Context, outcome scan.Outcome) (decision scan.Decision, err error) {
	if err := ctx.Err(); err != nil {
		return scan.DecisionStop, err
	}
	if g.reporter != nil {
		g.reporter.Suppress()
		defer func() {
			if decision == scan.DecisionContinue {
				g.reporter.Resume()
			}
		}()
	}

	g.render(outcome)

	fmt.Fprint(g.out, "\n[paused] press Enter or 'c' to continue scanning, 'q' to stop: ")
	line, err := g.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return scan.DecisionContinue, fmt.Errorf("read operator input: %w", err)
	}

	if strings.ToLower(strings.TrimSpace(line)) == "q" {
		fmt.Fprintln(g.out, "[*] stopping at operator request")
		return scan.DecisionStop, nil
	}

	fmt.Fprintln(g.out, "[*] continuing scan...")
	return scan.DecisionContinue, nil
}

// render draws the match banner and the full raw response payload so the
// operator can follow up manually.
func (g *Terminal) render(outcome scan.Outcome) {
	body := fmt.Sprintf("%s\n%s %s\n%s %s",
		headingStyle.Render("match found"),
		labelStyle.Render("number:"),
		outcome.Candidate,
		labelStyle.Render("reason:"),
		outcome.Result.Reason,
	)
	fmt.Fprintf(g.out, "\n%s\n", bannerStyle.Render(body))

	if len(outcome.RawPayload) == 0 {
		return
	}
	fmt.Fprintln(g.out, labelStyle.Render("raw response:"))
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, outcome.RawPayload, "", "  "); err != nil {
		g.logger.Debug("raw payload is not valid JSON", zap.Error(err))
		fmt.Fprintln(g.out, string(outcome.RawPayload))
		return
	}
	fmt.Fprintln(g.out, pretty.String())
}
