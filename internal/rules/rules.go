// Package rules classifies candidate phone numbers against the configured
// desirability rule set.
package rules

import (
	"fmt"
	"strings"
)

const (
	forwardDigits  = "0123456789"
	backwardDigits = "9876543210"
)

// Set holds the rule toggles and literal targets loaded at startup. It is
// read-only after construction and safe to share across goroutines.
type Set struct {
	// QuadRun matches 4 or more consecutive identical digits (e.g. 7777).
	QuadRun bool
	// TripleRun matches 3 or more consecutive identical digits (e.g. 777).
	TripleRun bool
	// QuadSequence matches 4-digit ascending/descending runs (e.g. 1234).
	QuadSequence bool
	// TripleSequence matches 3-digit ascending/descending runs (e.g. 789).
	TripleSequence bool
	// Targets are literal substrings checked before any structural rule,
	// in list order.
	Targets []string
}

// Result reports whether a candidate matched and which rule fired.
type Result struct {
	Matched bool
	Reason  string
}

// Engine evaluates candidates against a fixed Set. Classification is pure:
// no state, no side effects, identical results for identical inputs.
type Engine struct {
	set Set
}

// NewEngine builds an Engine over the given rule set.
func NewEngine(set Set) *Engine {
	return &Engine{set: set}
}

// Classify evaluates a candidate against the rule set. Rules are checked in
// fixed precedence order and the first match wins, so reason strings are
// reproducible: literal targets, quad run, triple run, the unconditional
// 5-digit sequence, then the toggled 4- and 3-digit sequences.
func (e *Engine) Classify(candidate string) Result {
	if candidate == "" {
		return Result{Matched: false, Reason: "empty input"}
	}
	if !isDigits(candidate) {
		return Result{Matched: false, Reason: "malformed input: not a digit string"}
	}

	for _, target := range e.set.Targets {
		if target != "" && strings.Contains(candidate, target) {
			return Result{Matched: true, Reason: fmt.Sprintf("custom target: contains %q", target)}
		}
	}

	if e.set.QuadRun && hasRepeatRun(candidate, 4) {
		return Result{Matched: true, Reason: "quad run: 4+ consecutive identical digits"}
	}
	if e.set.TripleRun && hasRepeatRun(candidate, 3) {
		return Result{Matched: true, Reason: "triple run: 3+ consecutive identical digits"}
	}

	// The 5-digit sequence check is always active regardless of toggles.
	if seq, ok := findSequence(candidate, 5); ok {
		return Result{Matched: true, Reason: seq}
	}
	if e.set.QuadSequence {
		if seq, ok := findSequence(candidate, 4); ok {
			return Result{Matched: true, Reason: seq}
		}
	}
	if e.set.TripleSequence {
		if seq, ok := findSequence(candidate, 3); ok {
			return Result{Matched: true, Reason: seq}
		}
	}

	return Result{Matched: false, Reason: "ordinary number"}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// hasRepeatRun reports whether s contains at least n consecutive occurrences
// of the same digit.
func hasRepeatRun(s string, n int) bool {
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// findSequence looks for an n-digit contiguous ascending or descending digit
// sequence inside s. Ascending windows are checked before descending ones,
// matching the configured precedence. The reason cites the exact substring.
func findSequence(s string, n int) (string, bool) {
	for i := 0; i+n <= len(forwardDigits); i++ {
		window := forwardDigits[i : i+n]
		if strings.Contains(s, window) {
			return fmt.Sprintf("%d-digit ascending sequence %q", n, window), true
		}
	}
	for i := 0; i+n <= len(backwardDigits); i++ {
		window := backwardDigits[i : i+n]
		if strings.Contains(s, window) {
			return fmt.Sprintf("%d-digit descending sequence %q", n, window), true
		}
	}
	return "", false
}
