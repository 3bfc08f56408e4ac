package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allEnabled() Set {
	return Set{
		QuadRun:        true,
		TripleRun:      true,
		QuadSequence:   true,
		TripleSequence: true,
	}
}

func TestClassifyPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		set        Set
		candidate  string
		matched    bool
		wantReason string
	}{
		{
			name:       "literal target wins over structural rules",
			set:        Set{QuadRun: true, TripleRun: true, Targets: []string{"888"}},
			candidate:  "88812345",
			matched:    true,
			wantReason: `custom target: contains "888"`,
		},
		{
			name:       "literal targets checked in configured order",
			set:        Set{Targets: []string{"520", "1314"}},
			candidate:  "75201314",
			matched:    true,
			wantReason: `custom target: contains "520"`,
		},
		{
			name:       "quad run",
			set:        Set{QuadRun: true, TripleRun: true},
			candidate:  "77771234",
			matched:    true,
			wantReason: "quad run: 4+ consecutive identical digits",
		},
		{
			name:       "triple run when quad disabled",
			set:        Set{TripleRun: true},
			candidate:  "77771234",
			matched:    true,
			wantReason: "triple run: 3+ consecutive identical digits",
		},
		{
			name:       "triple run only",
			set:        Set{QuadRun: true, TripleRun: true},
			candidate:  "6662158",
			matched:    true,
			wantReason: "triple run: 3+ consecutive identical digits",
		},
		{
			name:      "triple run disabled leaves ordinary number",
			set:       Set{QuadRun: true},
			candidate: "6662158",
			matched:   false,
		},
		{
			name:       "five digit ascending fires with all toggles off",
			set:        Set{},
			candidate:  "12345",
			matched:    true,
			wantReason: `5-digit ascending sequence "12345"`,
		},
		{
			name:       "five digit descending fires with all toggles off",
			set:        Set{},
			candidate:  "7987654",
			matched:    true,
			wantReason: `5-digit descending sequence "98765"`,
		},
		{
			name:       "four digit ascending when enabled",
			set:        Set{QuadSequence: true},
			candidate:  "661234",
			matched:    true,
			wantReason: `4-digit ascending sequence "1234"`,
		},
		{
			name:      "four digit ascending ignored when disabled",
			set:       Set{},
			candidate: "661234",
			matched:   false,
		},
		{
			name:       "three digit sequence when enabled",
			set:        Set{TripleSequence: true},
			candidate:  "78912",
			matched:    true,
			wantReason: `3-digit ascending sequence "789"`,
		},
		{
			name:      "three digit sequence ignored when disabled",
			set:       Set{QuadSequence: true},
			candidate: "7891",
			matched:   false,
		},
		{
			name:       "ordinary number",
			set:        allEnabled(),
			candidate:  "13579",
			matched:    false,
			wantReason: "ordinary number",
		},
		{
			name:       "empty input",
			set:        allEnabled(),
			candidate:  "",
			matched:    false,
			wantReason: "empty input",
		},
		{
			name:       "malformed input",
			set:        allEnabled(),
			candidate:  "123a567",
			matched:    false,
			wantReason: "malformed input: not a digit string",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := NewEngine(tt.set)
			got := engine.Classify(tt.candidate)
			require.Equal(t, tt.matched, got.Matched)
			if tt.wantReason != "" {
				require.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}

func TestClassifyQuadBeatsTripleInReasonOnly(t *testing.T) {
	t.Parallel()

	// A 4-run is also a 3-run; with both enabled the quad rule is checked
	// first and owns the reason text.
	engine := NewEngine(Set{QuadRun: true, TripleRun: true})
	got := engine.Classify("2222915")
	require.True(t, got.Matched)
	require.Equal(t, "quad run: 4+ consecutive identical digits", got.Reason)
}

func TestClassifyIdempotent(t *testing.T) {
	t.Parallel()

	engine := NewEngine(Set{QuadRun: true, Targets: []string{"666"}})
	for _, candidate := range []string{"", "6661234", "9999", "13579"} {
		first := engine.Classify(candidate)
		second := engine.Classify(candidate)
		require.Equal(t, first, second, "candidate %q", candidate)
	}
}

func TestHasRepeatRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    string
		n    int
		want bool
	}{
		{"7777", 4, true},
		{"777", 4, false},
		{"777", 3, true},
		{"17771", 3, true},
		{"1777717", 4, true},
		{"1212121", 3, false},
		{"", 3, false},
		{"5", 3, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, hasRepeatRun(tt.s, tt.n), "hasRepeatRun(%q, %d)", tt.s, tt.n)
	}
}
