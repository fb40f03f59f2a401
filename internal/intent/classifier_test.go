package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorePattern(t *testing.T) {
	p := Pattern{
		Intent:   IntentBoundedModelCheck,
		Tool:     "run_bmc",
		Keywords: []string{"bmc", "bounded model", "model check"},
	}

	tests := []struct {
		name  string
		query string
		want  float64
	}{
		{
			name:  "no keywords",
			query: "how are you",
			want:  0,
		},
		{
			name:  "single one-word keyword",
			query: "run bmc on the design",
			want:  1.0 / 3.0,
		},
		{
			name:  "multi-word keyword counts its words",
			query: "run a bounded model analysis",
			want:  2.0 / 3.0,
		},
		{
			name:  "overlapping matches cap at one",
			query: "bmc bounded model checking",
			want:  1,
		},
		{
			name:  "matching is case insensitive",
			query: "Run BMC now",
			want:  1.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorePattern(strings.ToLower(tt.query), p), 1e-9)
		})
	}
}

func TestClassify(t *testing.T) {
	patterns := DefaultPatterns()

	tests := []struct {
		name       string
		query      string
		wantIntent IntentType
	}{
		{
			name:       "die calculation",
			query:      "Calculate dies for 10x10mm chip on 300mm wafer",
			wantIntent: IntentDieCalculation,
		},
		{
			name:       "comparison outranks a stray foundry keyword",
			query:      "Compare TSMC vs Samsung foundry services",
			wantIntent: IntentVendorComparison,
		},
		{
			name:       "vendor search",
			query:      "Find IP vendors for 7nm",
			wantIntent: IntentVendorSearch,
		},
		{
			name:       "follow-up with one keyword still clears the bar",
			query:      "What about on a 200mm wafer?",
			wantIntent: IntentDieCalculation,
		},
		{
			name:       "synthesis",
			query:      "Run synthesis on module alu",
			wantIntent: IntentSynthesis,
		},
		{
			name:       "equivalence",
			query:      "Is function mul equivalent to module mult?",
			wantIntent: IntentEquivalenceCheck,
		},
		{
			name:       "nothing matches",
			query:      "I need something for my chip",
			wantIntent: IntentUnknown,
		},
		{
			name:       "empty query",
			query:      "",
			wantIntent: IntentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := classify(tt.query, patterns, DefaultConfidenceThreshold)
			assert.Equal(t, tt.wantIntent, got)
		})
	}
}

func TestClassifyTieKeepsDeclarationOrder(t *testing.T) {
	a := Pattern{Intent: IntentSynthesis, Tool: "run_synthesis", Keywords: []string{"quux"}}
	b := Pattern{Intent: IntentRTLParse, Tool: "parse_rtl", Keywords: []string{"quux"}}

	got, score := classify("please quux this", []Pattern{a, b}, DefaultConfidenceThreshold)
	assert.Equal(t, IntentSynthesis, got)
	assert.Equal(t, 1.0, score)

	got, _ = classify("please quux this", []Pattern{b, a}, DefaultConfidenceThreshold)
	assert.Equal(t, IntentRTLParse, got)
}

func TestClassifyReportsBestScoreBelowThreshold(t *testing.T) {
	got, score := classify("anything about a wafer", DefaultPatterns(), 0.9)
	assert.Equal(t, IntentUnknown, got)
	assert.InDelta(t, 1.0/3.0, score, 1e-9)
}
