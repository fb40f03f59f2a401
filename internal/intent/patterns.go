package intent

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern binds one intent to its keyword set, target tool, and a
// representative example query. Declaration order matters: when two
// intents score equally, the earlier pattern wins.
type Pattern struct {
	Intent   IntentType
	Tool     string
	Keywords []string
	Example  string
}

// DefaultPatterns returns the built-in pattern library. Keyword sets are
// deliberately small so a single strong keyword clears the confidence
// threshold, and generic words like "chip" stay out of every set.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Intent:   IntentDieCalculation,
			Tool:     "calculate_die_per_wafer",
			Keywords: []string{"die", "wafer", "dies per wafer"},
			Example:  "Calculate dies for 10x10mm chip on 300mm wafer",
		},
		{
			Intent:   IntentVendorComparison,
			Tool:     "compare_vendors",
			Keywords: []string{"compare", "vs", "versus", "comparison"},
			Example:  "Compare TSMC vs Samsung foundry services",
		},
		{
			Intent:   IntentVendorSearch,
			Tool:     "find_ip_vendor",
			Keywords: []string{"find", "vendor", "supplier", "foundry", "search", "who makes"},
			Example:  "Find IP vendors for 7nm",
		},
		{
			Intent:   IntentRTLParse,
			Tool:     "parse_rtl",
			Keywords: []string{"parse", "ports", "hierarchy"},
			Example:  "Parse the ports of module alu",
		},
		{
			Intent:   IntentSynthesis,
			Tool:     "run_synthesis",
			Keywords: []string{"synthesize", "synthesis", "netlist"},
			Example:  "Run synthesis on module alu for ice40",
		},
		{
			Intent:   IntentEquivalenceCheck,
			Tool:     "c2rtl_equivalence",
			Keywords: []string{"equivalence", "equivalent", "c2rtl"},
			Example:  "Check equivalence between function main and module top",
		},
		{
			Intent:   IntentBoundedModelCheck,
			Tool:     "run_bmc",
			Keywords: []string{"bmc", "bounded model", "model check"},
			Example:  "Run BMC with bound 100",
		},
		{
			Intent:   IntentWaveformView,
			Tool:     "view_waveform",
			Keywords: []string{"waveform", "gtkwave", "vcd"},
			Example:  "Show the waveform for signal clk",
		},
	}
}

// validatePatterns rejects a library the classifier cannot use safely.
func validatePatterns(patterns []Pattern) error {
	if len(patterns) == 0 {
		return fmt.Errorf("pattern library is empty")
	}
	seen := make(map[IntentType]bool, len(patterns))
	for _, p := range patterns {
		if p.Intent == "" || p.Intent == IntentUnknown {
			return fmt.Errorf("pattern for tool %q has no usable intent", p.Tool)
		}
		if seen[p.Intent] {
			return fmt.Errorf("duplicate pattern for intent %q", p.Intent)
		}
		seen[p.Intent] = true
		if p.Tool == "" {
			return fmt.Errorf("pattern %q names no tool", p.Intent)
		}
		if len(p.Keywords) == 0 {
			return fmt.Errorf("pattern %q has an empty keyword set", p.Intent)
		}
		for _, kw := range p.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("pattern %q contains a blank keyword", p.Intent)
			}
			if kw != strings.ToLower(kw) {
				return fmt.Errorf("pattern %q keyword %q is not lowercase", p.Intent, kw)
			}
		}
	}
	return nil
}

// knownVendors is the static vendor lexicon. Matches are whole-word and
// case-insensitive; extracted names are reported lowercase in first
// mention order.
var knownVendors = []string{
	"tsmc",
	"samsung",
	"intel",
	"globalfoundries",
	"umc",
	"smic",
	"tower",
	"arm",
	"synopsys",
	"cadence",
	"siemens",
	"rambus",
	"imagination",
	"micron",
}

var vendorRe = regexp.MustCompile(`(?i)\b(` + strings.Join(knownVendors, "|") + `)\b`)

// processNodes lists the node designators the extractor recognizes
// literally, largest feature size last.
var processNodes = []string{
	"3nm", "5nm", "7nm", "10nm", "14nm", "16nm", "22nm", "28nm",
	"40nm", "65nm", "90nm", "130nm",
}

var processNodeRe = regexp.MustCompile(`(?i)\b(` + strings.Join(processNodes, "|") + `)\b`)

// standardWaferDiameters are the wafer sizes a bare number may resolve
// to, in millimetres.
var standardWaferDiameters = map[float64]bool{
	150: true,
	200: true,
	300: true,
	450: true,
}

// vendorCategories maps query words to catalogue categories.
var vendorCategories = map[string]string{
	"foundry":   "foundry",
	"foundries": "foundry",
	"ip":        "ip",
	"eda":       "eda",
	"packaging": "packaging",
	"memory":    "memory",
}

// synthesisTargets are the words that select a synthesis architecture.
var synthesisTargets = []string{"ice40", "ecp5", "xilinx"}

// comparisonAspects maps query words to comparison aspects.
var comparisonAspects = map[string]string{
	"capacity":   "capacity",
	"pricing":    "pricing",
	"price":      "pricing",
	"cost":       "pricing",
	"technology": "technology",
	"tech":       "technology",
}

// waveformFormats are the dump formats the extractor recognizes.
var waveformFormats = []string{"vcd", "fst"}
