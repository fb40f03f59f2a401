package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dimensionRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:mm)?\s*[x×]\s*(\d+(?:\.\d+)?)`)
	numberRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	edgeRe      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*mm\s+edge`)
	scribeRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*mm\s+scribe`)
	depthRe     = regexp.MustCompile(`(?i)\bdepth\s+(?:of\s+)?(\d+)`)
	boundRe     = regexp.MustCompile(`(?i)\bbound\s+(?:of\s+)?(\d+)`)
	limitRe     = regexp.MustCompile(`(?i)\b(?:top|limit)\s+(\d+)`)
	moduleRe    = regexp.MustCompile(`(?i)\bmodule\s+([A-Za-z_]\w*)`)
	functionRe  = regexp.MustCompile(`(?i)\bfunction\s+([A-Za-z_]\w*)`)
	signalRe    = regexp.MustCompile(`(?i)\bsignal\s+([A-Za-z_]\w*)`)
	wordRe      = regexp.MustCompile(`[a-z0-9]+`)
)

// spans tracks byte ranges already claimed by a higher priority match so
// the bare number pass does not reinterpret them.
type spans [][2]int

func (s *spans) claim(start, end int) {
	*s = append(*s, [2]int{start, end})
}

func (s spans) overlaps(start, end int) bool {
	for _, sp := range s {
		if start < sp[1] && end > sp[0] {
			return true
		}
	}
	return false
}

// scopedNumbers are numeric entities keyed off an adjacent unit or
// keyword. They run before the bare number pass and claim their spans.
var scopedNumbers = []struct {
	key string
	re  *regexp.Regexp
}{
	{"edgeExclusion", edgeRe},
	{"scribeLane", scribeRe},
	{"depth", depthRe},
	{"bound", boundRe},
	{"limit", limitRe},
}

// namedIdentifiers capture identifiers introduced by a role word, such
// as "module alu" or "signal clk".
var namedIdentifiers = []struct {
	key string
	re  *regexp.Regexp
}{
	{"moduleName", moduleRe},
	{"functionName", functionRe},
	{"signalName", signalRe},
}

// extractEntities pulls typed values out of a query. Extraction is a
// pure function of the text and the intent type, so repeated calls on
// the same input return the same bag.
//
// Priority when numbers compete: a WxH dimension claims its numbers
// first, then unit or keyword scoped numbers, and only then may a bare
// number resolve to a standard wafer diameter.
func extractEntities(query string, it IntentType) EntityBag {
	bag := make(EntityBag)
	lower := strings.ToLower(query)
	var claimed spans

	if m := processNodeRe.FindStringIndex(query); m != nil {
		bag["processNode"] = Text(strings.ToLower(query[m[0]:m[1]]))
		claimed.claim(m[0], m[1])
	}

	if m := dimensionRe.FindStringSubmatchIndex(query); m != nil {
		w, errW := strconv.ParseFloat(query[m[2]:m[3]], 64)
		h, errH := strconv.ParseFloat(query[m[4]:m[5]], 64)
		if errW == nil && errH == nil {
			bag["dieWidth"] = Number(w)
			bag["dieHeight"] = Number(h)
			claimed.claim(m[0], m[1])
		}
	}

	for _, sn := range scopedNumbers {
		m := sn.re.FindStringSubmatchIndex(query)
		if m == nil || claimed.overlaps(m[0], m[1]) {
			continue
		}
		if v, err := strconv.ParseFloat(query[m[2]:m[3]], 64); err == nil {
			bag[sn.key] = Number(v)
			claimed.claim(m[0], m[1])
		}
	}

	// A bare number only becomes a wafer diameter when it is one of the
	// standard sizes. Anything else stays unclaimed and the builder asks
	// for clarification instead of guessing.
	for _, m := range numberRe.FindAllStringIndex(query, -1) {
		if claimed.overlaps(m[0], m[1]) {
			continue
		}
		v, err := strconv.ParseFloat(query[m[0]:m[1]], 64)
		if err == nil && standardWaferDiameters[v] {
			bag["waferDiameter"] = Number(v)
			claimed.claim(m[0], m[1])
			break
		}
	}

	if matches := vendorRe.FindAllString(query, -1); len(matches) > 0 {
		seen := make(map[string]bool, len(matches))
		var vendors []string
		for _, v := range matches {
			v = strings.ToLower(v)
			if !seen[v] {
				seen[v] = true
				vendors = append(vendors, v)
			}
		}
		bag["vendors"] = List(vendors...)
	}

	for _, ni := range namedIdentifiers {
		if m := ni.re.FindStringSubmatch(query); m != nil {
			bag[ni.key] = Text(m[1])
		}
	}

	words := wordRe.FindAllString(lower, -1)
	switch it {
	case IntentVendorSearch:
		if c, ok := firstMapped(words, vendorCategories); ok {
			bag["category"] = Text(c)
		}
	case IntentVendorComparison:
		if a, ok := firstMapped(words, comparisonAspects); ok {
			bag["aspect"] = Text(a)
		}
	case IntentSynthesis:
		if t, ok := firstListed(words, synthesisTargets); ok {
			bag["target"] = Text(t)
		}
	case IntentWaveformView:
		if f, ok := firstListed(words, waveformFormats); ok {
			bag["format"] = Text(f)
		}
	case IntentRTLParse:
		if d, ok := firstListed(words, []string{"signals", "hierarchy", "ports"}); ok {
			bag["detail"] = Text(d)
		}
	}

	return bag
}

// firstMapped returns the mapped value of the first word present in the
// lookup table.
func firstMapped(words []string, table map[string]string) (string, bool) {
	for _, w := range words {
		if v, ok := table[w]; ok {
			return v, true
		}
	}
	return "", false
}

// firstListed returns the first candidate that appears among the words,
// in candidate order.
func firstListed(words []string, candidates []string) (string, bool) {
	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[w] = true
	}
	for _, c := range candidates {
		if present[c] {
			return c, true
		}
	}
	return "", false
}
