package intent

import "strings"

// DefaultConfidenceThreshold is the score below which a query is
// classified as unknown.
const DefaultConfidenceThreshold = 0.3

// scorePattern scores one pattern against a lowercased query. Each
// keyword found as a substring contributes its word count; the sum is
// normalized by the size of the keyword set and capped at 1.
func scorePattern(queryLower string, p Pattern) float64 {
	var matched int
	for _, kw := range p.Keywords {
		if strings.Contains(queryLower, kw) {
			matched += len(strings.Fields(kw))
		}
	}
	score := float64(matched) / float64(len(p.Keywords))
	if score > 1 {
		score = 1
	}
	return score
}

// classify picks the best scoring pattern. Ties keep the earliest
// declared pattern, so classification is deterministic for a fixed
// library. A best score under the threshold yields IntentUnknown with
// the observed score, never an error.
func classify(query string, patterns []Pattern, threshold float64) (IntentType, float64) {
	queryLower := strings.ToLower(query)

	best := IntentUnknown
	bestScore := 0.0
	for _, p := range patterns {
		if score := scorePattern(queryLower, p); score > bestScore {
			best = p.Intent
			bestScore = score
		}
	}
	if bestScore < threshold {
		return IntentUnknown, bestScore
	}
	return best, bestScore
}
