package services

import (
	"strings"
)

// Scoring constants. These are tuned design values, not derived quantities;
// tests pin them exactly.
const (
	jaccardWeight       = 0.4
	queryInDisplayBonus = 0.3
	displayInQueryBonus = 0.2
	specificityDivisor  = 10.0
	specificityCap      = 0.3
)

// ComputeConfidence scores how well a result matches a query term.
//
// The score is a heuristic in [0,1], not a calibrated probability:
// Jaccard token overlap (weight 0.4), a substring bonus (0.3 when the full
// query appears in the display, 0.2 for the reverse), and a code-length
// specificity term capped at 0.3.
func ComputeConfidence(queryTerm, code, display string) float64 {
	queryLower := strings.ToLower(queryTerm)
	displayLower := strings.ToLower(display)

	queryTokens := tokenSet(queryLower)
	displayTokens := tokenSet(displayLower)

	intersection := 0
	for token := range queryTokens {
		if _, ok := displayTokens[token]; ok {
			intersection++
		}
	}
	union := len(queryTokens) + len(displayTokens) - intersection

	jaccard := 0.0
	if union > 0 {
		jaccard = float64(intersection) / float64(union)
	}

	bonus := 0.0
	if strings.Contains(displayLower, queryLower) {
		bonus = queryInDisplayBonus
	} else if strings.Contains(queryLower, displayLower) {
		bonus = displayInQueryBonus
	}

	specificity := float64(len(code)) / specificityDivisor
	if specificity > specificityCap {
		specificity = specificityCap
	}

	confidence := jaccard*jaccardWeight + bonus + specificity
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func tokenSet(s string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, t := range strings.Fields(s) {
		tokens[t] = struct{}{}
	}
	return tokens
}
