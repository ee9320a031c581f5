package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/domain/providers"
)

// maxRefinedTerms bounds how many terms a single refinement pass may add.
const maxRefinedTerms = 3

// compoundSplit matches conjunctions that join independent clinical
// concepts in one query.
var compoundSplit = regexp.MustCompile(`(?i)\s+and\s+|\s*&\s*|\s*,\s*`)

// Planner owns the search-term list. On the first pass it splits compound
// queries into independent terms; on later passes it folds refined terms in.
type Planner struct {
	refiner providers.TermRefiner
}

// PlanOutcome is the planner's contribution to the run state.
type PlanOutcome struct {
	SearchTerms []string
	Iteration   int
	Reasoning   string
}

func NewPlanner(refiner providers.TermRefiner) *Planner {
	return &Planner{refiner: refiner}
}

// Plan produces the search terms for the next execution pass and advances
// the iteration counter. Refinement failures fall back to searching the
// original query.
func (p *Planner) Plan(ctx context.Context, query string, iteration int, terms []string, needsRefinement bool, strategy string, systems []string, rawResults map[string][]entities.CodeRecord) PlanOutcome {
	if iteration == 0 {
		split := SplitCompoundQuery(query)
		reasoning := fmt.Sprintf("Planned initial search with %d term(s)", len(split))
		if len(split) > 1 {
			reasoning = fmt.Sprintf("Split compound query into %d terms: %s", len(split), strings.Join(split, ", "))
		}
		return PlanOutcome{SearchTerms: split, Iteration: 1, Reasoning: reasoning}
	}

	if !needsRefinement || p.refiner == nil {
		return PlanOutcome{
			SearchTerms: terms,
			Iteration:   iteration + 1,
			Reasoning:   "Re-planned without refinement",
		}
	}

	summary := SummarizeResults(rawResults)
	refined, err := p.refiner.RefineTerms(ctx, query, systems, summary, strategy)
	if err != nil {
		log.Warn().Err(err).Str("strategy", strategy).Msg("term refinement failed, falling back to original query")
		return PlanOutcome{
			SearchTerms: MergeTerms(terms, []string{query}),
			Iteration:   iteration + 1,
			Reasoning:   "Refinement unavailable, falling back to original query",
		}
	}
	if len(refined) > maxRefinedTerms {
		refined = refined[:maxRefinedTerms]
	}

	merged := MergeTerms(terms, refined)
	return PlanOutcome{
		SearchTerms: merged,
		Iteration:   iteration + 1,
		Reasoning:   fmt.Sprintf("Refined terms (%s): added %s", strategy, strings.Join(refined, ", ")),
	}
}

// SplitCompoundQuery breaks a query on conjunctions, keeping fragment order
// and dropping empties. Single-concept queries pass through unchanged.
func SplitCompoundQuery(query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}
	parts := compoundSplit.Split(trimmed, -1)
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			terms = append(terms, part)
		}
	}
	if len(terms) == 0 {
		return []string{trimmed}
	}
	return terms
}

// MergeTerms appends new terms onto the existing list, preserving order
// and dropping case-insensitive duplicates.
func MergeTerms(existing, refined []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(refined))
	merged := make([]string, 0, len(existing)+len(refined))
	for _, lists := range [][]string{existing, refined} {
		for _, term := range lists {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			key := strings.ToLower(term)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, term)
		}
	}
	return merged
}

// SummarizeResults renders raw per-system results into a compact textual
// summary for the refinement capability.
func SummarizeResults(rawResults map[string][]entities.CodeRecord) string {
	total := 0
	for _, records := range rawResults {
		total += len(records)
	}
	if total == 0 {
		return "No results found."
	}

	systems := make([]string, 0, len(rawResults))
	for system := range rawResults {
		systems = append(systems, system)
	}
	sort.Strings(systems)

	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d results.", total)
	for _, system := range systems {
		records := rawResults[system]
		if len(records) == 0 {
			continue
		}
		display := records[0].Display
		if runes := []rune(display); len(runes) > 50 {
			display = string(runes[:50]) + "..."
		}
		fmt.Fprintf(&b, " %s: %d results (e.g., '%s')", system, len(records), display)
	}
	return b.String()
}
