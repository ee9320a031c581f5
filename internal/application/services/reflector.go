package services

import (
	"fmt"
	"strings"

	"github.com/clintables/codefinder/internal/domain/entities"
)

// Refinement strategies the reflector may request.
const (
	StrategyBroaden = "broaden"
	StrategyNarrow  = "narrow"
)

const (
	tooManyResultsBar = 50
	tooFewResultsBar  = 5
	strongMatchQuorum = 2
)

// Reflector judges result coverage after an execution pass and decides
// whether another refinement loop is warranted.
type Reflector struct {
	maxIterations int
}

// ReflectOutcome is the reflector's verdict.
type ReflectOutcome struct {
	Assessment      string
	NeedsRefinement bool
	Strategy        string
	Reasoning       string
}

func NewReflector(maxIterations int) *Reflector {
	return &Reflector{maxIterations: maxIterations}
}

// Reflect assesses the raw results for the query. When the iteration budget
// is spent, refinement is disabled regardless of coverage.
func (r *Reflector) Reflect(query string, rawResults map[string][]entities.CodeRecord, iteration int) ReflectOutcome {
	assessment, needsRefinement, strategy := assessCoverage(query, rawResults)

	if needsRefinement && iteration >= r.maxIterations {
		needsRefinement = false
		strategy = ""
		assessment += fmt.Sprintf(" (reached max iterations: %d)", r.maxIterations)
	}

	reasoning := "Reflection: " + assessment
	if needsRefinement {
		reasoning += " -> will " + strategy
	} else {
		reasoning += " -> proceeding to consolidation"
	}

	return ReflectOutcome{
		Assessment:      assessment,
		NeedsRefinement: needsRefinement,
		Strategy:        strategy,
		Reasoning:       reasoning,
	}
}

// assessCoverage applies the coverage heuristics in priority order: empty,
// too broad, enough strong matches, too thin, acceptable.
func assessCoverage(query string, rawResults map[string][]entities.CodeRecord) (string, bool, string) {
	total := 0
	systemsWithResults := 0
	for _, records := range rawResults {
		total += len(records)
		if len(records) > 0 {
			systemsWithResults++
		}
	}

	if total == 0 {
		return "No results found for any system", true, StrategyBroaden
	}
	if total > tooManyResultsBar {
		return fmt.Sprintf("Found %d results (may be too broad)", total), true, StrategyNarrow
	}

	queryLower := strings.ToLower(query)
	strongMatches := 0
	for _, records := range rawResults {
		for _, rec := range records {
			displayLower := strings.ToLower(rec.Display)
			if displayLower == "" {
				continue
			}
			if strings.Contains(displayLower, queryLower) || strings.Contains(queryLower, displayLower) {
				strongMatches++
			}
		}
	}

	if strongMatches >= strongMatchQuorum {
		return fmt.Sprintf("Found %d results with %d high-confidence matches", total, strongMatches), false, ""
	}
	if total < tooFewResultsBar && strongMatches == 0 {
		return fmt.Sprintf("Found %d results but no high-confidence matches", total), true, StrategyBroaden
	}
	return fmt.Sprintf("Found %d results across %d systems", total, systemsWithResults), false, ""
}
