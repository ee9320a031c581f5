package providers

import (
	"context"

	"github.com/clintables/codefinder/internal/domain/entities"
)

// IntentClassifier scores a free-text query against the fixed intent
// categories. Implementations may fail; callers fall back to rule-based
// scores alone.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, query string) (entities.IntentScores, error)
}

// TermRefiner suggests up to three refined search terms given the results
// so far and a refinement strategy ("broaden" or "narrow"). Callers fall
// back to the original query on failure.
type TermRefiner interface {
	RefineTerms(ctx context.Context, query string, systems []string, resultSummary, strategy string) ([]string, error)
}

// QueryExpander suggests clinically related terms grouped by category.
// Callers fall back to a static relationship table on failure.
type QueryExpander interface {
	Expand(ctx context.Context, query string, systems []string, maxPerCategory int) (entities.Expansion, error)
}

// Summarizer produces a short plain-English summary of ranked results.
// Callers fall back to a deterministic templated summary on failure.
type Summarizer interface {
	Summarize(ctx context.Context, query string, results []entities.CodeResult) (string, error)
}

// SimilarityScorer scores (query, candidate) pairs with an unbounded
// real-valued relevance score per candidate. Scores are normalized by the
// caller. A failing scorer must never abort ranking; callers fail open.
type SimilarityScorer interface {
	ScorePairs(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// CodeSearcher is the uniform search contract over one coding system.
type CodeSearcher interface {
	// System returns the coding-system name, e.g. "ICD-10-CM".
	System() string

	// Search looks up codes matching term, returning at most maxResults
	// normalized records.
	Search(ctx context.Context, term string, maxResults int) ([]entities.CodeRecord, error)
}
