package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/domain/providers"
)

// Reranker cross-validates lexical confidence scores against a learned
// similarity model and blends the two. It fails open: any scorer failure
// returns the input unchanged, since degraded ranking beats no ranking.
type Reranker struct {
	scorer         providers.SimilarityScorer
	enabled        bool
	weightSemantic float64
	weightLexical  float64
}

// NewReranker creates a reranker. When disabled or scorer is nil, Rerank is
// the identity.
func NewReranker(scorer providers.SimilarityScorer, enabled bool, weightSemantic, weightLexical float64) *Reranker {
	return &Reranker{
		scorer:         scorer,
		enabled:        enabled && scorer != nil,
		weightSemantic: weightSemantic,
		weightLexical:  weightLexical,
	}
}

// Rerank re-scores results with the similarity model and re-sorts by the
// blended confidence. Results are never added, dropped, or fabricated.
func (r *Reranker) Rerank(ctx context.Context, query string, results []entities.CodeResult) []entities.CodeResult {
	if !r.enabled || len(results) == 0 {
		return results
	}

	candidates := make([]string, len(results))
	for i, res := range results {
		candidates[i] = fmt.Sprintf("%s: %s", res.Code, res.Display)
	}

	rawScores, err := r.scorer.ScorePairs(ctx, query, candidates)
	if err != nil || len(rawScores) != len(results) {
		log.Warn().Err(err).Msg("semantic reranking failed, keeping original order")
		return results
	}

	// Normalize weights so callers can pass any magnitudes.
	total := r.weightSemantic + r.weightLexical
	if total <= 0 {
		return results
	}
	sw := r.weightSemantic / total
	lw := r.weightLexical / total

	reranked := make([]entities.CodeResult, len(results))
	copy(reranked, results)
	for i := range reranked {
		semantic := sigmoid(rawScores[i])
		reranked[i].Confidence = lw*reranked[i].Confidence + sw*semantic
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Confidence > reranked[j].Confidence
	})
	return reranked
}

// sigmoid normalizes an unbounded model score to (0,1).
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
