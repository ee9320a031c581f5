package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/domain/providers"
)

// SummaryWriter turns consolidated results into a plain-English summary. A
// semantic capability writes the prose when available; otherwise a
// deterministic template does.
type SummaryWriter struct {
	semantic providers.Summarizer
}

func NewSummaryWriter(semantic providers.Summarizer) *SummaryWriter {
	return &SummaryWriter{semantic: semantic}
}

// Summarize produces the final summary for the query. Capability failures
// fall back to the template summary.
func (w *SummaryWriter) Summarize(ctx context.Context, query string, results []entities.CodeResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No clinical codes found matching '%s'. Try a different search term or check spelling.", query)
	}

	if w.semantic != nil {
		summary, err := w.semantic.Summarize(ctx, query, results)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary)
		}
		if err != nil {
			log.Warn().Err(err).Msg("semantic summary failed, using template")
		}
	}
	return FallbackSummary(query, results)
}

// FallbackSummary builds a templated summary with the best match and
// per-system counts.
func FallbackSummary(query string, results []entities.CodeResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No clinical codes found for '%s'.", query)
	}
	if len(results) == 1 {
		r := results[0]
		return fmt.Sprintf("Found 1 result for '%s': %s code %s (%s).", query, r.System, r.Code, r.Display)
	}

	best := results[0]
	counts := map[string]int{}
	order := []string{}
	for _, r := range results {
		if r.Confidence > best.Confidence {
			best = r
		}
		if _, ok := counts[r.System]; !ok {
			order = append(order, r.System)
		}
		counts[r.System]++
	}
	sort.Strings(order)

	parts := make([]string, 0, len(order))
	for _, system := range order {
		parts = append(parts, fmt.Sprintf("%d %s code(s)", counts[system], system))
	}
	return fmt.Sprintf("Found %d results for '%s': best match %s code %s (%s); %s.",
		len(results), query, best.System, best.Code, best.Display, strings.Join(parts, ", "))
}
