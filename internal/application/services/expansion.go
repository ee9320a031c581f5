package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/clintables/codefinder/internal/adapters/terminology"
	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/domain/providers"
)

// defaultMaxRelatedTerms caps how many related terms an expansion pass adds.
const defaultMaxRelatedTerms = 5

// Expander widens a search with clinically related concepts. A semantic
// capability produces the expansion when available; the static relationship
// table is the offline fallback. Results are cached per query+systems.
type Expander struct {
	semantic providers.QueryExpander
	cache    providers.CacheProvider
	cacheTTL int
	maxTerms int
}

// NewExpander creates an expander. semantic and cache may both be nil, which
// leaves static-table expansion only.
func NewExpander(semantic providers.QueryExpander, cache providers.CacheProvider, cacheTTLSeconds int) *Expander {
	return &Expander{
		semantic: semantic,
		cache:    cache,
		cacheTTL: cacheTTLSeconds,
		maxTerms: defaultMaxRelatedTerms,
	}
}

// RelatedTerms returns up to maxTerms additional search terms for the query,
// gated by which coding systems are in play. Never returns the query itself.
func (e *Expander) RelatedTerms(ctx context.Context, query string, systems []string) []string {
	expansion := e.expand(ctx, query, systems)
	flat := flattenExpansion(expansion, systems)
	return dedupeAgainstQuery(flat, query, e.maxTerms)
}

func (e *Expander) expand(ctx context.Context, query string, systems []string) entities.Expansion {
	if e.semantic == nil {
		return staticExpansion(query, systems, e.maxTerms)
	}

	key := expansionCacheKey(query, systems)
	if e.cache != nil {
		if raw, err := e.cache.Get(ctx, key); err == nil {
			var cached entities.Expansion
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached
			}
		}
	}

	expansion, err := e.semantic.Expand(ctx, query, systems, e.maxTerms)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("semantic expansion failed, using static relationships")
		return staticExpansion(query, systems, e.maxTerms)
	}

	if e.cache != nil {
		if raw, err := json.Marshal(expansion); err == nil {
			if err := e.cache.Set(ctx, key, raw, e.cacheTTL); err != nil {
				log.Debug().Err(err).Msg("failed to cache expansion")
			}
		}
	}
	return expansion
}

func expansionCacheKey(query string, systems []string) string {
	sorted := append([]string{}, systems...)
	sort.Strings(sorted)
	return fmt.Sprintf("expand:%s:%s", strings.ToLower(query), strings.Join(sorted, ","))
}

// staticExpansion scans the relationship table for conditions mentioned in
// the query and collects their related terms per category.
func staticExpansion(query string, systems []string, maxPerCategory int) entities.Expansion {
	queryLower := strings.ToLower(query)
	conditions := make([]string, 0, len(clinicalRelationships))
	for condition := range clinicalRelationships {
		conditions = append(conditions, condition)
	}
	sort.Strings(conditions)

	var exp entities.Expansion
	for _, condition := range conditions {
		if !strings.Contains(queryLower, condition) {
			continue
		}
		relations := clinicalRelationships[condition]
		exp.Diagnoses = append(exp.Diagnoses, relations.Diagnoses...)
		exp.Labs = append(exp.Labs, relations.Labs...)
		exp.Medications = append(exp.Medications, relations.Medications...)
	}
	exp.Diagnoses = dedupeAgainstQuery(exp.Diagnoses, query, maxPerCategory)
	exp.Labs = dedupeAgainstQuery(exp.Labs, query, maxPerCategory)
	exp.Medications = dedupeAgainstQuery(exp.Medications, query, maxPerCategory)
	return exp
}

// flattenExpansion keeps only the categories relevant to the selected
// systems, in diagnosis/lab/medication order.
func flattenExpansion(exp entities.Expansion, systems []string) []string {
	has := func(system string) bool {
		for _, s := range systems {
			if s == system {
				return true
			}
		}
		return false
	}

	var flat []string
	if has(terminology.SystemICD10) || has(terminology.SystemHPO) {
		flat = append(flat, exp.Diagnoses...)
	}
	if has(terminology.SystemLOINC) || has(terminology.SystemUCUM) {
		flat = append(flat, exp.Labs...)
	}
	if has(terminology.SystemRxTerms) {
		flat = append(flat, exp.Medications...)
	}
	return flat
}

func dedupeAgainstQuery(terms []string, query string, limit int) []string {
	queryLower := strings.ToLower(query)
	seen := make(map[string]struct{}, len(terms))
	unique := make([]string, 0, len(terms))
	for _, term := range terms {
		key := strings.ToLower(term)
		if key == "" || key == queryLower {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, term)
		if len(unique) == limit {
			break
		}
	}
	return unique
}
