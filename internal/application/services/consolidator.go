package services

import (
	"sort"

	"github.com/clintables/codefinder/internal/domain/entities"
)

const (
	// DefaultTopKPerSystem bounds how many results each search term may
	// contribute per system before adaptive widening.
	DefaultTopKPerSystem = 5

	// highConfidenceBar marks results strong enough to widen a group's cap.
	highConfidenceBar = 0.5

	// defaultTermGroup collects records that carry no search-term tag.
	defaultTermGroup = "_default"
)

// Consolidator deduplicates, groups, filters, and ranks raw per-system
// results into a single ordered list.
type Consolidator struct {
	topKPerSystem int
	minConfidence float64
}

// NewConsolidator creates a consolidator. minConfidence is the floor below
// which results are treated as noise.
func NewConsolidator(topKPerSystem int, minConfidence float64) *Consolidator {
	if topKPerSystem <= 0 {
		topKPerSystem = DefaultTopKPerSystem
	}
	return &Consolidator{
		topKPerSystem: topKPerSystem,
		minConfidence: minConfidence,
	}
}

// Consolidate ranks all systems' raw results. Systems are processed in the
// given order so output is deterministic; the final list is sorted by
// confidence descending with ties keeping per-system order.
//
// Per system: dedup by code (first occurrence wins), group by the search
// term that found each record, allocate per-group budgets, score, filter
// below the confidence floor, and take the top slice per group. A group
// whose records all fall below the floor keeps its single best record if
// that record reaches at least half the floor, so a system with only weak
// matches is not silently dropped. Groups with many high-confidence records
// get their cap widened up to twice the budget.
func (c *Consolidator) Consolidate(rawResults map[string][]entities.CodeRecord, systemOrder []string, query string) []entities.CodeResult {
	var consolidated []entities.CodeResult

	for _, system := range systemOrder {
		records := rawResults[system]
		if len(records) == 0 {
			continue
		}

		deduped := dedupByCode(records)
		groupOrder, groups := groupBySearchTerm(deduped)

		budget := c.topKPerSystem
		if len(groups) > 1 {
			budget = c.topKPerSystem / len(groups)
			if budget < 3 {
				budget = 3
			}
		}

		for _, term := range groupOrder {
			ranked := rankRecords(groups[term], query)

			filtered := make([]entities.CodeRecord, 0, len(ranked))
			for _, r := range ranked {
				if r.Confidence >= c.minConfidence {
					filtered = append(filtered, r)
				}
			}

			// All below threshold: keep the best one if it is at least
			// marginally relevant.
			if len(filtered) == 0 && len(ranked) > 0 {
				if best := ranked[0]; best.Confidence >= c.minConfidence*0.5 {
					filtered = append(filtered, best)
				}
			}

			highCount := 0
			for _, r := range filtered {
				if r.Confidence > highConfidenceBar {
					highCount++
				}
			}

			limit := budget
			if highCount > budget {
				limit = budget * 2
				if highCount < limit {
					limit = highCount
				}
			}
			if limit > len(filtered) {
				limit = len(filtered)
			}

			for _, r := range filtered[:limit] {
				consolidated = append(consolidated, entities.CodeResult{
					System:     system,
					Code:       r.Code,
					Display:    r.Display,
					Confidence: r.Confidence,
					Metadata:   r.Extra,
					Source:     r.Source,
				})
			}
		}
	}

	sort.SliceStable(consolidated, func(i, j int) bool {
		return consolidated[i].Confidence > consolidated[j].Confidence
	})

	return consolidated
}

func dedupByCode(records []entities.CodeRecord) []entities.CodeRecord {
	seen := map[string]struct{}{}
	deduped := make([]entities.CodeRecord, 0, len(records))
	for _, r := range records {
		if r.Code == "" {
			continue
		}
		if _, ok := seen[r.Code]; ok {
			continue
		}
		seen[r.Code] = struct{}{}
		deduped = append(deduped, r)
	}
	return deduped
}

// groupBySearchTerm splits records by the term that produced them,
// preserving first-appearance order of the terms.
func groupBySearchTerm(records []entities.CodeRecord) ([]string, map[string][]entities.CodeRecord) {
	var order []string
	groups := map[string][]entities.CodeRecord{}
	for _, r := range records {
		term := r.SearchTerm
		if term == "" {
			term = defaultTermGroup
		}
		if _, ok := groups[term]; !ok {
			order = append(order, term)
		}
		groups[term] = append(groups[term], r)
	}
	return order, groups
}

// rankRecords scores unscored records against the term that found them
// (falling back to the query) and sorts descending by confidence, stable.
func rankRecords(records []entities.CodeRecord, query string) []entities.CodeRecord {
	ranked := make([]entities.CodeRecord, len(records))
	copy(ranked, records)

	for i := range ranked {
		if ranked[i].Confidence == 0 {
			term := ranked[i].SearchTerm
			if term == "" {
				term = query
			}
			ranked[i].Confidence = ComputeConfidence(term, ranked[i].Code, ranked[i].Display)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}
