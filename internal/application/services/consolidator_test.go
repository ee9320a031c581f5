package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintables/codefinder/internal/domain/entities"
)

func rec(code, display, term string, conf float64) entities.CodeRecord {
	return entities.CodeRecord{Code: code, Display: display, SearchTerm: term, Confidence: conf}
}

func TestConsolidate_DedupKeepsFirstOccurrence(t *testing.T) {
	c := NewConsolidator(5, 0.3)
	raw := map[string][]entities.CodeRecord{
		"ICD-10-CM": {
			rec("E11", "Type 2 diabetes mellitus", "diabetes", 0.9),
			rec("E11", "Type 2 diabetes mellitus without complications", "diabetes", 0.8),
		},
	}

	results := c.Consolidate(raw, []string{"ICD-10-CM"}, "diabetes")

	require.Len(t, results, 1)
	assert.Equal(t, "Type 2 diabetes mellitus", results[0].Display)
	assert.InDelta(t, 0.9, results[0].Confidence, 1e-9)
}

func TestConsolidate_Idempotent(t *testing.T) {
	c := NewConsolidator(5, 0.3)
	raw := map[string][]entities.CodeRecord{
		"ICD-10-CM": {
			rec("E11", "Type 2 diabetes", "diabetes", 0.9),
			rec("E10", "Type 1 diabetes", "diabetes", 0.8),
		},
	}

	first := c.Consolidate(raw, []string{"ICD-10-CM"}, "diabetes")
	second := c.Consolidate(raw, []string{"ICD-10-CM"}, "diabetes")
	assert.Equal(t, first, second)
}

func TestConsolidate_PerTermBudget(t *testing.T) {
	// Two term groups with topK 5: each group's budget is max(3, 5/2) = 3.
	c := NewConsolidator(5, 0.1)
	raw := map[string][]entities.CodeRecord{
		"ICD-10-CM": {
			rec("A1", "a one", "alpha", 0.45),
			rec("A2", "a two", "alpha", 0.44),
			rec("A3", "a three", "alpha", 0.43),
			rec("A4", "a four", "alpha", 0.42),
			rec("B1", "b one", "beta", 0.45),
			rec("B2", "b two", "beta", 0.44),
			rec("B3", "b three", "beta", 0.43),
			rec("B4", "b four", "beta", 0.42),
		},
	}

	results := c.Consolidate(raw, []string{"ICD-10-CM"}, "query")

	require.Len(t, results, 6)
	codes := map[string]bool{}
	for _, r := range results {
		codes[r.Code] = true
	}
	assert.False(t, codes["A4"])
	assert.False(t, codes["B4"])
}

func TestConsolidate_WidensForHighConfidence(t *testing.T) {
	// Seven records above the high-confidence bar with a budget of 5: the
	// cap widens to min(7, 10) so all seven survive.
	c := NewConsolidator(5, 0.3)
	records := make([]entities.CodeRecord, 0, 7)
	for _, code := range []string{"C1", "C2", "C3", "C4", "C5", "C6", "C7"} {
		records = append(records, rec(code, "match "+code, "term", 0.8))
	}
	raw := map[string][]entities.CodeRecord{"LOINC": records}

	results := c.Consolidate(raw, []string{"LOINC"}, "match")
	assert.Len(t, results, 7)
}

func TestConsolidate_KeepsBestWhenAllBelowFloor(t *testing.T) {
	c := NewConsolidator(5, 0.4)
	raw := map[string][]entities.CodeRecord{
		"HCPCS": {
			rec("K1", "weak one", "term", 0.25),
			rec("K2", "weak two", "term", 0.22),
		},
	}

	results := c.Consolidate(raw, []string{"HCPCS"}, "query")

	// 0.25 >= 0.4*0.5 so the single best survives.
	require.Len(t, results, 1)
	assert.Equal(t, "K1", results[0].Code)
}

func TestConsolidate_DropsGroupBelowHalfFloor(t *testing.T) {
	c := NewConsolidator(5, 0.6)
	raw := map[string][]entities.CodeRecord{
		"HCPCS": {rec("K1", "noise", "term", 0.2)},
	}

	results := c.Consolidate(raw, []string{"HCPCS"}, "query")
	assert.Empty(t, results)
}

func TestConsolidate_SortedByConfidenceDescending(t *testing.T) {
	c := NewConsolidator(5, 0.1)
	raw := map[string][]entities.CodeRecord{
		"ICD-10-CM": {rec("E11", "diag", "term", 0.5)},
		"LOINC":     {rec("2345-7", "lab", "term", 0.9)},
	}

	results := c.Consolidate(raw, []string{"ICD-10-CM", "LOINC"}, "query")

	require.Len(t, results, 2)
	assert.Equal(t, "2345-7", results[0].Code)
	assert.Equal(t, "E11", results[1].Code)
}

func TestConsolidate_ScoresUnscoredRecordsAgainstTheirTerm(t *testing.T) {
	c := NewConsolidator(5, 0.1)
	raw := map[string][]entities.CodeRecord{
		"ICD-10-CM": {rec("E11", "Type 2 diabetes mellitus", "diabetes", 0)},
	}

	results := c.Consolidate(raw, []string{"ICD-10-CM"}, "wheelchair and diabetes")

	require.Len(t, results, 1)
	// Scored against "diabetes", not the compound query.
	assert.InDelta(t, 0.7, results[0].Confidence, 1e-9)
}

func TestConsolidate_SkipsUnknownSystemsAndEmptyCodes(t *testing.T) {
	c := NewConsolidator(5, 0.1)
	raw := map[string][]entities.CodeRecord{
		"LOINC": {rec("", "no code", "term", 0.9)},
	}

	results := c.Consolidate(raw, []string{"LOINC", "RxTerms"}, "query")
	assert.Empty(t, results)
}
