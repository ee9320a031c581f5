package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clintables/codefinder/internal/domain/entities"
)

func TestReflect_NoResultsBroadens(t *testing.T) {
	r := NewReflector(3)

	out := r.Reflect("diabetes", map[string][]entities.CodeRecord{}, 1)

	assert.True(t, out.NeedsRefinement)
	assert.Equal(t, StrategyBroaden, out.Strategy)
	assert.Equal(t, "No results found for any system", out.Assessment)
}

func TestReflect_TooManyResultsNarrows(t *testing.T) {
	r := NewReflector(3)
	records := make([]entities.CodeRecord, 60)
	for i := range records {
		records[i] = entities.CodeRecord{Code: fmt.Sprintf("C%d", i), Display: "unrelated"}
	}

	out := r.Reflect("pain", map[string][]entities.CodeRecord{"ICD-10-CM": records}, 1)

	assert.True(t, out.NeedsRefinement)
	assert.Equal(t, StrategyNarrow, out.Strategy)
	assert.Contains(t, out.Assessment, "60 results")
}

func TestReflect_StrongMatchesProceed(t *testing.T) {
	r := NewReflector(3)
	raw := map[string][]entities.CodeRecord{
		"ICD-10-CM": {
			{Code: "E11", Display: "Type 2 diabetes mellitus"},
			{Code: "E10", Display: "Type 1 diabetes mellitus"},
		},
	}

	out := r.Reflect("diabetes", raw, 1)

	assert.False(t, out.NeedsRefinement)
	assert.Empty(t, out.Strategy)
	assert.Contains(t, out.Assessment, "2 high-confidence matches")
}

func TestReflect_ThinResultsWithoutMatchesBroaden(t *testing.T) {
	r := NewReflector(3)
	raw := map[string][]entities.CodeRecord{
		"LOINC": {
			{Code: "1", Display: "unrelated thing"},
			{Code: "2", Display: "another unrelated thing"},
		},
	}

	out := r.Reflect("diabetes", raw, 1)

	assert.True(t, out.NeedsRefinement)
	assert.Equal(t, StrategyBroaden, out.Strategy)
}

func TestReflect_ModerateCoverageProceeds(t *testing.T) {
	r := NewReflector(3)
	records := make([]entities.CodeRecord, 10)
	for i := range records {
		records[i] = entities.CodeRecord{Code: fmt.Sprintf("C%d", i), Display: "unrelated"}
	}

	out := r.Reflect("diabetes", map[string][]entities.CodeRecord{"ICD-10-CM": records}, 1)

	assert.False(t, out.NeedsRefinement)
	assert.Contains(t, out.Assessment, "across 1 systems")
}

func TestReflect_MaxIterationsForcesStop(t *testing.T) {
	r := NewReflector(3)

	out := r.Reflect("diabetes", map[string][]entities.CodeRecord{}, 3)

	assert.False(t, out.NeedsRefinement)
	assert.Empty(t, out.Strategy)
	assert.Contains(t, out.Assessment, "reached max iterations: 3")
}

func TestReflect_SubstringMatchIsCaseInsensitive(t *testing.T) {
	r := NewReflector(3)
	raw := map[string][]entities.CodeRecord{
		"HPO": {
			{Code: "HP:1", Display: "ATAXIA, cerebellar"},
			{Code: "HP:2", Display: "Episodic ATAXIA"},
		},
	}

	out := r.Reflect("ataxia", raw, 1)
	assert.False(t, out.NeedsRefinement)
}
