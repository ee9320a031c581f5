package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintables/codefinder/internal/domain/entities"
)

type fakeExpander struct {
	expansion entities.Expansion
	err       error
	calls     int
}

func (f *fakeExpander) Expand(_ context.Context, _ string, _ []string, _ int) (entities.Expansion, error) {
	f.calls++
	return f.expansion, f.err
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("key not found")
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ int) error {
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestStaticExpansion_DiabetesAllCategories(t *testing.T) {
	e := NewExpander(nil, nil, 0)

	terms := e.RelatedTerms(context.Background(), "diabetes",
		[]string{"ICD-10-CM", "LOINC", "RxTerms"})

	require.Len(t, terms, 5)
	// Diagnoses come first in the flattened order.
	assert.Equal(t, "diabetic neuropathy", terms[0])
}

func TestStaticExpansion_GatedBySystems(t *testing.T) {
	e := NewExpander(nil, nil, 0)

	terms := e.RelatedTerms(context.Background(), "diabetes", []string{"RxTerms"})

	require.NotEmpty(t, terms)
	assert.Contains(t, terms, "metformin")
	assert.NotContains(t, terms, "diabetic neuropathy")
	assert.NotContains(t, terms, "hemoglobin A1c")
}

func TestStaticExpansion_UnknownConditionReturnsNothing(t *testing.T) {
	e := NewExpander(nil, nil, 0)

	terms := e.RelatedTerms(context.Background(), "xyzzy", []string{"ICD-10-CM"})
	assert.Empty(t, terms)
}

func TestRelatedTerms_NeverIncludesQuery(t *testing.T) {
	e := NewExpander(nil, nil, 0)

	// "stroke" appears both as condition and as a related diagnosis of
	// atrial fibrillation.
	terms := e.RelatedTerms(context.Background(), "stroke", []string{"ICD-10-CM"})
	assert.NotContains(t, terms, "stroke")
}

func TestExpand_SemanticFailureFallsBackToStatic(t *testing.T) {
	semantic := &fakeExpander{err: errors.New("model unavailable")}
	e := NewExpander(semantic, nil, 0)

	terms := e.RelatedTerms(context.Background(), "asthma", []string{"RxTerms"})

	assert.Equal(t, 1, semantic.calls)
	assert.Contains(t, terms, "albuterol")
}

func TestExpand_CachesSemanticResults(t *testing.T) {
	semantic := &fakeExpander{expansion: entities.Expansion{
		Diagnoses: []string{"diabetic neuropathy"},
	}}
	c := newFakeCache()
	e := NewExpander(semantic, c, 3600)

	first := e.RelatedTerms(context.Background(), "diabetes", []string{"ICD-10-CM"})
	second := e.RelatedTerms(context.Background(), "diabetes", []string{"ICD-10-CM"})

	assert.Equal(t, 1, semantic.calls)
	assert.Equal(t, first, second)
}

func TestExpansionCacheKey_OrderInsensitive(t *testing.T) {
	a := expansionCacheKey("Diabetes", []string{"LOINC", "ICD-10-CM"})
	b := expansionCacheKey("diabetes", []string{"ICD-10-CM", "LOINC"})
	assert.Equal(t, a, b)
}
