package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clintables/codefinder/internal/domain/entities"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n[\"x\"]\n```", `["x"]`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
		{"```json\n{}\n```  ", `{}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripFences(tc.in), "input: %q", tc.in)
	}
}

func TestLimitTerms(t *testing.T) {
	out := limitTerms([]string{" blood sugar ", "diabetes", "", "glucose", "a1c", "hba1c"}, "diabetes", 3)
	assert.Equal(t, []string{"blood sugar", "glucose", "a1c"}, out)
}

func TestLimitTerms_ExcludesQueryCaseInsensitive(t *testing.T) {
	out := limitTerms([]string{"Diabetes", "insulin"}, "diabetes", 5)
	assert.Equal(t, []string{"insulin"}, out)
}

func TestFormatResultsForSummary_ConfidenceLabels(t *testing.T) {
	results := []entities.CodeResult{
		{System: "ICD-10-CM", Code: "E11", Display: "Type 2 diabetes", Confidence: 0.8},
		{System: "ICD-10-CM", Code: "E10", Display: "Type 1 diabetes", Confidence: 0.5},
		{System: "ICD-10-CM", Code: "E13", Display: "Other diabetes", Confidence: 0.2},
	}

	out := formatResultsForSummary(results)

	assert.Contains(t, out, "E11: Type 2 diabetes (confidence: high)")
	assert.Contains(t, out, "E10: Type 1 diabetes (confidence: medium)")
	assert.Contains(t, out, "E13: Other diabetes (confidence: low)")
}

func TestFormatResultsForSummary_TopThreePerSystem(t *testing.T) {
	results := []entities.CodeResult{
		{System: "LOINC", Code: "1", Confidence: 0.9},
		{System: "LOINC", Code: "2", Confidence: 0.8},
		{System: "LOINC", Code: "3", Confidence: 0.7},
		{System: "LOINC", Code: "4", Confidence: 0.6},
		{System: "LOINC", Code: "5", Confidence: 0.5},
	}

	out := formatResultsForSummary(results)
	assert.Contains(t, out, "... and 2 more")
	assert.NotContains(t, out, "4:")
}

func TestFormatResultsForSummary_Empty(t *testing.T) {
	assert.Equal(t, "No results found", formatResultsForSummary(nil))
}
