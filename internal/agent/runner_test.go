package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintables/codefinder/internal/application/services"
	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/domain/providers"
)

type stubSearcher struct {
	system  string
	records []entities.CodeRecord

	mu    sync.Mutex
	terms []string
}

func (s *stubSearcher) System() string { return s.system }

func (s *stubSearcher) Search(_ context.Context, term string, _ int) ([]entities.CodeRecord, error) {
	s.mu.Lock()
	s.terms = append(s.terms, term)
	s.mu.Unlock()

	out := make([]entities.CodeRecord, len(s.records))
	copy(out, s.records)
	for i := range out {
		out[i].SearchTerm = term
		out[i].Source = entities.Source{Adapter: s.system, Term: term}
	}
	return out, nil
}

type stubParentFetcher struct {
	display string
}

func (s *stubParentFetcher) FetchParent(_ context.Context, _, parentCode string) (string, string, bool, error) {
	return parentCode, s.display, true, nil
}

func newTestRunner(searchers map[string]providers.CodeSearcher, opts ...RunnerOption) *Runner {
	return NewRunner(
		services.NewClassifier(nil, 0.3),
		services.NewPlanner(nil),
		services.NewExecutor(searchers, 5, 10),
		services.NewReflector(3),
		services.NewConsolidator(5, 0.3),
		services.NewSummaryWriter(nil),
		opts...,
	)
}

func diabetesSearchers() map[string]providers.CodeSearcher {
	return map[string]providers.CodeSearcher{
		"ICD-10-CM": &stubSearcher{system: "ICD-10-CM", records: []entities.CodeRecord{
			{Code: "E11", Display: "Type 2 diabetes mellitus"},
			{Code: "E10", Display: "Type 1 diabetes mellitus"},
		}},
		"HPO": &stubSearcher{system: "HPO", records: nil},
	}
}

func TestRun_DiabetesEndToEnd(t *testing.T) {
	runner := newTestRunner(diabetesSearchers())

	state, err := runner.Run(context.Background(), "diabetes", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"HPO", "ICD-10-CM"}, state.SelectedSystems)
	assert.Equal(t, []string{"diabetes"}, state.SearchTerms)
	assert.Equal(t, 1, state.Iteration)
	assert.False(t, state.NeedsRefinement)

	require.Len(t, state.ConsolidatedResults, 2)
	assert.Equal(t, "ICD-10-CM", state.ConsolidatedResults[0].System)
	assert.Equal(t, "Found 2 results for 'diabetes': best match ICD-10-CM code E11 (Type 2 diabetes mellitus); 2 ICD-10-CM code(s).", state.Summary)
	assert.NotEmpty(t, state.ReasoningTrace)
	assert.Len(t, state.APICalls, 2)
}

func TestRun_TerminatesAtMaxIterations(t *testing.T) {
	searchers := map[string]providers.CodeSearcher{
		"ICD-10-CM": &stubSearcher{system: "ICD-10-CM"},
		"HPO":       &stubSearcher{system: "HPO"},
	}

	var nodes []string
	runner := newTestRunner(searchers, WithObserver(func(node string, _ State, _ time.Time) {
		nodes = append(nodes, node)
	}))

	state, err := runner.Run(context.Background(), "diabetes", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, state.Iteration)
	assert.Empty(t, state.ConsolidatedResults)
	assert.Contains(t, state.Summary, "No clinical codes found")
	assert.Contains(t, state.CoverageAssessment, "reached max iterations: 3")
	assert.Equal(t, []string{
		NodeClassify,
		NodePlan, NodeExecute, NodeReflect,
		NodePlan, NodeExecute, NodeReflect,
		NodePlan, NodeExecute, NodeReflect,
		NodeConsolidate, NodeSummarize,
	}, nodes)
}

func TestRun_CompoundQuerySplitsTerms(t *testing.T) {
	hcpcs := &stubSearcher{system: "HCPCS", records: []entities.CodeRecord{
		{Code: "E1130", Display: "Standard wheelchair"},
		{Code: "E0110", Display: "Crutches, underarm"},
	}}
	searchers := map[string]providers.CodeSearcher{"HCPCS": hcpcs}

	runner := newTestRunner(searchers)

	state, err := runner.Run(context.Background(), "wheelchair and crutches", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"wheelchair", "crutches"}, state.SearchTerms)
	assert.Contains(t, hcpcs.terms, "wheelchair")
	assert.Contains(t, hcpcs.terms, "crutches")
}

func TestRun_MultiHopAddsRelatedTerms(t *testing.T) {
	icd := &stubSearcher{system: "ICD-10-CM", records: []entities.CodeRecord{
		{Code: "E11", Display: "Type 2 diabetes mellitus"},
		{Code: "E10", Display: "Type 1 diabetes mellitus"},
	}}
	searchers := map[string]providers.CodeSearcher{
		"ICD-10-CM": icd,
		"HPO":       &stubSearcher{system: "HPO"},
	}

	expander := services.NewExpander(nil, nil, 0)
	runner := newTestRunner(searchers, WithExpander(expander))

	state, err := runner.Run(context.Background(), "diabetes", RunOptions{MultiHop: true})
	require.NoError(t, err)

	require.NotEmpty(t, state.RelatedTerms)
	assert.Contains(t, state.RelatedTerms, "diabetic neuropathy")
	assert.Contains(t, state.SearchTerms, "diabetic neuropathy")
	assert.Contains(t, icd.terms, "diabetic neuropathy")
}

type fakeQueryExpander struct {
	expansion entities.Expansion
}

func (f *fakeQueryExpander) Expand(_ context.Context, _ string, _ []string, _ int) (entities.Expansion, error) {
	return f.expansion, nil
}

func TestRun_MultiHopDeduplicatesRelatedTerms(t *testing.T) {
	searchers := diabetesSearchers()

	// "metformin" is already a search term after the compound split.
	expander := services.NewExpander(&fakeQueryExpander{
		expansion: entities.Expansion{Diagnoses: []string{"metformin", "diabetic neuropathy"}},
	}, nil, 0)
	runner := newTestRunner(searchers, WithExpander(expander))

	state, err := runner.Run(context.Background(), "diabetes and metformin", RunOptions{MultiHop: true})
	require.NoError(t, err)

	counts := map[string]int{}
	for _, term := range state.SearchTerms {
		counts[term]++
	}
	assert.Equal(t, 1, counts["metformin"])
	assert.Equal(t, 1, counts["diabetic neuropathy"])
}

func TestRun_HierarchyEnrichment(t *testing.T) {
	icd := &stubSearcher{system: "ICD-10-CM", records: []entities.CodeRecord{
		{Code: "E11.65", Display: "Type 2 diabetes mellitus with hyperglycemia"},
		{Code: "E11.9", Display: "Type 2 diabetes mellitus without complications"},
	}}
	searchers := map[string]providers.CodeSearcher{
		"ICD-10-CM": icd,
		"HPO":       &stubSearcher{system: "HPO"},
	}

	runner := newTestRunner(searchers,
		WithParentFetcher(&stubParentFetcher{display: "Type 2 diabetes mellitus"}))

	state, err := runner.Run(context.Background(), "diabetes", RunOptions{})
	require.NoError(t, err)

	require.Contains(t, state.HierarchyInfo, "E11.65")
	assert.Equal(t, "E11", state.HierarchyInfo["E11.65"].ParentCode)
	assert.Equal(t, "Type 2 diabetes mellitus", state.HierarchyInfo["E11.65"].ParentDisplay)
}

func TestRun_CheckpointsEveryNode(t *testing.T) {
	store := NewMemoryCheckpointStore()
	runner := newTestRunner(diabetesSearchers(), WithCheckpoints(store))

	_, err := runner.Run(context.Background(), "diabetes", RunOptions{ThreadID: "t1"})
	require.NoError(t, err)

	saved, err := store.Load(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "done", saved.Cursor)
	assert.NotEmpty(t, saved.Summary)
}

func TestRun_ResumeContinuesFromCursor(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	// A run interrupted after consolidation.
	interrupted := NewState("diabetes", false)
	interrupted.ConsolidatedResults = []entities.CodeResult{
		{System: "ICD-10-CM", Code: "E11", Display: "Type 2 diabetes mellitus", Confidence: 0.7},
	}
	interrupted.Cursor = NodeSummarize
	require.NoError(t, store.Save(ctx, "t1", interrupted))

	var nodes []string
	runner := newTestRunner(diabetesSearchers(),
		WithCheckpoints(store),
		WithObserver(func(node string, _ State, _ time.Time) {
			nodes = append(nodes, node)
		}))

	state, err := runner.Run(ctx, "diabetes", RunOptions{ThreadID: "t1", Resume: true})
	require.NoError(t, err)

	assert.Equal(t, []string{NodeSummarize}, nodes)
	assert.Equal(t, "Found 1 result for 'diabetes': ICD-10-CM code E11 (Type 2 diabetes mellitus).", state.Summary)
}

func TestRun_ResumeAtExpansionWithoutExpander(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	// A multi-hop run interrupted after planning, resumed on a runner with
	// expansion disabled.
	interrupted := NewState("diabetes", true)
	interrupted.SelectedSystems = []string{"ICD-10-CM", "HPO"}
	interrupted.SearchTerms = []string{"diabetes"}
	interrupted.Iteration = 1
	interrupted.Cursor = NodeExpand
	require.NoError(t, store.Save(ctx, "t1", interrupted))

	runner := newTestRunner(diabetesSearchers(), WithCheckpoints(store))

	state, err := runner.Run(ctx, "diabetes", RunOptions{ThreadID: "t1", Resume: true, MultiHop: true})
	require.NoError(t, err)

	assert.Empty(t, state.RelatedTerms)
	assert.NotEmpty(t, state.Summary)
}

func TestRun_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(diabetesSearchers())
	_, err := runner.Run(ctx, "diabetes", RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
