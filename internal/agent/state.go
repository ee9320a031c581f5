// Package agent drives the classify-plan-execute-reflect-consolidate
// state machine over the terminology services.
package agent

import (
	"github.com/clintables/codefinder/internal/domain/entities"
)

// State is the full run state threaded through the pipeline. It is
// JSON-serializable so runs can be checkpointed and resumed.
type State struct {
	Query string `json:"query"`

	// Classification
	IntentScores    entities.IntentScores `json:"intent_scores"`
	SelectedSystems []string              `json:"selected_systems"`

	// Planning
	SearchTerms []string `json:"search_terms"`
	Iteration   int      `json:"iteration"`

	// Expansion
	MultiHopEnabled bool     `json:"multi_hop_enabled"`
	RelatedTerms    []string `json:"related_terms"`

	// Execution
	RawResults map[string][]entities.CodeRecord `json:"raw_results"`
	APICalls   []entities.CallRecord            `json:"api_calls"`

	// Reflection
	CoverageAssessment string `json:"coverage_assessment"`
	NeedsRefinement    bool   `json:"needs_refinement"`
	RefinementStrategy string `json:"refinement_strategy"`

	// Consolidation
	ConsolidatedResults []entities.CodeResult          `json:"consolidated_results"`
	HierarchyInfo       map[string]entities.ParentInfo `json:"hierarchy_info,omitempty"`

	// Summary
	Summary string `json:"summary"`

	// Append-only audit trail of node decisions.
	ReasoningTrace []string `json:"reasoning_trace"`

	// Cursor is the next node to run, kept for checkpoint resume.
	Cursor string `json:"cursor,omitempty"`
}

// NewState creates the initial state for a query.
func NewState(query string, multiHop bool) *State {
	return &State{
		Query:           query,
		MultiHopEnabled: multiHop,
		RawResults:      map[string][]entities.CodeRecord{},
	}
}

// Update is a partial state change produced by one node. Nil fields leave
// the current state untouched; ReasoningTrace entries always append. Each
// node owns a disjoint set of fields, so updates never conflict.
type Update struct {
	IntentScores    *entities.IntentScores
	SelectedSystems []string

	SearchTerms []string
	Iteration   *int

	RelatedTerms []string

	RawResults map[string][]entities.CodeRecord
	APICalls   []entities.CallRecord

	CoverageAssessment *string
	NeedsRefinement    *bool
	RefinementStrategy *string

	ConsolidatedResults []entities.CodeResult
	HierarchyInfo       map[string]entities.ParentInfo

	Summary *string

	ReasoningTrace []string
}

// Apply merges an update into the state. Slices and maps replace wholesale
// except APICalls and ReasoningTrace, which are append-only.
func (s *State) Apply(u Update) {
	if u.IntentScores != nil {
		s.IntentScores = *u.IntentScores
	}
	if u.SelectedSystems != nil {
		s.SelectedSystems = u.SelectedSystems
	}
	if u.SearchTerms != nil {
		s.SearchTerms = u.SearchTerms
	}
	if u.Iteration != nil {
		s.Iteration = *u.Iteration
	}
	if u.RelatedTerms != nil {
		s.RelatedTerms = u.RelatedTerms
	}
	if u.RawResults != nil {
		s.RawResults = u.RawResults
	}
	s.APICalls = append(s.APICalls, u.APICalls...)
	if u.CoverageAssessment != nil {
		s.CoverageAssessment = *u.CoverageAssessment
	}
	if u.NeedsRefinement != nil {
		s.NeedsRefinement = *u.NeedsRefinement
	}
	if u.RefinementStrategy != nil {
		s.RefinementStrategy = *u.RefinementStrategy
	}
	if u.ConsolidatedResults != nil {
		s.ConsolidatedResults = u.ConsolidatedResults
	}
	if u.HierarchyInfo != nil {
		s.HierarchyInfo = u.HierarchyInfo
	}
	if u.Summary != nil {
		s.Summary = *u.Summary
	}
	s.ReasoningTrace = append(s.ReasoningTrace, u.ReasoningTrace...)
}

// Clone returns a deep-enough copy for observer snapshots: slices and maps
// are copied one level down so later node merges cannot mutate the snapshot.
func (s *State) Clone() State {
	c := *s
	c.SelectedSystems = append([]string(nil), s.SelectedSystems...)
	c.SearchTerms = append([]string(nil), s.SearchTerms...)
	c.RelatedTerms = append([]string(nil), s.RelatedTerms...)
	c.APICalls = append([]entities.CallRecord(nil), s.APICalls...)
	c.ConsolidatedResults = append([]entities.CodeResult(nil), s.ConsolidatedResults...)
	c.ReasoningTrace = append([]string(nil), s.ReasoningTrace...)
	if s.RawResults != nil {
		c.RawResults = make(map[string][]entities.CodeRecord, len(s.RawResults))
		for k, v := range s.RawResults {
			c.RawResults[k] = append([]entities.CodeRecord(nil), v...)
		}
	}
	if s.HierarchyInfo != nil {
		c.HierarchyInfo = make(map[string]entities.ParentInfo, len(s.HierarchyInfo))
		for k, v := range s.HierarchyInfo {
			c.HierarchyInfo[k] = v
		}
	}
	return c
}
