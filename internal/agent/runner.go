package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clintables/codefinder/internal/adapters/terminology"
	"github.com/clintables/codefinder/internal/application/services"
	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/infrastructure/observability"
)

// Pipeline node names, also used as checkpoint cursors.
const (
	NodeClassify    = "classify"
	NodePlan        = "plan"
	NodeExpand      = "multi_hop"
	NodeExecute     = "execute"
	NodeReflect     = "reflect"
	NodeConsolidate = "consolidate"
	NodeSummarize   = "summarize"
	nodeDone        = "done"
)

// maxHierarchyLookups bounds parallel parent-code fetches after
// consolidation.
const maxHierarchyLookups = 10

// ParentFetcher resolves a parent code in a terminology table. Satisfied by
// the clinical tables client.
type ParentFetcher interface {
	FetchParent(ctx context.Context, table, parentCode string) (code, display string, ok bool, err error)
}

// Observer receives a state snapshot after every node completes.
type Observer func(node string, state State, at time.Time)

// Runner wires the services into the
// classify -> plan -> [expand] -> execute -> reflect -> {plan | consolidate} -> summarize
// pipeline.
type Runner struct {
	classifier   *services.Classifier
	planner      *services.Planner
	expander     *services.Expander
	executor     *services.Executor
	reflector    *services.Reflector
	consolidator *services.Consolidator
	reranker     *services.Reranker
	summarizer   *services.SummaryWriter

	parents     ParentFetcher
	checkpoints CheckpointStore
	observer    Observer
}

// RunnerOption customizes optional runner collaborators.
type RunnerOption func(*Runner)

// WithExpander enables multi-hop term expansion.
func WithExpander(e *services.Expander) RunnerOption {
	return func(r *Runner) { r.expander = e }
}

// WithReranker enables semantic reranking of consolidated results.
func WithReranker(rr *services.Reranker) RunnerOption {
	return func(r *Runner) { r.reranker = rr }
}

// WithParentFetcher enables ICD-10-CM hierarchy enrichment.
func WithParentFetcher(p ParentFetcher) RunnerOption {
	return func(r *Runner) { r.parents = p }
}

// WithCheckpoints persists state after every node.
func WithCheckpoints(store CheckpointStore) RunnerOption {
	return func(r *Runner) { r.checkpoints = store }
}

// WithObserver streams node completions to the caller.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// NewRunner assembles a runner from the required services plus options.
func NewRunner(
	classifier *services.Classifier,
	planner *services.Planner,
	executor *services.Executor,
	reflector *services.Reflector,
	consolidator *services.Consolidator,
	summarizer *services.SummaryWriter,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		classifier:   classifier,
		planner:      planner,
		executor:     executor,
		reflector:    reflector,
		consolidator: consolidator,
		summarizer:   summarizer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOptions control a single agent run.
type RunOptions struct {
	// ThreadID keys the checkpoint; generated when empty.
	ThreadID string
	// MultiHop enables clinical relationship expansion.
	MultiHop bool
	// Resume continues a checkpointed run instead of starting over.
	Resume bool
}

// Run executes the pipeline for a query and returns the final state.
func (r *Runner) Run(ctx context.Context, query string, opts RunOptions) (*State, error) {
	logger := observability.LoggerFromContext(ctx)

	threadID := opts.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	state := NewState(query, opts.MultiHop)
	node := NodeClassify
	if opts.Resume && r.checkpoints != nil {
		saved, err := r.checkpoints.Load(ctx, threadID)
		if err != nil {
			return nil, err
		}
		if saved != nil && saved.Cursor != "" && saved.Cursor != nodeDone {
			state = saved
			node = saved.Cursor
			logger.Info().Str("thread_id", threadID).Str("node", node).Msg("resuming checkpointed run")
		}
	}

	logger.Info().Str("thread_id", threadID).Str("query", query).Msg("starting agent run")

	for node != nodeDone {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		next, err := r.step(ctx, state, node)
		if err != nil {
			return state, err
		}

		state.Cursor = next
		if r.checkpoints != nil {
			if err := r.checkpoints.Save(ctx, threadID, state); err != nil {
				logger.Warn().Err(err).Str("thread_id", threadID).Msg("checkpoint save failed")
			}
		}
		if r.observer != nil {
			r.observer(node, state.Clone(), time.Now())
		}
		node = next
	}

	logger.Info().
		Str("thread_id", threadID).
		Int("results", len(state.ConsolidatedResults)).
		Int("iterations", state.Iteration).
		Msg("agent run complete")
	return state, nil
}

// step runs one node, merges its update, and returns the next node.
func (r *Runner) step(ctx context.Context, state *State, node string) (string, error) {
	switch node {
	case NodeClassify:
		outcome := r.classifier.Classify(ctx, state.Query)
		state.Apply(Update{
			IntentScores:    &outcome.Scores,
			SelectedSystems: outcome.Systems,
			ReasoningTrace:  []string{outcome.Reasoning},
		})
		return NodePlan, nil

	case NodePlan:
		outcome := r.planner.Plan(ctx, state.Query, state.Iteration, state.SearchTerms,
			state.NeedsRefinement, state.RefinementStrategy, state.SelectedSystems, state.RawResults)
		state.Apply(Update{
			SearchTerms:    outcome.SearchTerms,
			Iteration:      &outcome.Iteration,
			ReasoningTrace: []string{outcome.Reasoning},
		})
		if state.MultiHopEnabled && r.expander != nil && state.Iteration == 1 {
			return NodeExpand, nil
		}
		return NodeExecute, nil

	case NodeExpand:
		// A resumed checkpoint can carry this cursor even when the runner
		// was built without an expander.
		if r.expander == nil {
			return NodeExecute, nil
		}
		related := r.expander.RelatedTerms(ctx, state.Query, state.SelectedSystems)
		if len(related) == 0 {
			state.Apply(Update{ReasoningTrace: []string{"Multi-hop: No clinical relationships found"}})
			return NodeExecute, nil
		}
		preview := related
		if len(preview) > 3 {
			preview = preview[:3]
		}
		state.Apply(Update{
			RelatedTerms: related,
			SearchTerms:  services.MergeTerms(state.SearchTerms, related),
			ReasoningTrace: []string{fmt.Sprintf("Multi-hop: Added %d related terms: %s...",
				len(related), strings.Join(preview, ", "))},
		})
		return NodeExecute, nil

	case NodeExecute:
		outcome := r.executor.Execute(ctx, state.SelectedSystems, state.SearchTerms, state.RawResults)
		total := 0
		for _, records := range outcome.RawResults {
			total += len(records)
		}
		state.Apply(Update{
			RawResults: outcome.RawResults,
			APICalls:   outcome.APICalls,
			ReasoningTrace: []string{fmt.Sprintf("Executed %d searches, %d results total",
				len(outcome.APICalls), total)},
		})
		return NodeReflect, nil

	case NodeReflect:
		outcome := r.reflector.Reflect(state.Query, state.RawResults, state.Iteration)
		state.Apply(Update{
			CoverageAssessment: &outcome.Assessment,
			NeedsRefinement:    &outcome.NeedsRefinement,
			RefinementStrategy: &outcome.Strategy,
			ReasoningTrace:     []string{outcome.Reasoning},
		})
		if outcome.NeedsRefinement {
			return NodePlan, nil
		}
		return NodeConsolidate, nil

	case NodeConsolidate:
		results := r.consolidator.Consolidate(state.RawResults, state.SelectedSystems, state.Query)
		if r.reranker != nil {
			results = r.reranker.Rerank(ctx, state.Query, results)
		}
		update := Update{
			ConsolidatedResults: results,
			ReasoningTrace:      []string{fmt.Sprintf("Consolidated to %d results", len(results))},
		}
		if r.parents != nil {
			update.HierarchyInfo = r.fetchHierarchies(ctx, results)
		}
		state.Apply(update)
		return NodeSummarize, nil

	case NodeSummarize:
		summary := r.summarizer.Summarize(ctx, state.Query, state.ConsolidatedResults)
		state.Apply(Update{
			Summary: &summary,
			ReasoningTrace: []string{fmt.Sprintf("Generated summary for %d results",
				len(state.ConsolidatedResults))},
		})
		return nodeDone, nil
	}
	return "", fmt.Errorf("unknown pipeline node %q", node)
}

// fetchHierarchies resolves parent codes for the top ICD-10-CM results in
// parallel. The hierarchy is encoded in the code itself: E11.65 has parent
// E11.
func (r *Runner) fetchHierarchies(ctx context.Context, results []entities.CodeResult) map[string]entities.ParentInfo {
	type lookup struct {
		code   string
		parent string
	}
	var lookups []lookup
	for _, res := range results {
		if len(lookups) == maxHierarchyLookups {
			break
		}
		if res.System != terminology.SystemICD10 {
			continue
		}
		parts := strings.SplitN(res.Code, ".", 2)
		if len(parts) != 2 {
			continue
		}
		lookups = append(lookups, lookup{code: res.Code, parent: parts[0]})
	}
	if len(lookups) == 0 {
		return nil
	}

	var mu sync.Mutex
	hierarchies := make(map[string]entities.ParentInfo, len(lookups))
	var wg sync.WaitGroup
	for _, l := range lookups {
		wg.Add(1)
		go func(l lookup) {
			defer wg.Done()
			code, display, ok, err := r.parents.FetchParent(ctx, "icd10cm", l.parent)
			if err != nil || !ok {
				return
			}
			mu.Lock()
			hierarchies[l.code] = entities.ParentInfo{ParentCode: code, ParentDisplay: display}
			mu.Unlock()
		}(l)
	}
	wg.Wait()

	if len(hierarchies) == 0 {
		return nil
	}
	return hierarchies
}
