package services

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/domain/providers"
	"github.com/clintables/codefinder/internal/infrastructure/observability"
)

// DefaultMaxConcurrency bounds parallel terminology API calls.
const DefaultMaxConcurrency = 5

var (
	executorMetricsOnce sync.Once
	searchCounter       metric.Int64Counter
	searchDuration      metric.Float64Histogram
	searchErrorCounter  metric.Int64Counter
)

func initExecutorMetrics() {
	executorMetricsOnce.Do(func() {
		meter := otel.Meter("codefinder.executor")
		searchCounter, _ = meter.Int64Counter("search.count",
			metric.WithDescription("Terminology searches dispatched"))
		searchDuration, _ = meter.Float64Histogram("search.duration",
			metric.WithDescription("Terminology search duration in seconds"),
			metric.WithUnit("s"))
		searchErrorCounter, _ = meter.Int64Counter("search.errors",
			metric.WithDescription("Terminology searches that failed"))
	})
}

// Executor fans searches out across coding systems and terms with bounded
// concurrency, then merges per-system results deterministically.
type Executor struct {
	registry            map[string]providers.CodeSearcher
	maxConcurrency      int
	maxResultsPerSystem int
}

// ExecuteOutcome carries the merged results plus the call log for the pass.
type ExecuteOutcome struct {
	RawResults map[string][]entities.CodeRecord
	APICalls   []entities.CallRecord
}

// NewExecutor builds an executor over the given searchers. maxConcurrency
// and maxResultsPerSystem fall back to sane defaults when non-positive.
func NewExecutor(searchers map[string]providers.CodeSearcher, maxConcurrency, maxResultsPerSystem int) *Executor {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	if maxResultsPerSystem <= 0 {
		maxResultsPerSystem = 10
	}
	return &Executor{
		registry:            searchers,
		maxConcurrency:      maxConcurrency,
		maxResultsPerSystem: maxResultsPerSystem,
	}
}

type searchTask struct {
	system string
	term   string
	index  int
}

type searchResult struct {
	task    searchTask
	records []entities.CodeRecord
	err     error
}

// Execute runs every system x term combination, merging new records into
// existing by first occurrence of each code per system. One failed task
// never poisons the others; it is recorded in the call log instead.
func (e *Executor) Execute(ctx context.Context, systems, terms []string, existing map[string][]entities.CodeRecord) ExecuteOutcome {
	initExecutorMetrics()
	logger := observability.LoggerFromContext(ctx)

	tasks := make([]searchTask, 0, len(systems)*len(terms))
	for _, system := range systems {
		if _, ok := e.registry[system]; !ok {
			continue
		}
		for _, term := range terms {
			tasks = append(tasks, searchTask{system: system, term: term, index: len(tasks)})
		}
	}

	// Each task writes to its own slot, so the barrier merge below needs
	// no locking and the output order never depends on scheduling.
	slots := make([]searchResult, len(tasks))
	sem := make(chan struct{}, e.maxConcurrency)
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(t searchTask) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			records, err := e.registry[t.system].Search(ctx, t.term, e.maxResultsPerSystem)
			elapsed := time.Since(start)

			attrs := metric.WithAttributes(
				attribute.String("system", t.system),
			)
			if searchCounter != nil {
				searchCounter.Add(ctx, 1, attrs)
			}
			if searchDuration != nil {
				searchDuration.Record(ctx, elapsed.Seconds(), attrs)
			}
			if err != nil && searchErrorCounter != nil {
				searchErrorCounter.Add(ctx, 1, attrs)
			}

			slots[t.index] = searchResult{task: t, records: records, err: err}
		}(task)
	}
	wg.Wait()

	merged := make(map[string][]entities.CodeRecord, len(systems))
	for system, records := range existing {
		merged[system] = append([]entities.CodeRecord{}, records...)
	}

	calls := make([]entities.CallRecord, 0, len(tasks))
	for _, slot := range slots {
		call := entities.CallRecord{
			System: slot.task.system,
			Term:   slot.task.term,
			Status: "success",
			Count:  len(slot.records),
		}
		if slot.err != nil {
			call.Status = "error"
			call.Error = slot.err.Error()
			logger.Warn().Err(slot.err).
				Str("system", slot.task.system).
				Str("term", slot.task.term).
				Msg("terminology search failed")
		}
		calls = append(calls, call)

		merged[slot.task.system] = mergeByCode(merged[slot.task.system], slot.records)
	}

	return ExecuteOutcome{RawResults: merged, APICalls: calls}
}

// mergeByCode appends new records, keeping the first record seen per code.
func mergeByCode(existing, incoming []entities.CodeRecord) []entities.CodeRecord {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, rec := range existing {
		seen[rec.Code] = struct{}{}
	}
	merged := existing
	for _, rec := range incoming {
		if _, ok := seen[rec.Code]; ok {
			continue
		}
		seen[rec.Code] = struct{}{}
		merged = append(merged, rec)
	}
	return merged
}
