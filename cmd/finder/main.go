package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clintables/codefinder/internal/adapters/cache"
	"github.com/clintables/codefinder/internal/adapters/terminology"
	"github.com/clintables/codefinder/internal/agent"
	"github.com/clintables/codefinder/internal/application/services"
	"github.com/clintables/codefinder/internal/domain/providers"
	"github.com/clintables/codefinder/internal/infrastructure/clients/clinicaltables"
	"github.com/clintables/codefinder/internal/infrastructure/clients/openai"
	redisclient "github.com/clintables/codefinder/internal/infrastructure/clients/redis"
	"github.com/clintables/codefinder/internal/infrastructure/clients/reranker"
	"github.com/clintables/codefinder/internal/infrastructure/observability"
	"github.com/clintables/codefinder/pkg/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "finder",
		Short:   "Clinical code finder over the NLM Clinical Tables API",
		Version: version,
	}
	root.AddCommand(newSearchCmd())
	return root
}

func newSearchCmd() *cobra.Command {
	var (
		multiHop   bool
		rerank     bool
		jsonOutput bool
		threadID   string
		resume     bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find clinical codes matching a free-text query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			observability.InitLogger("codefinder", os.Getenv("APP_ENV"))
			logger := observability.GetLogger()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cmd.Flags().Changed("multi-hop") {
				cfg.Agent.MultiHopEnabled = multiHop
			}
			if cmd.Flags().Changed("rerank") {
				cfg.Reranker.Enabled = rerank
			}

			runner, cleanup, err := buildRunner(ctx, cfg, verbose)
			if err != nil {
				return err
			}
			defer cleanup()

			state, err := runner.Run(ctx, args[0], agent.RunOptions{
				ThreadID: threadID,
				MultiHop: cfg.Agent.MultiHopEnabled,
				Resume:   resume,
			})
			if err != nil {
				logger.Error().Err(err).Msg("agent run failed")
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(state)
			}
			printState(state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&multiHop, "multi-hop", false, "expand the search with clinically related terms")
	cmd.Flags().BoolVar(&rerank, "rerank", false, "rerank results with the semantic scoring service")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the full final state as JSON")
	cmd.Flags().StringVar(&threadID, "thread", "", "thread ID for checkpointing")
	cmd.Flags().BoolVar(&resume, "resume", false, "resume a checkpointed run (requires --thread)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print node progress while running")
	return cmd
}

// buildRunner wires the full service graph from configuration. The returned
// cleanup closes any held connections.
func buildRunner(ctx context.Context, cfg *config.Config, verbose bool) (*agent.Runner, func(), error) {
	logger := observability.GetLogger()
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var apiCache providers.CacheProvider
	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case "redis":
			rc, err := redisclient.NewClient(&cfg.Redis)
			if err != nil {
				logger.Warn().Err(err).Msg("redis unavailable, falling back to in-memory cache")
				apiCache = cache.NewMemoryAdapter(cfg.Cache.MaxSize, cfg.Cache.TTLSeconds)
			} else {
				cleanups = append(cleanups, func() { rc.Close() })
				apiCache = cache.NewRedisAdapter(rc)
			}
		default:
			apiCache = cache.NewMemoryAdapter(cfg.Cache.MaxSize, cfg.Cache.TTLSeconds)
		}
	}

	var ctOpts []clinicaltables.Option
	if apiCache != nil {
		ctOpts = append(ctOpts, clinicaltables.WithCache(apiCache, cfg.Cache.TTLSeconds))
	}
	ctClient := clinicaltables.NewClient(&cfg.API, ctOpts...)
	registry := terminology.NewRegistry(ctClient)

	aiClient, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	classifier := services.NewClassifier(aiClient, cfg.Agent.ConfidenceThreshold)
	planner := services.NewPlanner(aiClient)
	executor := services.NewExecutor(registry.Searchers(), cfg.Agent.MaxConcurrency, cfg.API.MaxResultsPerSystem)
	reflector := services.NewReflector(cfg.Agent.MaxIterations)
	consolidator := services.NewConsolidator(services.DefaultTopKPerSystem, cfg.Agent.ConfidenceThreshold)
	summarizer := services.NewSummaryWriter(aiClient)

	opts := []agent.RunnerOption{
		agent.WithParentFetcher(ctClient),
	}

	if cfg.Expansion.Enabled {
		var expCache providers.CacheProvider
		if apiCache != nil {
			expCache = apiCache
		}
		expander := services.NewExpander(aiClient, expCache, cfg.Expansion.CacheTTLSeconds)
		opts = append(opts, agent.WithExpander(expander))
	}

	if cfg.Reranker.Enabled {
		scorer := reranker.NewClient(cfg.Reranker.URL)
		rr := services.NewReranker(scorer, true, cfg.Reranker.WeightSemantic, cfg.Reranker.WeightLexical)
		opts = append(opts, agent.WithReranker(rr))
	}

	if cfg.Checkpoint.Enabled {
		var store agent.CheckpointStore
		switch cfg.Checkpoint.Backend {
		case "sqlite":
			sqliteStore, err := agent.NewSQLiteCheckpointStore(ctx, cfg.Checkpoint.SQLitePath)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			cleanups = append(cleanups, func() { sqliteStore.Close() })
			store = sqliteStore
		default:
			store = agent.NewMemoryCheckpointStore()
		}
		opts = append(opts, agent.WithCheckpoints(store))
	}

	if verbose {
		opts = append(opts, agent.WithObserver(func(node string, state agent.State, at time.Time) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", at.Format("15:04:05"), node)
			if n := len(state.ReasoningTrace); n > 0 {
				fmt.Fprintf(os.Stderr, "    %s\n", state.ReasoningTrace[n-1])
			}
		}))
	}

	runner := agent.NewRunner(classifier, planner, executor, reflector, consolidator, summarizer, opts...)
	return runner, cleanup, nil
}

func printState(state *agent.State) {
	fmt.Println(state.Summary)
	if len(state.ConsolidatedResults) == 0 {
		return
	}

	fmt.Println()
	for _, r := range state.ConsolidatedResults {
		fmt.Printf("  %-10s %-12s %s (%.2f)\n", r.System, r.Code, r.Display, r.Confidence)
		if parent, ok := state.HierarchyInfo[r.Code]; ok {
			fmt.Printf("  %-10s   parent: %s %s\n", "", parent.ParentCode, parent.ParentDisplay)
		}
	}
}
