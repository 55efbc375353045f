package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/sokoban-player/internal/logging"
	"github.com/ChuLiYu/sokoban-player/internal/solver"
	"github.com/ChuLiYu/sokoban-player/internal/tui"
	"github.com/ChuLiYu/sokoban-player/internal/watch"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

type solveOptions struct {
	algorithm string
	memoryMB  int
	plain     bool
	watch     bool
}

func buildSolveCommand() *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve [map]",
		Short: "Solve a map and play the solution",
		Long: `Run the external solver on a map file and replay the boards it returns.
Without a map argument the configured default map is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			req, err := buildRequest(cfg, args, opts, cmd.Flags().Changed("memory"))
			if err != nil {
				return err
			}
			return runSolve(cmd.Context(), cfg, req, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "search algorithm: astar, dfs, bfs (default from config)")
	cmd.Flags().IntVarP(&opts.memoryMB, "memory", "m", 0, "solver memory budget in MB (default from config)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print boards as text, play to the end and exit")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "solve again whenever the map file changes")

	return cmd
}

// buildRequest merges arguments and flags over the configured defaults.
// In plain mode the request is validated up front so no UI is needed to
// report a bad map path.
func buildRequest(cfg *Config, args []string, opts solveOptions, memorySet bool) (types.SolveRequest, error) {
	req, err := cfg.DefaultRequest()
	if err != nil {
		return types.SolveRequest{}, err
	}
	if len(args) == 1 {
		req.MapPath = args[0]
	}

	algorithm := req.Algorithm.String()
	if opts.algorithm != "" {
		algorithm = opts.algorithm
	}
	memory := req.MemoryBudgetMB
	if memorySet {
		memory = opts.memoryMB
	}

	if opts.plain {
		return solver.ParseRequest(req.MapPath, algorithm, strconv.Itoa(memory))
	}

	algo, err := types.ParseAlgorithm(algorithm)
	if err != nil {
		return types.SolveRequest{}, types.WrapError(types.KindInvalidRequest, err, "invalid algorithm")
	}
	req.Algorithm = algo
	req.MemoryBudgetMB = memory
	return req, nil
}

func runSolve(ctx context.Context, cfg *Config, req types.SolveRequest, opts solveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.plain {
		adapter := newPlainAdapter(os.Stdout)
		s, err := newSession(cfg, adapter, false)
		if err != nil {
			return err
		}
		defer s.close()

		return s.run(ctx, func(ctx context.Context) error {
			if opts.watch {
				stop, err := startWatch(ctx, s, req.MapPath)
				if err != nil {
					return err
				}
				defer stop()
			}
			if err := issue(s.ctrl, req); err != nil {
				return err
			}
			return runPlain(ctx, s.ctrl, adapter, opts.watch)
		})
	}

	adapter := tui.NewAdapter()
	s, err := newSession(cfg, adapter, true)
	if err != nil {
		return err
	}
	defer s.close()

	return s.run(ctx, func(ctx context.Context) error {
		if opts.watch {
			stop, err := startWatch(ctx, s, req.MapPath)
			if err != nil {
				return err
			}
			defer stop()
		}
		model := tui.NewModel(s.ctrl, tui.WithInitialRequest(req))
		return tui.Run(ctx, model, adapter)
	})
}

// startWatch re-issues the last request on every change of mapPath.
// A change arriving while a solve runs is logged and skipped.
func startWatch(ctx context.Context, s *session, mapPath string) (func(), error) {
	log := logging.Component(s.log, "watch")
	w, err := watch.New(mapPath, func(path string) {
		if st := s.ctrl.GetStatus(); st.Solving {
			log.Info().Str("map", path).Str("solve_id", st.Running.String()).Msg("Re-solve skipped, solve in progress")
			return
		}
		if _, err := s.ctrl.Resolve(); err != nil {
			log.Warn().Err(err).Msg("Re-solve skipped")
		}
	}, watch.WithDebounce(s.cfg.Watch.Debounce), watch.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return func() {
		w.Stop()
		log.Info().Str("map", w.Path()).Int("changes", w.Fired()).Msg("Stopped watching map file")
	}, nil
}
