package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/controller"
	"github.com/ChuLiYu/sokoban-player/internal/snapshot"
	"github.com/ChuLiYu/sokoban-player/internal/storage/wal"
	"github.com/ChuLiYu/sokoban-player/internal/watch"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

type execFunc func(ctx context.Context, req types.SolveRequest) (board.Trace, error)

func (f execFunc) Solve(ctx context.Context, req types.SolveRequest) (board.Trace, error) {
	return f(ctx, req)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeMap(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "box.txt")
	require.NoError(t, os.WriteFile(path, []byte("#####\n#@$.#\n#####\n"), 0644))
	return path
}

func threeSteps(t *testing.T) board.Trace {
	t.Helper()
	trace, err := board.TraceFromGrids([][][]int{
		{{0, 5, 3, 2, 1, 0}},
		{{0, 2, 5, 3, 1, 0}},
		{{0, 2, 2, 5, 4, 0}},
	})
	require.NoError(t, err)
	return trace
}

// execute runs the root command with args and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := BuildCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// ============================================================================
// Command tree
// ============================================================================

func TestBuildCLI(t *testing.T) {
	cmd := BuildCLI()

	assert.NotNil(t, cmd, "BuildCLI should return a non-nil command")
	assert.Equal(t, "sokoban-player", cmd.Use)
	assert.Equal(t, Version, cmd.Version)

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"solve", "play", "history", "status"} {
		assert.True(t, names[want], "missing %q command", want)
	}

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag, "Should have --config flag")
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, DefaultConfigPath, configFlag.DefValue)
}

func TestBuildSolveCommand(t *testing.T) {
	cmd := buildSolveCommand()

	assert.Equal(t, "solve", cmd.Name())
	assert.NotNil(t, cmd.RunE)
	for _, flag := range []string{"algorithm", "memory", "plain", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing --%s", flag)
	}
	assert.Equal(t, "a", cmd.Flags().Lookup("algorithm").Shorthand)
}

func TestBuildPlayCommand(t *testing.T) {
	cmd := buildPlayCommand()

	assert.Equal(t, "play", cmd.Name())
	assert.NotNil(t, cmd.Flags().Lookup("plain"))
}

// ============================================================================
// Configuration
// ============================================================================

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
solver:
  executable: /opt/solver/sokoban_solver
  search_dirs: [/usr/local/bin]
  timeout: 30s
  default_map: maps/level1.txt
  default_algorithm: bfs
  default_memory_mb: 256

playback:
  interval: 80ms

storage:
  trace_path: ./state/last.json
  journal_path: ./state/solves.wal
  sync_journal: true

metrics:
  enabled: true
  port: 8080

logging:
  level: debug
  format: json
  output: stdout
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/solver/sokoban_solver", cfg.Solver.Executable)
	assert.Equal(t, []string{"/usr/local/bin"}, cfg.Solver.SearchDirs)
	assert.Equal(t, 30*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, 80*time.Millisecond, cfg.Playback.Interval)
	assert.True(t, cfg.Storage.SyncJournal)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8080, cfg.Metrics.Port)
	assert.Equal(t, "json", cfg.Logging.Format)

	req, err := cfg.DefaultRequest()
	require.NoError(t, err)
	assert.Equal(t, types.SolveRequest{MapPath: "maps/level1.txt", Algorithm: types.AlgorithmBFS, MemoryBudgetMB: 256}, req)
}

func TestLoadConfig_FileNotFoundUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 150*time.Millisecond, cfg.Playback.Interval)
	assert.Equal(t, 100, cfg.Solver.DefaultMemoryMB)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `
solver:
  default_memory_mb: "not a number"
  invalid yaml structure
    broken indentation
`)

	cfg, err := loadConfig(path)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_PartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
solver:
  default_algorithm: dfs
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dfs", cfg.Solver.DefaultAlgorithm)
	assert.Equal(t, 100, cfg.Solver.DefaultMemoryMB, "unset fields keep their defaults")
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, watch.DefaultDebounce, cfg.Watch.Debounce)
	assert.Empty(t, cfg.Solver.Env)
}

func TestLoadConfig_WatchAndSolverEnv(t *testing.T) {
	path := writeConfig(t, `
solver:
  env: [MOCKSOLVER_MODE=unsolvable]
watch:
  debounce: 50ms
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"MOCKSOLVER_MODE=unsolvable"}, cfg.Solver.Env)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown algorithm", "solver:\n  default_algorithm: greedy\n"},
		{"zero memory", "solver:\n  default_memory_mb: 0\n"},
		{"negative interval", "playback:\n  interval: -1s\n"},
		{"bad port", "metrics:\n  port: 70000\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"env without value", "solver:\n  env: [VERBOSE]\n"},
		{"negative debounce", "watch:\n  debounce: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

// ============================================================================
// Request building
// ============================================================================

func TestBuildRequest(t *testing.T) {
	cfg := DefaultConfig()
	mapPath := writeMap(t)

	req, err := buildRequest(cfg, []string{mapPath}, solveOptions{algorithm: "dfs", memoryMB: 64}, true)
	require.NoError(t, err)
	assert.Equal(t, types.SolveRequest{MapPath: mapPath, Algorithm: types.AlgorithmDFS, MemoryBudgetMB: 64}, req)

	req, err = buildRequest(cfg, []string{mapPath}, solveOptions{memoryMB: 64}, false)
	require.NoError(t, err)
	assert.Equal(t, types.AlgorithmAStar, req.Algorithm, "algorithm from config")
	assert.Equal(t, 100, req.MemoryBudgetMB, "memory flag ignored unless set")
}

func TestBuildRequestInteractiveDefersMapCheck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Solver.DefaultMap = filepath.Join(t.TempDir(), "missing.txt")

	_, err := buildRequest(cfg, nil, solveOptions{}, false)
	assert.NoError(t, err, "the UI reports a bad map itself")

	_, err = buildRequest(cfg, nil, solveOptions{plain: true}, false)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = buildRequest(cfg, nil, solveOptions{algorithm: "greedy"}, false)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

// ============================================================================
// Plain mode
// ============================================================================

func newPlainController(t *testing.T, exec execFunc, a *plainAdapter) *controller.Controller {
	t.Helper()
	ctrl, err := controller.NewController(exec, a, controller.Config{PlaybackInterval: 5 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, ctrl.Start())
	t.Cleanup(ctrl.Stop)
	return ctrl
}

func TestRunPlainPlaysToEnd(t *testing.T) {
	var out bytes.Buffer
	a := newPlainAdapter(&out)
	trace := threeSteps(t)
	ctrl := newPlainController(t, func(context.Context, types.SolveRequest) (board.Trace, error) {
		return trace, nil
	}, a)

	req := types.SolveRequest{MapPath: writeMap(t), Algorithm: types.AlgorithmAStar, MemoryBudgetMB: 100}
	require.NoError(t, issue(ctrl, req))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, runPlain(ctx, ctrl, a, false))
	ctrl.Stop()

	text := out.String()
	assert.Contains(t, text, "Engine is thinking...")
	assert.Contains(t, text, "Solution Found! Steps: 3")
	assert.Contains(t, text, "STEP: 1 / 3")
	assert.Contains(t, text, "STEP: 3 / 3")
	assert.Equal(t, 2, ctrl.Player().State().Position)
}

func TestRunPlainReturnsSolveFailure(t *testing.T) {
	var out bytes.Buffer
	a := newPlainAdapter(&out)
	ctrl := newPlainController(t, func(context.Context, types.SolveRequest) (board.Trace, error) {
		return board.Trace{}, types.NewError(types.KindSolverReportedError, "Map not solvable")
	}, a)

	req := types.SolveRequest{MapPath: writeMap(t), Algorithm: types.AlgorithmAStar, MemoryBudgetMB: 100}
	require.NoError(t, issue(ctrl, req))

	err := runPlain(context.Background(), ctrl, a, false)
	assert.ErrorIs(t, err, types.ErrSolverReportedError)
	ctrl.Stop()
	assert.Contains(t, out.String(), "No solution found: Map not solvable")
}

func TestRunPlainInvalidRequest(t *testing.T) {
	var out bytes.Buffer
	a := newPlainAdapter(&out)
	ctrl := newPlainController(t, func(context.Context, types.SolveRequest) (board.Trace, error) {
		t.Error("solver must not run")
		return board.Trace{}, nil
	}, a)

	req := types.SolveRequest{MapPath: "", Algorithm: types.AlgorithmAStar, MemoryBudgetMB: 100}
	require.NoError(t, issue(ctrl, req), "kind errors arrive through the adapter")
	assert.ErrorIs(t, runPlain(context.Background(), ctrl, a, false), types.ErrInvalidRequest)
}

func TestRunPlainStopsOnCancel(t *testing.T) {
	a := newPlainAdapter(&bytes.Buffer{})
	ctrl := newPlainController(t, func(ctx context.Context, _ types.SolveRequest) (board.Trace, error) {
		<-ctx.Done()
		return board.Trace{}, ctx.Err()
	}, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, runPlain(ctx, ctrl, a, true))
}

func TestWatchResolvesOnMapChange(t *testing.T) {
	var calls atomic.Int32
	trace := threeSteps(t)
	ctrl := newPlainController(t, func(context.Context, types.SolveRequest) (board.Trace, error) {
		calls.Add(1)
		return trace, nil
	}, newPlainAdapter(&bytes.Buffer{}))

	mapPath := writeMap(t)
	_, err := ctrl.Solve(types.SolveRequest{MapPath: mapPath, Algorithm: types.AlgorithmBFS, MemoryBudgetMB: 64})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !ctrl.GetStatus().Solving }, 2*time.Second, 5*time.Millisecond)

	cfg := DefaultConfig()
	cfg.Watch.Debounce = 20 * time.Millisecond
	var logs bytes.Buffer
	s := &session{cfg: cfg, log: zerolog.New(&logs), ctrl: ctrl}

	stop, err := startWatch(context.Background(), s, mapPath)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(mapPath, []byte("######\n#@$ .#\n######\n"), 0644))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !ctrl.GetStatus().Solving }, 2*time.Second, 5*time.Millisecond)
	stop()

	assert.Regexp(t, `"changes":[1-9]`, logs.String())
	assert.Contains(t, logs.String(), "Stopped watching map file")
}

// ============================================================================
// history and status
// ============================================================================

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	journal := filepath.Join(dir, "solves.wal")
	cfgPath := writeConfig(t, "storage:\n  journal_path: "+journal+"\n")

	out, err := execute(t, "history", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No solve attempts recorded.")

	w, err := wal.NewWAL(journal, false)
	require.NoError(t, err)
	req := types.SolveRequest{MapPath: "box.txt", Algorithm: types.AlgorithmBFS, MemoryBudgetMB: 64}
	for _, e := range []wal.Event{
		{Type: wal.EventStarted, SolveID: "a", Request: &req},
		{Type: wal.EventSucceeded, SolveID: "a", Steps: 12, DurationMs: 250},
		{Type: wal.EventStarted, SolveID: "b", Request: &req},
		{Type: wal.EventFailed, SolveID: "b", Kind: "SolverReportedError", Message: "unsolvable"},
		{Type: wal.EventStarted, SolveID: "c", Request: &req},
	} {
		_, err := w.Append(e)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	out, err = execute(t, "history", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "SUCCEEDED")
	assert.Contains(t, out, "SolverReportedError: unsolvable")
	assert.Contains(t, out, "BFS")
	assert.NotContains(t, out, "RUNNING")

	out, err = execute(t, "history", "--all", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "RUNNING")

	out, err = execute(t, "history", "--dump", "-c", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "[Seq:"))
}

func TestStatusCommand(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "last.json")
	cfgPath := writeConfig(t, `
solver:
  executable: definitely-missing-solver
storage:
  trace_path: `+tracePath+`
  journal_path: `+filepath.Join(dir, "solves.wal")+`
`)

	out, err := execute(t, "status", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Sokoban Player Status")
	assert.Contains(t, out, "definitely-missing-solver not found")
	assert.Contains(t, out, "none yet")
	assert.Contains(t, out, "Disabled")

	mgr := snapshot.NewManager(tracePath)
	require.NoError(t, mgr.Write(snapshot.Record{
		Request: types.SolveRequest{MapPath: "box.txt", MemoryBudgetMB: 100},
		Trace:   threeSteps(t),
	}))

	out, err = execute(t, "status", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Steps:        3")
}

func TestStatusReportsJournalDamage(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "solves.wal")
	cfgPath := writeConfig(t, "storage:\n  journal_path: "+journal+"\n")

	w, err := wal.NewWAL(journal, false)
	require.NoError(t, err)
	req := types.SolveRequest{MapPath: "box.txt", Algorithm: types.AlgorithmBFS, MemoryBudgetMB: 64}
	_, err = w.Append(wal.Event{Type: wal.EventStarted, SolveID: "a", Request: &req})
	require.NoError(t, err)
	_, err = w.Append(wal.Event{Type: wal.EventSucceeded, SolveID: "a", Steps: 3})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := execute(t, "status", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "all checksums valid")
	assert.Contains(t, out, "Success Rate: 100.0%")

	f, err := os.OpenFile(journal, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err = execute(t, "status", "-c", cfgPath)
	require.NoError(t, err)
	assert.NotContains(t, out, "all checksums valid")
	assert.Contains(t, out, "statistics are partial")
	assert.Contains(t, out, "seq 1..2")
}

func TestPlayCommandMissingSolution(t *testing.T) {
	cfgPath := writeConfig(t, "storage:\n  trace_path: "+filepath.Join(t.TempDir(), "none.json")+"\n")

	_, err := execute(t, "play", "--plain", "-c", cfgPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
}
