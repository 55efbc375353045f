// ============================================================================
// Sokoban Player - Solver Runner
// ============================================================================
//
// Package: internal/solver
// File: runner.go
// Purpose: Spawn exactly one solver process per request, capture stdout and
//          stderr separately, reap it, and enforce the exit-code contract.
//
// Wire contract (must not change):
//   <executable> <algorithm:int> <memoryBudgetMB:int> <mapFilePath>
//
// Failure mapping:
//   executable missing        -> ExecutableNotFound
//   start failure / exit != 0 -> SolverExecutionFailed (stderr, else stdout)
//   timeout / cancellation    -> SolverExecutionFailed wrapping ctx.Err()
//
// No retry: a failed solve is surfaced to the caller, who may re-issue.
//
// ============================================================================

package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// waitDelay bounds how long Run waits for output pipes after the process is killed
const waitDelay = 2 * time.Second

// BuildArgs returns the three positional arguments after the executable.
func BuildArgs(req types.SolveRequest) []string {
	return []string{
		strconv.Itoa(int(req.Algorithm)),
		strconv.Itoa(req.MemoryBudgetMB),
		req.MapPath,
	}
}

// BuildCommandLine returns the full argv: executable, algorithm, memory, map path.
func BuildCommandLine(executable string, req types.SolveRequest) []string {
	return append([]string{executable}, BuildArgs(req)...)
}

// Runner executes the solver process.
type Runner struct {
	locator *Locator
	timeout time.Duration // 0 means no limit
	env     []string      // appended to the inherited environment
	log     zerolog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTimeout bounds each invocation.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// WithEnv adds KEY=VALUE pairs to the solver's environment.
func WithEnv(env ...string) RunnerOption {
	return func(r *Runner) { r.env = append(r.env, env...) }
}

// WithLogger sets the runner's logger.
func WithLogger(l zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// NewRunner creates a Runner using locator to find the executable.
func NewRunner(locator *Locator, opts ...RunnerOption) *Runner {
	r := &Runner{locator: locator, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run spawns the solver for req and waits for it to exit.
// The returned output is valid whenever the process ran, even on error.
func (r *Runner) Run(ctx context.Context, req types.SolveRequest) (types.RawSolverOutput, error) {
	exe, err := r.locator.Find()
	if err != nil {
		return types.RawSolverOutput{}, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	argv := BuildCommandLine(exe, req)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug().
		Str("executable", exe).
		Strs("args", argv[1:]).
		Msg("Spawning solver")

	start := time.Now()
	runErr := cmd.Run() // Run waits, so the process is always reaped here
	out := types.RawSolverOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(), // -1 when the process never started
	}

	r.log.Debug().
		Int("exit_code", out.ExitCode).
		Dur("duration", time.Since(start)).
		Int("stdout_bytes", stdout.Len()).
		Int("stderr_bytes", stderr.Len()).
		Msg("Solver exited")

	if ctxErr := ctx.Err(); ctxErr != nil {
		reason := "solver cancelled"
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			reason = fmt.Sprintf("solver timed out after %s", r.timeout)
		}
		return out, types.WrapError(types.KindSolverExecutionFailed, ctxErr, reason)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return out, types.WrapError(types.KindSolverExecutionFailed, runErr, "failed to start solver")
		}
	}

	if out.ExitCode != 0 {
		return out, &types.SolveError{Kind: types.KindSolverExecutionFailed, Message: out.Diagnostic()}
	}

	return out, nil
}
