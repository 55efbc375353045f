package worker

import (
	"context"
	"time"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// Executor performs one solve. *solver.Solver satisfies it.
type Executor interface {
	Solve(ctx context.Context, req types.SolveRequest) (board.Trace, error)
}

// Task is one solve to run
type Task struct {
	ID      types.SolveID      // identifies the request for last-load-wins
	Request types.SolveRequest // what to solve
	Ctx     context.Context    // cancels the solver process; nil means Background
}

// Result is the outcome of a Task
type Result struct {
	ID       types.SolveID
	Request  types.SolveRequest
	Trace    board.Trace   // present only when Err is nil
	Err      error         // *types.SolveError or a context error
	Duration time.Duration // wall time spent in the executor
}

// Success reports whether the task produced a trace
func (r Result) Success() bool {
	return r.Err == nil
}
