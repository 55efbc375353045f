// ============================================================================
// Sokoban Player Worker - Solve Execution Unit
// ============================================================================
//
// Package: internal/worker
// File: worker.go
// Function: Runs solve tasks off the interactive goroutine
//
// How it works:
//   1. Receive task from taskCh (blocking wait)
//   2. Run the executor under the task's context
//   3. Send the result to resultCh, or drop it if the pool is stopping
//   4. Repeat until taskCh is closed
//
// A panicking executor is recovered and reported as SolverExecutionFailed
// so one bad solve never takes the worker down.
//
// ============================================================================

package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// Worker represents a work execution unit
type Worker struct {
	id       int
	exec     Executor
	taskCh   <-chan Task
	resultCh chan<- Result
	stopCh   <-chan struct{}
	log      zerolog.Logger
}

func newWorker(id int, exec Executor, taskCh <-chan Task, resultCh chan<- Result, stopCh <-chan struct{}, log zerolog.Logger) *Worker {
	return &Worker{
		id:       id,
		exec:     exec,
		taskCh:   taskCh,
		resultCh: resultCh,
		stopCh:   stopCh,
		log:      log.With().Int("worker_id", id).Logger(),
	}
}

// Run is the main loop of Worker
func (w *Worker) Run() {
	for task := range w.taskCh {
		result := w.execute(task)

		select {
		case w.resultCh <- result:
		case <-w.stopCh:
			w.log.Debug().
				Str("solve_id", task.ID.String()).
				Msg("Pool stopping, result dropped")
		}
	}
}

func (w *Worker) execute(task Task) (result Result) {
	ctx := task.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	result = Result{ID: task.ID, Request: task.Request}

	defer func() {
		result.Duration = time.Since(start)
		if r := recover(); r != nil {
			w.log.Error().
				Str("solve_id", task.ID.String()).
				Interface("panic", r).
				Msg("Executor panicked")
			result.Trace = board.Trace{}
			result.Err = types.NewError(types.KindSolverExecutionFailed, "solver panicked: %s", fmt.Sprint(r))
		}
	}()

	w.log.Debug().
		Str("solve_id", task.ID.String()).
		Str("map", task.Request.MapPath).
		Msg("Solve started")

	result.Trace, result.Err = w.exec.Solve(ctx, task.Request)
	return result
}
