// ============================================================================
// Sokoban Player Worker Pool - Off-thread Solve Executor
// ============================================================================
//
// Package: internal/worker
// File: worker_pool.go
// Function: Manage worker goroutine lifecycle, task dispatch and results
//
// Architecture:
//   ┌─────────────┐
//   │ Controller  │ --Submit()--> taskCh
//   └─────────────┘
//         ↑
//    ReceiveResult()
//         ↑
//   ┌─────────────┐
//   │   Pool      │
//   │  ┌────────┐ │
//   │  │Worker 1│←── taskCh   ──→ resultCh
//   │  └────────┘ │
//   └─────────────┘
//
// The session controller runs a single worker: at most one solver process
// is outstanding per controller. Submit never blocks; a full task buffer is
// reported as ErrPoolBusy.
//
// Lifecycle:
//   1. NewPool()        - create channels
//   2. Start(n)         - launch n worker goroutines
//   3. Submit(task)     - enqueue a task
//   4. ReceiveResult()  - read a result
//   5. Stop()           - close taskCh, wait for workers, close resultCh
//
// Submit and Stop both run under mu, so a send on a closed taskCh is
// impossible.
//
// ============================================================================

package worker

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrPoolClosed is returned once Stop has been called
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrPoolNotStarted is returned before Start
	ErrPoolNotStarted = errors.New("worker pool not started")
	// ErrPoolBusy is returned when the task buffer is full
	ErrPoolBusy = errors.New("worker pool is busy")
)

// Pool manages concurrent workers
type Pool struct {
	exec     Executor
	workers  []*Worker
	taskCh   chan Task
	resultCh chan Result
	stopCh   chan struct{}
	wg       sync.WaitGroup
	started  bool
	stopped  bool
	mu       sync.Mutex
	log      zerolog.Logger
}

// NewPool creates a pool whose workers run exec.
// bufferSize sizes both the task and result channels.
func NewPool(exec Executor, bufferSize int, log zerolog.Logger) *Pool {
	return &Pool{
		exec:     exec,
		workers:  make([]*Worker, 0),
		taskCh:   make(chan Task, bufferSize),
		resultCh: make(chan Result, bufferSize),
		stopCh:   make(chan struct{}),
		log:      log,
	}
}

// Start launches workerCount workers
func (p *Pool) Start(workerCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("pool already started")
	}

	for i := 0; i < workerCount; i++ {
		worker := newWorker(i, p.exec, p.taskCh, p.resultCh, p.stopCh, p.log)
		p.workers = append(p.workers, worker)

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run()
		}(worker)
	}

	p.started = true
	return nil
}

// Submit enqueues task without blocking
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolClosed
	}

	select {
	case p.taskCh <- task:
		return nil
	default:
		return ErrPoolBusy
	}
}

// ReceiveResult blocks until a result is available or the pool stops
func (p *Pool) ReceiveResult() (Result, error) {
	select {
	case result, ok := <-p.resultCh:
		if !ok {
			return Result{}, ErrPoolClosed
		}
		return result, nil
	case <-p.stopCh:
		return Result{}, ErrPoolClosed
	}
}

// Stop closes the pool and waits for running tasks to return.
// Callers cancel task contexts first if they do not want to wait for the solver.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.stopCh)
	close(p.taskCh)
	p.mu.Unlock()

	p.wg.Wait()

	close(p.resultCh)
}
