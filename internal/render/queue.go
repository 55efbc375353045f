// ============================================================================
// Sokoban Player - Render Queue
// ============================================================================
//
// Package: internal/render
// File: queue.go
// Purpose: Serialize every adapter call onto one pump goroutine.
//
// The playback state machine and the controller notify while holding their
// own locks. A presentation layer may block (a UI event loop that is busy or
// shutting down), so calls are appended to an unbounded FIFO and delivered
// by a single goroutine: callers never wait on the UI and the adapter is
// only ever touched from one execution context, in posting order.
//
// ============================================================================

package render

import (
	"sync"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/playback"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// Queue is an Adapter that forwards to another Adapter asynchronously.
// It also forwards mode changes when the target implements playback.ModeObserver.
type Queue struct {
	target Adapter

	mu      sync.Mutex
	pending []func(Adapter)
	closed  bool

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue starts the pump for target.
func NewQueue(target Adapter) *Queue {
	q := &Queue{
		target: target,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *Queue) OnBoardChanged(s board.Snapshot, position, total int) {
	q.post(func(a Adapter) { a.OnBoardChanged(s, position, total) })
}

func (q *Queue) OnSolveStarted() {
	q.post(func(a Adapter) { a.OnSolveStarted() })
}

func (q *Queue) OnSolveFailed(kind types.ErrorKind, message string) {
	q.post(func(a Adapter) { a.OnSolveFailed(kind, message) })
}

func (q *Queue) OnSolveSucceeded(stepCount int) {
	q.post(func(a Adapter) { a.OnSolveSucceeded(stepCount) })
}

func (q *Queue) OnModeChanged(mode playback.Mode) {
	mo, ok := q.target.(playback.ModeObserver)
	if !ok {
		return
	}
	q.post(func(Adapter) { mo.OnModeChanged(mode) })
}

// Close delivers everything already posted, then stops the pump.
// Calls posted after Close are dropped. Must not be called from the target.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		q.signal()
	})
	<-q.done
}

func (q *Queue) post(call func(Adapter)) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, call)
	q.mu.Unlock()
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default: // a wake-up is already pending
	}
}

func (q *Queue) pump() {
	defer close(q.done)

	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, call := range batch {
			call(q.target)
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
