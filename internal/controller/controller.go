// ============================================================================
// Sokoban Player Controller - Session Coordinator
// ============================================================================
//
// Package: internal/controller
// File: controller.go
// Purpose: Own one interactive session: issue solves off the interactive
//          goroutine, hand results back, and drive playback.
//
// Components:
//   - worker.Pool       single worker running the solver process
//   - playback.Player   the step/jump/auto-play state machine
//   - render.Queue      serialized handoff to the presentation layer
//   - snapshot.Manager  last successful solution on disk (optional)
//   - wal.WAL           append-only journal of solve attempts (optional)
//   - metrics.Collector Prometheus counters and gauges
//
// Core loop:
//   Result Loop - receive worker results and apply them under mu
//
// Solve lifecycle:
//   Solve(req)
//     ├─ guard: one outstanding process (ErrSolveInProgress)
//     ├─ STARTED journaled, OnSolveStarted, auto-play paused
//     └─ task submitted with a per-solve context
//   handleResult(r)
//     ├─ r.ID != current  → DISCARDED (cancelled or superseded)
//     ├─ failure          → FAILED, OnSolveFailed, prior trace kept
//     └─ success          → player.Load, OnSolveSucceeded, persist, SUCCEEDED
//
// Last load wins: LoadTrace and CancelSolve clear the current ID, so the
// outstanding process's result is discarded when it arrives.
//
// Lock order: mu before the player's lock. Nothing reachable from a player
// notification takes mu.
//
// ============================================================================

package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/metrics"
	"github.com/ChuLiYu/sokoban-player/internal/playback"
	"github.com/ChuLiYu/sokoban-player/internal/render"
	"github.com/ChuLiYu/sokoban-player/internal/snapshot"
	"github.com/ChuLiYu/sokoban-player/internal/solver"
	"github.com/ChuLiYu/sokoban-player/internal/storage/wal"
	"github.com/ChuLiYu/sokoban-player/internal/worker"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

var (
	// ErrSolveInProgress is returned while a solver process is outstanding
	ErrSolveInProgress = errors.New("controller: a solve is already in progress")
	// ErrStopped is returned after Stop
	ErrStopped = errors.New("controller: stopped")
	// ErrNoRequest is returned by Resolve before any request was issued
	ErrNoRequest = errors.New("controller: no previous request")
	// ErrNotStarted is returned by Solve before Start
	ErrNotStarted = errors.New("controller: not started")
)

// CancelledMessage is reported to the adapter when the user cancels a solve
const CancelledMessage = "Solve cancelled"

// Config controls persistence and playback
type Config struct {
	PlaybackInterval time.Duration // auto-advance period, 0 = default
	TracePath        string        // last solution file, "" disables
	JournalPath      string        // solve journal, "" disables
	SyncJournal      bool          // fsync every journal event
}

// Status is a point-in-time view of the session
type Status struct {
	Solving     bool
	Running     types.SolveID
	LastRequest *types.SolveRequest
	Playback    playback.State
}

// Controller coordinates one session
type Controller struct {
	mu       sync.Mutex
	exec     worker.Executor
	pool     *worker.Pool
	player   *playback.Player
	queue    *render.Queue
	snapshot *snapshot.Manager
	journal  *wal.WAL
	metrics  *metrics.Collector
	config   Config
	log      zerolog.Logger

	scheduler playback.Scheduler

	running     types.SolveID      // process outstanding, "" when idle
	current     types.SolveID      // result that may still be shown
	cancel      context.CancelFunc // cancels running
	lastRequest *types.SolveRequest

	started bool
	stopped bool
	loopWg  sync.WaitGroup
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller's logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMetrics sets the metrics collector
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithScheduler replaces the playback timer source
func WithScheduler(s playback.Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// NewController builds a controller that solves with exec and renders to adapter.
func NewController(exec worker.Executor, adapter render.Adapter, config Config, opts ...Option) (*Controller, error) {
	c := &Controller{
		exec:   exec,
		config: config,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.NewCollector(nil)
	}

	if config.JournalPath != "" {
		journal, err := wal.NewWAL(config.JournalPath, config.SyncJournal)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		c.journal = journal
		c.log.Info().
			Str("path", journal.GetPath()).
			Uint64("last_seq", journal.GetLastSeq()).
			Msg("Journal opened")
	}
	if config.TracePath != "" {
		c.snapshot = snapshot.NewManager(config.TracePath)
	}

	c.queue = render.NewQueue(adapter)
	c.pool = worker.NewPool(exec, 1, c.log.With().Str("component", "worker").Logger())

	playerOpts := []playback.Option{playback.WithInterval(config.PlaybackInterval)}
	if c.scheduler != nil {
		playerOpts = append(playerOpts, playback.WithScheduler(c.scheduler))
	}
	c.player = playback.NewPlayer(&progressObserver{next: c.queue, metrics: c.metrics}, playerOpts...)

	return c, nil
}

// Start launches the worker and the result loop
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if err := c.pool.Start(1); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	c.started = true

	c.loopWg.Add(1)
	go c.resultLoop()

	c.log.Info().
		Bool("journal", c.journal != nil).
		Bool("persist", c.snapshot != nil).
		Msg("Controller started")
	return nil
}

// Player exposes navigation. The player reports through the render queue.
func (c *Controller) Player() *playback.Player {
	return c.player
}

// Solve issues req. It returns once the request is handed to the worker;
// the outcome arrives through the adapter.
func (c *Controller) Solve(req types.SolveRequest) (types.SolveID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.stopped:
		return "", ErrStopped
	case !c.started:
		return "", ErrNotStarted
	case c.running != "":
		return "", ErrSolveInProgress
	}

	r := req
	c.lastRequest = &r

	// rejected requests are not attempts: no start, no journal entry
	if err := solver.ValidateRequest(req); err != nil {
		c.queue.OnSolveFailed(types.KindOf(err), types.MessageOf(err))
		c.log.Warn().Err(err).Str("map", req.MapPath).Msg("Solve request rejected")
		return "", err
	}

	id := types.NewSolveID()
	c.player.Pause()
	c.queue.OnSolveStarted()
	c.metrics.RecordStarted()
	c.record(wal.Event{Type: wal.EventStarted, SolveID: id, Request: &r})

	c.log.Info().
		Str("solve_id", id.String()).
		Str("map", req.MapPath).
		Str("algorithm", req.Algorithm.String()).
		Int("memory_mb", req.MemoryBudgetMB).
		Msg("Solve requested")

	ctx, cancel := context.WithCancel(context.Background())
	if err := c.pool.Submit(worker.Task{ID: id, Request: req, Ctx: ctx}); err != nil {
		cancel()
		if errors.Is(err, worker.ErrPoolBusy) {
			err = ErrSolveInProgress
		}
		c.failLocked(id, types.WrapError(types.KindSolverExecutionFailed, err, "could not schedule solve"), 0)
		return id, err
	}

	c.running = id
	c.current = id
	c.cancel = cancel
	return id, nil
}

// Resolve re-issues the most recent request
func (c *Controller) Resolve() (types.SolveID, error) {
	c.mu.Lock()
	last := c.lastRequest
	c.mu.Unlock()

	if last == nil {
		return "", ErrNoRequest
	}
	return c.Solve(*last)
}

// CancelSolve kills the outstanding solver process. Its result will be
// discarded. It reports whether there was anything to cancel.
func (c *Controller) CancelSolve() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running == "" {
		return false
	}
	c.cancel()
	if c.current == c.running {
		c.current = ""
		c.queue.OnSolveFailed(types.KindSolverExecutionFailed, CancelledMessage)
	}
	c.log.Info().Str("solve_id", c.running.String()).Msg("Solve cancelled")
	return true
}

// LoadTrace shows an existing trace without solving. A solve still
// running is superseded and its result will be discarded.
func (c *Controller) LoadTrace(trace board.Trace) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if err := c.player.Load(trace); err != nil {
		return err
	}
	c.current = ""
	c.metrics.SetTraceSteps(trace.Len())
	return nil
}

// LoadRecord shows a stored solution. Its request becomes the target of
// Resolve unless a request was already issued in this session.
func (c *Controller) LoadRecord(rec snapshot.Record) error {
	if err := c.LoadTrace(rec.Trace); err != nil {
		return err
	}

	c.mu.Lock()
	if c.lastRequest == nil && rec.Request.MapPath != "" {
		r := rec.Request
		c.lastRequest = &r
	}
	c.mu.Unlock()

	c.log.Info().
		Str("map", rec.Request.MapPath).
		Int("steps", rec.Trace.Len()).
		Time("solved_at", rec.SolvedAt).
		Msg("Stored solution loaded")
	return nil
}

// GetStatus returns the session state
func (c *Controller) GetStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	var last *types.SolveRequest
	if c.lastRequest != nil {
		r := *c.lastRequest
		last = &r
	}
	return Status{
		Solving:     c.running != "",
		Running:     c.running,
		LastRequest: last,
		Playback:    c.player.State(),
	}
}

// Stop cancels any running solve, stops the loops, drains pending UI calls
// and closes the journal.
//
// Shutdown order:
//  1. mark stopped and cancel the running process
//  2. pool.Stop()   → worker returns, resultCh closes
//  3. loopWg.Wait() → result loop exits
//  4. pause playback, drain the render queue, close the journal
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.log.Info().Msg("Stopping controller...")

	c.pool.Stop()
	c.loopWg.Wait()

	c.player.Pause()
	c.queue.Close()

	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			c.log.Error().Err(err).Msg("Failed to close journal")
		}
	}
	c.log.Info().Msg("Controller stopped")
}

func (c *Controller) resultLoop() {
	defer c.loopWg.Done()
	for {
		result, err := c.pool.ReceiveResult()
		if err != nil {
			c.log.Debug().Msg("Result loop stopped")
			return
		}
		c.handleResult(result)
	}
}

func (c *Controller) handleResult(r worker.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.ID == c.running {
		c.running = ""
		c.cancel() // release the context
		c.cancel = nil
	}

	if r.ID != c.current {
		c.metrics.RecordDiscarded()
		c.record(wal.Event{Type: wal.EventDiscarded, SolveID: r.ID, DurationMs: r.Duration.Milliseconds()})
		c.log.Info().
			Str("solve_id", r.ID.String()).
			Dur("duration", r.Duration).
			Msg("Superseded result discarded")
		return
	}
	c.current = ""

	if r.Err != nil {
		c.failLocked(r.ID, r.Err, r.Duration)
		return
	}

	// load first: an adapter reacting to OnSolveSucceeded sees the new trace
	steps := r.Trace.Len()
	if err := c.player.Load(r.Trace); err != nil {
		// the decoder never yields an empty trace
		c.log.Error().Err(err).Str("solve_id", r.ID.String()).Msg("Failed to load trace")
		return
	}
	c.queue.OnSolveSucceeded(steps)
	c.metrics.RecordSucceeded(r.Duration.Seconds(), steps)
	c.record(wal.Event{Type: wal.EventSucceeded, SolveID: r.ID, Steps: steps, DurationMs: r.Duration.Milliseconds()})

	if c.snapshot != nil {
		rec := snapshot.Record{Request: r.Request, Trace: r.Trace}
		if err := c.snapshot.Write(rec); err != nil {
			c.log.Error().Err(err).Str("path", c.snapshot.GetPath()).Msg("Failed to persist solution")
		}
	}

	c.log.Info().
		Str("solve_id", r.ID.String()).
		Int("steps", steps).
		Dur("duration", r.Duration).
		Msg("Solve succeeded")
}

// failLocked reports a failed attempt. The loaded trace is left untouched.
func (c *Controller) failLocked(id types.SolveID, err error, d time.Duration) {
	kind := types.KindOf(err)
	msg := types.MessageOf(err)

	c.queue.OnSolveFailed(kind, msg)
	c.metrics.RecordFailed(kind.String(), d.Seconds())
	c.record(wal.Event{
		Type:       wal.EventFailed,
		SolveID:    id,
		Kind:       kind.String(),
		Message:    msg,
		DurationMs: d.Milliseconds(),
	})

	c.log.Warn().
		Str("solve_id", id.String()).
		Str("kind", kind.String()).
		Err(err).
		Dur("duration", d).
		Msg("Solve failed")
}

func (c *Controller) record(e wal.Event) {
	if c.journal == nil {
		return
	}
	if _, err := c.journal.Append(e); err != nil {
		c.log.Error().Err(err).Str("type", string(e.Type)).Msg("Failed to append journal event")
	}
}

// progressObserver mirrors the playback position into metrics before
// forwarding to the render queue.
type progressObserver struct {
	next    *render.Queue
	metrics *metrics.Collector
}

func (o *progressObserver) OnBoardChanged(s board.Snapshot, position, total int) {
	o.metrics.SetPlaybackPosition(position)
	o.next.OnBoardChanged(s, position, total)
}

func (o *progressObserver) OnModeChanged(mode playback.Mode) {
	o.next.OnModeChanged(mode)
}
