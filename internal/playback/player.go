// ============================================================================
// Sokoban Player - Playback State Machine
// ============================================================================
//
// Package: internal/playback
// File: player.go
// Purpose: Turn a board.Trace into a controllable animation: step, jump,
//          timed auto-advance and cancellation.
//
// States:
//   IDLE     no trace loaded (initial)
//   STOPPED  trace loaded, not advancing
//   PLAYING  advancing one step per interval
//
// Transitions:
//   Load                      any      -> STOPPED, position 0
//   JumpToStart / JumpToEnd   loaded   -> STOPPED, position 0 / len-1
//   StepBack / StepForward    loaded   -> STOPPED, position -1/+1 clamped
//   TogglePlay                STOPPED <-> PLAYING (no-op while IDLE)
//   tick                      PLAYING  -> advance; STOPPED once at len-1
//
// Every navigation notifies the observer exactly once with the board at the
// resulting position, clamped no-ops included. Notifications are delivered
// while the player lock is held, so they are strictly ordered; an observer
// must never call back into the Player synchronously.
//
// At most one tick is outstanding. Every cancellation bumps a generation
// counter, so a tick that already fired but has not yet acquired the lock
// sees a stale generation and does nothing.
//
// ============================================================================

package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/ChuLiYu/sokoban-player/internal/board"
)

// DefaultInterval is the auto-advance period
const DefaultInterval = 150 * time.Millisecond

// ErrNoTrace is returned when loading an absent trace
var ErrNoTrace = errors.New("playback: trace is empty")

// Mode is the playback state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeStopped
	ModePlaying
)

func (m Mode) String() string {
	switch m {
	case ModeStopped:
		return "STOPPED"
	case ModePlaying:
		return "PLAYING"
	default:
		return "IDLE"
	}
}

// Observer receives the board after every position change.
type Observer interface {
	OnBoardChanged(snapshot board.Snapshot, position, total int)
}

// ModeObserver is optionally implemented by an Observer that also wants mode changes.
type ModeObserver interface {
	OnModeChanged(mode Mode)
}

// State is a point-in-time copy of the playback state.
type State struct {
	Mode     Mode
	Position int
	Total    int
}

// Player is the playback state machine. It is safe for concurrent use.
type Player struct {
	mu       sync.Mutex
	trace    board.Trace
	position int
	mode     Mode

	interval  time.Duration
	scheduler Scheduler
	timer     Timer  // the single outstanding tick, nil when none
	gen       uint64 // bumped on every schedule and cancel

	observer     Observer
	modeObserver ModeObserver
}

// Option configures a Player.
type Option func(*Player)

// WithInterval sets the auto-advance period; non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(p *Player) { p.scheduler = s }
}

// NewPlayer creates an IDLE player that reports to observer (may be nil).
func NewPlayer(observer Observer, opts ...Option) *Player {
	p := &Player{
		mode:      ModeIdle,
		interval:  DefaultInterval,
		scheduler: RealScheduler{},
		observer:  observer,
	}
	if mo, ok := observer.(ModeObserver); ok {
		p.modeObserver = mo
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the auto-advance period.
func (p *Player) Interval() time.Duration {
	return p.interval
}

// State returns the current mode, position and trace length.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Mode: p.mode, Position: p.position, Total: p.trace.Len()}
}

// Current returns the board at the current position, if a trace is loaded.
func (p *Player) Current() (board.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.trace.Present() {
		return board.Snapshot{}, false
	}
	return p.trace.At(p.position), true
}

// Trace returns the loaded trace (absent while IDLE).
func (p *Player) Trace() board.Trace {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trace
}

// Load replaces any prior trace entirely and rewinds to the first step.
func (p *Player) Load(trace board.Trace) error {
	if !trace.Present() {
		return ErrNoTrace
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked()
	p.trace = trace
	p.position = 0
	p.setModeLocked(ModeStopped)
	p.notifyLocked()
	return nil
}

// JumpToStart moves to the first step and stops.
func (p *Player) JumpToStart() {
	p.navigate(func(int, int) int { return 0 })
}

// JumpToEnd moves to the last step and stops.
func (p *Player) JumpToEnd() {
	p.navigate(func(_, total int) int { return total - 1 })
}

// StepBack moves one step back and stops. No-op at the first step.
func (p *Player) StepBack() {
	p.navigate(func(pos, _ int) int { return max(pos-1, 0) })
}

// StepForward moves one step forward and stops. No-op at the last step.
func (p *Player) StepForward() {
	p.navigate(func(pos, total int) int { return min(pos+1, total-1) })
}

func (p *Player) navigate(next func(pos, total int) int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode == ModeIdle {
		return
	}
	p.cancelLocked()
	p.setModeLocked(ModeStopped)
	p.position = next(p.position, p.trace.Len())
	p.notifyLocked()
}

// TogglePlay starts or pauses auto-advance. No-op while IDLE.
func (p *Player) TogglePlay() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.mode {
	case ModeStopped:
		p.setModeLocked(ModePlaying)
		p.scheduleLocked()
	case ModePlaying:
		p.cancelLocked()
		p.setModeLocked(ModeStopped)
	}
}

// Pause cancels auto-advance without moving. No-op unless PLAYING.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode != ModePlaying {
		return
	}
	p.cancelLocked()
	p.setModeLocked(ModeStopped)
}

func (p *Player) tick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || p.mode != ModePlaying {
		return // cancelled or superseded
	}
	p.timer = nil

	last := p.trace.Len() - 1
	if p.position < last {
		p.position++
		p.notifyLocked()
	}
	if p.position >= last {
		p.setModeLocked(ModeStopped)
		return
	}
	p.scheduleLocked()
}

func (p *Player) scheduleLocked() {
	p.gen++
	gen := p.gen
	p.timer = p.scheduler.AfterFunc(p.interval, func() { p.tick(gen) })
}

func (p *Player) cancelLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
}

func (p *Player) setModeLocked(mode Mode) {
	if p.mode == mode {
		return
	}
	p.mode = mode
	if p.modeObserver != nil {
		p.modeObserver.OnModeChanged(mode)
	}
}

func (p *Player) notifyLocked() {
	if p.observer == nil {
		return
	}
	p.observer.OnBoardChanged(p.trace.At(p.position), p.position, p.trace.Len())
}
