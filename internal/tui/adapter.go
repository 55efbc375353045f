package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/playback"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// Messages delivered to the Model. Snapshots are immutable and safe to hand
// across goroutines.
type (
	boardMsg struct {
		snapshot board.Snapshot
		position int
		total    int
	}
	modeMsg           struct{ mode playback.Mode }
	solveStartedMsg   struct{}
	solveSucceededMsg struct{ steps int }
	solveFailedMsg    struct {
		kind    types.ErrorKind
		message string
	}
	solveRejectedMsg struct{ err error }
)

// Adapter turns render calls into tea messages for a running program.
// It is meant to sit behind a render.Queue: Send blocks until the program
// reads the message.
type Adapter struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewAdapter returns an adapter that drops everything until Attach.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Attach routes subsequent calls to p
func (a *Adapter) Attach(p *tea.Program) {
	a.attach(p.Send)
}

func (a *Adapter) attach(send func(tea.Msg)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.send = send
}

func (a *Adapter) dispatch(msg tea.Msg) {
	a.mu.Lock()
	send := a.send
	a.mu.Unlock()

	if send != nil {
		send(msg)
	}
}

func (a *Adapter) OnBoardChanged(s board.Snapshot, position, total int) {
	a.dispatch(boardMsg{snapshot: s, position: position, total: total})
}

func (a *Adapter) OnModeChanged(mode playback.Mode) {
	a.dispatch(modeMsg{mode: mode})
}

func (a *Adapter) OnSolveStarted() {
	a.dispatch(solveStartedMsg{})
}

func (a *Adapter) OnSolveFailed(kind types.ErrorKind, message string) {
	a.dispatch(solveFailedMsg{kind: kind, message: message})
}

func (a *Adapter) OnSolveSucceeded(steps int) {
	a.dispatch(solveSucceededMsg{steps: steps})
}
