// ============================================================================
// Sokoban Player - Terminal UI
// ============================================================================
//
// Package: internal/tui
// File: model.go
// Purpose: bubbletea front end. Draws the current board, the step counter
//          and the solve status, and maps keys onto playback and solve
//          operations.
//
// Data flow:
//   key press → Update → Session / Player, called in key order
//   Player / Controller → render.Queue → Adapter → program.Send → Update
//
// Session and Player calls never block on the UI: their notifications go
// through render.Queue. The model never mutates playback state directly; it
// only mirrors what the Adapter reports.
//
// ============================================================================

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/controller"
	"github.com/ChuLiYu/sokoban-player/internal/playback"
	"github.com/ChuLiYu/sokoban-player/internal/render"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

const (
	title        = "Sokoban Player"
	minBarWidth  = 20
	maxBarWidth  = 60
	noBoardHint  = "No solution loaded. Press s to solve."
	busyNotice   = "A solve is already running (c to cancel)"
	noMapNotice  = "No map selected"
	cancelNotice = "Cancelling..."
)

// Session is the part of the controller the UI drives.
type Session interface {
	Player() *playback.Player
	Solve(req types.SolveRequest) (types.SolveID, error)
	Resolve() (types.SolveID, error)
	CancelSolve() bool
}

type statusKind int

const (
	statusIdle statusKind = iota
	statusThinking
	statusSuccess
	statusFailure
)

// Model is the bubbletea model
type Model struct {
	session Session
	startup tea.Cmd

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	bar      progress.Model
	styles   Styles
	spinning bool

	snapshot board.Snapshot
	hasBoard bool
	position int
	total    int
	mode     playback.Mode

	status     string
	statusKind statusKind
	notice     string
	solving    bool
}

// Option configures a Model
type Option func(*Model)

// WithInitialRequest issues req as soon as the program starts
func WithInitialRequest(req types.SolveRequest) Option {
	return func(m *Model) { m.startup = solveCmd(m.session, req) }
}

// WithStartup runs cmd as soon as the program starts
func WithStartup(cmd tea.Cmd) Option {
	return func(m *Model) { m.startup = cmd }
}

// NewModel creates the UI model for session
func NewModel(session Session, opts ...Option) Model {
	styles := DefaultStyles()
	m := Model{
		session: session,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Thinking)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(minBarWidth)),
		styles:  styles,
		mode:    playback.ModeIdle,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.startup
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.bar.Width = min(max(msg.Width-24, minBarWidth), maxBarWidth)
		return m, nil

	case boardMsg:
		m.snapshot = msg.snapshot
		m.position = msg.position
		m.total = msg.total
		m.hasBoard = true
		return m, nil

	case modeMsg:
		m.mode = msg.mode
		return m, nil

	case solveStartedMsg:
		m.solving = true
		m.notice = ""
		m.status, m.statusKind = render.StatusThinking, statusThinking
		if m.spinning {
			return m, nil
		}
		m.spinning = true
		return m, m.spinner.Tick

	case solveSucceededMsg:
		m.solving = false
		m.notice = ""
		m.status, m.statusKind = render.SolvedStatus(msg.steps), statusSuccess
		return m, nil

	case solveFailedMsg:
		m.solving = false
		m.notice = ""
		m.status, m.statusKind = render.StatusError+": "+render.FailureText(msg.kind, msg.message), statusFailure
		return m, nil

	case solveRejectedMsg:
		m.notice = rejectionNotice(msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.solving {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	player := m.session.Player()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Start):
		player.JumpToStart()
	case key.Matches(msg, m.keys.Back):
		player.StepBack()
	case key.Matches(msg, m.keys.Play):
		player.TogglePlay()
	case key.Matches(msg, m.keys.Forward):
		player.StepForward()
	case key.Matches(msg, m.keys.End):
		player.JumpToEnd()
	case key.Matches(msg, m.keys.Solve):
		if _, err := m.session.Resolve(); err != nil {
			m.notice = rejectionNotice(err)
		}
	case key.Matches(msg, m.keys.Cancel):
		if m.session.CancelSolve() {
			m.notice = cancelNotice
		}
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")

	if m.hasBoard {
		b.WriteString(m.styles.Board.Render(m.renderBoard()))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
			m.styles.Progress.Render(render.Progress(m.position, m.total)),
			"  ",
			m.bar.ViewAs(m.fraction()),
			"  ",
			m.styles.Muted.Render(boxesLabel(m.snapshot)),
			"  ",
			m.styles.Mode.Render(modeLabel(m.mode)),
		))
	} else {
		b.WriteString(m.styles.Muted.Render(noBoardHint))
	}
	b.WriteString("\n\n")

	if line := m.statusLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.styles.Muted.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderBoard() string {
	rows := make([]string, m.snapshot.Rows())
	var line strings.Builder
	for r := range m.snapshot.Rows() {
		line.Reset()
		for c := range m.snapshot.Cols() {
			line.WriteString(m.styles.cell(m.snapshot.Cell(r, c)))
		}
		rows[r] = line.String()
	}
	return strings.Join(rows, "\n")
}

func (m Model) statusLine() string {
	switch m.statusKind {
	case statusThinking:
		return m.spinner.View() + " " + m.styles.Thinking.Render(m.status)
	case statusSuccess:
		return m.styles.Success.Render(m.status)
	case statusFailure:
		return m.styles.Error.Render(m.status)
	default:
		return ""
	}
}

func (m Model) fraction() float64 {
	if m.total <= 1 {
		return 1
	}
	return float64(m.position) / float64(m.total-1)
}

func boxesLabel(s board.Snapshot) string {
	placed, total := s.BoxesPlaced()
	return fmt.Sprintf("BOXES: %d / %d", placed, total)
}

func modeLabel(mode playback.Mode) string {
	switch mode {
	case playback.ModePlaying:
		return "▶ playing"
	case playback.ModeStopped:
		return "❚❚ paused"
	default:
		return ""
	}
}

// rejectionNotice explains a request that never started. Solve errors
// carrying a kind were already reported through the adapter.
func rejectionNotice(err error) string {
	switch {
	case errors.Is(err, controller.ErrSolveInProgress):
		return busyNotice
	case errors.Is(err, controller.ErrNoRequest):
		return noMapNotice
	case types.KindOf(err) != types.KindUnknown:
		return ""
	default:
		return err.Error()
	}
}

func solveCmd(s Session, req types.SolveRequest) tea.Cmd {
	return func() tea.Msg {
		if _, err := s.Solve(req); err != nil {
			return solveRejectedMsg{err: err}
		}
		return nil
	}
}
