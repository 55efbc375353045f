package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// Glyph returns the conventional one-character rendering of a cell.
func Glyph(c board.Cell) rune {
	switch {
	case c.IsWall:
		return '#'
	case c.Occupant == board.OccupantBox && c.BoxSatisfied:
		return '*'
	case c.Occupant == board.OccupantBox:
		return '$'
	case c.Occupant == board.OccupantAgent && c.IsTarget:
		return '+'
	case c.Occupant == board.OccupantAgent:
		return '@'
	case c.IsTarget:
		return '.'
	default:
		return ' '
	}
}

// Lines renders a snapshot as one string per row.
func Lines(s board.Snapshot) []string {
	lines := make([]string, s.Rows())
	var b strings.Builder
	for r := range s.Rows() {
		b.Reset()
		for c := range s.Cols() {
			b.WriteRune(Glyph(s.Cell(r, c)))
		}
		lines[r] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

// Text is an Adapter that writes boards and status lines to w.
// Used by plain mode and the play command when no terminal UI is wanted.
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

// NewText creates a Text adapter writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) OnBoardChanged(s board.Snapshot, position, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.w, Progress(position, total))
	for _, line := range Lines(s) {
		fmt.Fprintln(t.w, line)
	}
	fmt.Fprintln(t.w)
}

func (t *Text) OnSolveStarted() {
	t.println(StatusThinking)
}

func (t *Text) OnSolveFailed(kind types.ErrorKind, message string) {
	t.println(StatusError + ": " + FailureText(kind, message))
}

func (t *Text) OnSolveSucceeded(stepCount int) {
	t.println(SolvedStatus(stepCount))
}

func (t *Text) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, s)
}
