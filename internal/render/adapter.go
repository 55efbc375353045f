// Package render defines the boundary between the playback/orchestration
// core and whatever draws the board.
package render

import (
	"fmt"
	"strings"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/playback"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// Adapter is implemented by a presentation layer. Implementations only read
// the snapshots handed to them.
type Adapter interface {
	playback.Observer

	OnSolveStarted()
	OnSolveFailed(kind types.ErrorKind, message string)
	OnSolveSucceeded(stepCount int)
}

// Nop ignores every call.
type Nop struct{}

func (Nop) OnBoardChanged(board.Snapshot, int, int) {}
func (Nop) OnSolveStarted()                         {}
func (Nop) OnSolveFailed(types.ErrorKind, string)   {}
func (Nop) OnSolveSucceeded(int)                    {}

// Status line texts shared by the front ends.
const (
	StatusThinking = "Engine is thinking..."
	StatusError    = "Error Occurred"
)

// SolvedStatus is the status line after a successful solve.
func SolvedStatus(steps int) string {
	return fmt.Sprintf("Solution Found! Steps: %d", steps)
}

// Progress is the 1-based step counter shown next to the board.
func Progress(position, total int) string {
	return fmt.Sprintf("STEP: %d / %d", position+1, total)
}

// FailureText is the user-facing description of a failed solve.
// The "no solution" kinds share a headline and keep the solver's detail.
// Execution failures carry the solver's own output, which may span lines.
func FailureText(kind types.ErrorKind, message string) string {
	switch {
	case kind.NoSolution():
		if message == "" {
			return "No solution found or invalid output."
		}
		return "No solution found: " + message
	case kind == types.KindSolverExecutionFailed:
		message = strings.TrimRight(message, "\r\n")
		switch {
		case strings.TrimSpace(message) == "":
			return "Solver failed."
		case strings.Contains(message, "\n"):
			return "Solver failed:\n" + message
		}
		return "Solver failed: " + message
	}
	if message == "" {
		return kind.String()
	}
	return message
}
