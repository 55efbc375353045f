// ============================================================================
// Sokoban Player - stand-in solver
// ============================================================================
//
// Package: main
// File: cmd/mocksolver/main.go
// Purpose: A small solver executable that speaks the same command line and
//          stdout contract as the real engine, for demos and end-to-end runs.
//
// Usage:
//   mocksolver <algorithm 0|1|2> <memory MB> <map path>
//
// The map file holds one row per line, either as cell codes (0-6) or as
// the usual XSB glyphs (# wall, space floor, . target, $ box, * box on
// target, @ agent, + agent on target). The mock ignores the algorithm and
// runs a breadth-first search bounded by the memory budget.
//
// MOCKSOLVER_MODE selects a failure instead of solving:
//   fail        exit status 3 with a message on stderr
//   unsolvable  framed {"error": ...} payload
//   garbage     output without payload markers
//
// ============================================================================

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/decoder"
)

// ModeEnv names the environment variable selecting a scripted failure
const ModeEnv = "MOCKSOLVER_MODE"

// statesPerMB bounds the search frontier for a given memory budget
const statesPerMB = 2000

var errUnsolvable = errors.New("map not solvable")

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()
	os.Exit(run(os.Args[1:], os.Getenv(ModeEnv), os.Stdout, log))
}

func run(args []string, mode string, out io.Writer, log zerolog.Logger) int {
	if len(args) != 3 {
		log.Error().Int("got", len(args)).Msg("usage: mocksolver <algorithm 0|1|2> <memory MB> <map path>")
		return 2
	}
	algo, err := strconv.Atoi(args[0])
	if err != nil || algo < 0 || algo > 2 {
		log.Error().Str("algorithm", args[0]).Msg("algorithm must be 0, 1 or 2")
		return 2
	}
	memory, err := strconv.Atoi(args[1])
	if err != nil || memory <= 0 {
		log.Error().Str("memory", args[1]).Msg("memory must be a positive integer")
		return 2
	}
	data, err := os.ReadFile(args[2])
	if err != nil {
		log.Error().Err(err).Msg("cannot read map")
		return 100
	}

	fmt.Fprintf(out, "Algorithm: %d\nMemory budget: %d MB\n", algo, memory)

	switch mode {
	case "fail":
		log.Error().Msg("solver crashed")
		return 3
	case "garbage":
		fmt.Fprintln(out, "search finished, nothing to report")
		return 0
	case "unsolvable":
		writePayload(out, map[string]string{"error": errUnsolvable.Error()})
		return 0
	}

	start, err := parseMap(string(data))
	if err != nil {
		writePayload(out, map[string]string{"error": err.Error()})
		return 0
	}

	path, explored, err := solve(start, memory*statesPerMB)
	fmt.Fprintf(out, "Explored %d states\n", explored)
	if err != nil {
		writePayload(out, map[string]string{"error": err.Error()})
		return 0
	}

	grids := make([][][]int, len(path))
	for i, s := range path {
		grids[i] = start.render(s)
	}
	writePayload(out, grids)
	return 0
}

func writePayload(out io.Writer, payload any) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(out, "%s\n%s\n%s\n", decoder.StartMarker, data, decoder.EndMarker)
}

// ============================================================================
// Search
// ============================================================================

// level is the static part of a map
type level struct {
	rows, cols int
	wall       []bool
	target     []bool
	initial    state
}

// state is the agent cell plus the box cells encoded as a bitmap string
type state struct {
	agent int
	boxes string
}

func (l *level) hasBox(s state, i int) bool { return s.boxes[i] == 1 }

func (l *level) solved(s state) bool {
	for i := range l.target {
		if l.hasBox(s, i) && !l.target[i] {
			return false
		}
	}
	return true
}

// render converts a state back into cell codes
func (l *level) render(s state) [][]int {
	grid := make([][]int, l.rows)
	for r := range grid {
		grid[r] = make([]int, l.cols)
		for c := range grid[r] {
			i := r*l.cols + c
			var code board.Code
			switch {
			case l.wall[i]:
				code = board.CodeWall
			case l.hasBox(s, i) && l.target[i]:
				code = board.CodeBoxOnTarget
			case l.hasBox(s, i):
				code = board.CodeBox
			case i == s.agent && l.target[i]:
				code = board.CodeAgentOnTarget
			case i == s.agent:
				code = board.CodeAgent
			case l.target[i]:
				code = board.CodeTarget
			default:
				code = board.CodeFloor
			}
			grid[r][c] = int(code)
		}
	}
	return grid
}

// solve runs a breadth-first search from the initial state and returns every
// state along the shortest path, start included.
func solve(l *level, limit int) ([]state, int, error) {
	parent := map[state]state{l.initial: l.initial}
	queue := []state{l.initial}
	steps := []int{-l.cols, l.cols, -1, 1}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if l.solved(cur) {
			return unwind(parent, cur, l.initial), len(parent), nil
		}

		for _, d := range steps {
			next, ok := l.move(cur, d)
			if !ok {
				continue
			}
			if _, seen := parent[next]; seen {
				continue
			}
			if len(parent) >= limit {
				return nil, len(parent), fmt.Errorf("memory budget exhausted after %d states", len(parent))
			}
			parent[next] = cur
			queue = append(queue, next)
		}
	}
	return nil, len(parent), errUnsolvable
}

func (l *level) move(s state, d int) (state, bool) {
	to := s.agent + d
	if !l.inside(s.agent, to) || l.wall[to] {
		return state{}, false
	}
	if !l.hasBox(s, to) {
		return state{agent: to, boxes: s.boxes}, true
	}

	beyond := to + d
	if !l.inside(to, beyond) || l.wall[beyond] || l.hasBox(s, beyond) {
		return state{}, false
	}
	boxes := []byte(s.boxes)
	boxes[to], boxes[beyond] = 0, 1
	return state{agent: to, boxes: string(boxes)}, true
}

// inside rejects moves leaving the grid or wrapping across a row edge
func (l *level) inside(from, to int) bool {
	if to < 0 || to >= len(l.wall) {
		return false
	}
	return from/l.cols == to/l.cols || from%l.cols == to%l.cols
}

func unwind(parent map[state]state, end, start state) []state {
	var path []state
	for s := end; ; s = parent[s] {
		path = append(path, s)
		if s == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ============================================================================
// Map parsing
// ============================================================================

var glyphCodes = map[rune]board.Code{
	'#': board.CodeWall,
	' ': board.CodeFloor,
	'-': board.CodeFloor,
	'.': board.CodeTarget,
	'$': board.CodeBox,
	'*': board.CodeBoxOnTarget,
	'@': board.CodeAgent,
	'+': board.CodeAgentOnTarget,
}

func parseMap(text string) (*level, error) {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, errors.New("map is empty")
	}

	cols := 0
	for _, line := range lines {
		cols = max(cols, len([]rune(line)))
	}

	l := &level{rows: len(lines), cols: cols}
	n := l.rows * cols
	l.wall = make([]bool, n)
	l.target = make([]bool, n)
	boxes := make([]byte, n)
	l.initial.agent = -1

	for r, line := range lines {
		runes := []rune(line)
		for c := 0; c < cols; c++ {
			i := r*cols + c
			code := board.CodeWall // short rows are padded with wall
			if c < len(runes) {
				var err error
				if code, err = cellCode(runes[c]); err != nil {
					return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
				}
			}

			cell := board.MustDecode(code)
			l.wall[i] = cell.IsWall
			l.target[i] = cell.IsTarget
			switch cell.Occupant {
			case board.OccupantBox:
				boxes[i] = 1
			case board.OccupantAgent:
				if l.initial.agent >= 0 {
					return nil, errors.New("map has more than one agent")
				}
				l.initial.agent = i
			}
		}
	}
	if l.initial.agent < 0 {
		return nil, errors.New("map has no agent")
	}
	l.initial.boxes = string(boxes)
	return l, nil
}

func cellCode(r rune) (board.Code, error) {
	if r >= '0' && r <= '9' {
		code := board.Code(r - '0')
		if !code.Valid() {
			return 0, fmt.Errorf("%w: %c", board.ErrUnknownCode, r)
		}
		return code, nil
	}
	if code, ok := glyphCodes[r]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("%w: %q", board.ErrUnknownCode, r)
}
