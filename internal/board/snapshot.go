package board

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEmptyBoard is returned for a board with no rows or no columns
	ErrEmptyBoard = errors.New("board: empty board")
	// ErrNotRectangular is returned when rows differ in length
	ErrNotRectangular = errors.New("board: rows have different lengths")
	// ErrEmptyTrace is returned for a trace with no snapshots
	ErrEmptyTrace = errors.New("board: empty trace")
	// ErrDimensionMismatch is returned when snapshots of one trace differ in size
	ErrDimensionMismatch = errors.New("board: snapshot dimensions differ")
)

// Snapshot is one immutable, rectangular frame of the game.
type Snapshot struct {
	rows, cols int
	codes      []Code // row-major
}

// NewSnapshot validates grid and copies it into a Snapshot.
func NewSnapshot(grid [][]int) (Snapshot, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return Snapshot{}, ErrEmptyBoard
	}

	rows, cols := len(grid), len(grid[0])
	codes := make([]Code, 0, rows*cols)
	for r, row := range grid {
		if len(row) != cols {
			return Snapshot{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNotRectangular, r, len(row), cols)
		}
		for c, v := range row {
			if !Code(v).Valid() {
				return Snapshot{}, fmt.Errorf("%w: %d at (%d,%d)", ErrUnknownCode, v, r, c)
			}
			codes = append(codes, Code(v))
		}
	}

	return Snapshot{rows: rows, cols: cols, codes: codes}, nil
}

// Rows returns the row count.
func (s Snapshot) Rows() int { return s.rows }

// Cols returns the column count.
func (s Snapshot) Cols() int { return s.cols }

// Code returns the raw code at (row, col).
func (s Snapshot) Code(row, col int) Code {
	return s.codes[row*s.cols+col]
}

// Cell returns the decoded cell at (row, col).
func (s Snapshot) Cell(row, col int) Cell {
	return MustDecode(s.Code(row, col))
}

// Grid returns a fresh copy of the codes as nested slices.
func (s Snapshot) Grid() [][]int {
	grid := make([][]int, s.rows)
	for r := range grid {
		grid[r] = make([]int, s.cols)
		for c := range grid[r] {
			grid[r][c] = int(s.Code(r, c))
		}
	}
	return grid
}

// Solved reports whether every target holds a box.
func (s Snapshot) Solved() bool {
	for _, code := range s.codes {
		if code == CodeTarget || code == CodeAgentOnTarget {
			return false
		}
	}
	return true
}

// BoxesPlaced counts boxes on targets and all boxes.
func (s Snapshot) BoxesPlaced() (placed, total int) {
	for _, code := range s.codes {
		switch code {
		case CodeBoxOnTarget:
			placed++
			total++
		case CodeBox:
			total++
		}
	}
	return placed, total
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Grid())
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var grid [][]int
	if err := json.Unmarshal(data, &grid); err != nil {
		return err
	}
	snap, err := NewSnapshot(grid)
	if err != nil {
		return err
	}
	*s = snap
	return nil
}
