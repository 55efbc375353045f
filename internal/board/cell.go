// ============================================================================
// Sokoban Player - Cell Semantics
// ============================================================================
//
// Package: internal/board
// File: cell.go
// Purpose: Decode integer cell codes into semantic tiles, independent of any
//          drawing toolkit.
//
// Code table (closed, never extended at runtime):
//
//   code | terrain         | occupant
//   -----+-----------------+---------------------
//     0  | wall            | -
//     1  | floor + target  | -
//     2  | floor           | -
//     3  | floor           | box
//     4  | floor + target  | box (placed)
//     5  | floor           | agent
//     6  | floor + target  | agent
//
// ============================================================================

package board

import (
	"errors"
	"fmt"
)

// ErrUnknownCode is returned for any code outside the table above
var ErrUnknownCode = errors.New("board: unknown cell code")

// Code is the raw integer tag of one cell.
type Code int

const (
	CodeWall         Code = iota // 0
	CodeTarget                   // 1
	CodeFloor                    // 2
	CodeBox                      // 3
	CodeBoxOnTarget              // 4
	CodeAgent                    // 5
	CodeAgentOnTarget            // 6
)

// Occupant is what stands on a floor cell.
type Occupant int

const (
	OccupantNone Occupant = iota
	OccupantBox
	OccupantAgent
)

func (o Occupant) String() string {
	switch o {
	case OccupantBox:
		return "box"
	case OccupantAgent:
		return "agent"
	default:
		return "none"
	}
}

// Cell is the semantic view of one code.
type Cell struct {
	IsWall       bool
	IsTarget     bool
	Occupant     Occupant
	BoxSatisfied bool // a box resting on a target
}

var cells = [...]Cell{
	CodeWall:          {IsWall: true},
	CodeTarget:        {IsTarget: true},
	CodeFloor:         {},
	CodeBox:           {Occupant: OccupantBox},
	CodeBoxOnTarget:   {IsTarget: true, Occupant: OccupantBox, BoxSatisfied: true},
	CodeAgent:         {Occupant: OccupantAgent},
	CodeAgentOnTarget: {IsTarget: true, Occupant: OccupantAgent},
}

// Valid reports whether c is in the code table.
func (c Code) Valid() bool {
	return c >= CodeWall && int(c) < len(cells)
}

// Decode maps a code to its Cell. Unknown codes are an error, never a default.
func Decode(code int) (Cell, error) {
	c := Code(code)
	if !c.Valid() {
		return Cell{}, fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	return cells[c], nil
}

// MustDecode is Decode for codes already validated (e.g. inside a Snapshot).
func MustDecode(code Code) Cell {
	cell, err := Decode(int(code))
	if err != nil {
		panic(err)
	}
	return cell
}
