// Package types defines the core domain model shared by the sokoban-player packages.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SolveID identifies one solve attempt
type SolveID string

// NewSolveID returns a fresh, unique attempt identifier.
func NewSolveID() SolveID {
	return SolveID(uuid.NewString())
}

func (id SolveID) String() string {
	return string(id)
}

// Algorithm selects the search strategy of the external solver.
// The integer value is the wire encoding passed on the command line.
type Algorithm int

const (
	AlgorithmAStar Algorithm = iota // A* (optimal)
	AlgorithmDFS                    // depth-first
	AlgorithmBFS                    // breadth-first
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmAStar:
		return "A*"
	case AlgorithmDFS:
		return "DFS"
	case AlgorithmBFS:
		return "BFS"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// Valid reports whether a is one of the known selectors.
func (a Algorithm) Valid() bool {
	return a >= AlgorithmAStar && a <= AlgorithmBFS
}

// ParseAlgorithm accepts either the integer enum value ("0", "1", "2")
// or a case-insensitive name ("astar", "a*", "dfs", "bfs").
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "astar", "a*", "a-star":
		return AlgorithmAStar, nil
	case "dfs":
		return AlgorithmDFS, nil
	case "bfs":
		return AlgorithmBFS, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown algorithm %q", s)
	}
	a := Algorithm(n)
	if !a.Valid() {
		return 0, fmt.Errorf("algorithm %d out of range", n)
	}
	return a, nil
}

// SolveRequest is one immutable solve invocation.
type SolveRequest struct {
	MapPath        string    `json:"map_path"`         // path to an existing map file
	Algorithm      Algorithm `json:"algorithm"`        // search strategy
	MemoryBudgetMB int       `json:"memory_budget_mb"` // positive
}

func (r SolveRequest) String() string {
	return fmt.Sprintf("%s (%s, %d MB)", r.MapPath, r.Algorithm, r.MemoryBudgetMB)
}

// RawSolverOutput is the captured result of one external process run.
// It is consumed once by the decoder and not retained afterward.
type RawSolverOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Diagnostic returns the text to surface when the run failed:
// stderr when it is non-empty, stdout otherwise.
func (o RawSolverOutput) Diagnostic() string {
	if strings.TrimSpace(o.Stderr) != "" {
		return o.Stderr
	}
	return o.Stdout
}
