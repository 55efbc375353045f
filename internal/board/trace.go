package board

import (
	"encoding/json"
	"fmt"
)

// Trace is the ordered, non-empty move-by-move solution. Every snapshot
// has the same dimensions. The zero Trace is "absent".
type Trace struct {
	steps []Snapshot
}

// NewTrace validates that steps is non-empty and uniformly sized.
func NewTrace(steps []Snapshot) (Trace, error) {
	if len(steps) == 0 {
		return Trace{}, ErrEmptyTrace
	}
	rows, cols := steps[0].Rows(), steps[0].Cols()
	for i, s := range steps {
		if s.Rows() == 0 {
			return Trace{}, fmt.Errorf("%w: step %d", ErrEmptyBoard, i)
		}
		if s.Rows() != rows || s.Cols() != cols {
			return Trace{}, fmt.Errorf("%w: step %d is %dx%d, step 0 is %dx%d",
				ErrDimensionMismatch, i, s.Rows(), s.Cols(), rows, cols)
		}
	}
	return Trace{steps: append([]Snapshot(nil), steps...)}, nil
}

// TraceFromGrids builds a Trace from raw boards.
func TraceFromGrids(grids [][][]int) (Trace, error) {
	if len(grids) == 0 {
		return Trace{}, ErrEmptyTrace
	}
	steps := make([]Snapshot, 0, len(grids))
	for i, g := range grids {
		s, err := NewSnapshot(g)
		if err != nil {
			return Trace{}, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, s)
	}
	return NewTrace(steps)
}

// Len returns the number of snapshots, 0 when absent.
func (t Trace) Len() int { return len(t.steps) }

// Present reports whether the trace holds any snapshot.
func (t Trace) Present() bool { return len(t.steps) > 0 }

// At returns snapshot i. It panics when i is out of range.
func (t Trace) At(i int) Snapshot { return t.steps[i] }

// Last returns the final snapshot.
func (t Trace) Last() Snapshot { return t.steps[len(t.steps)-1] }

// Dims returns the shared (rows, cols) of every snapshot.
func (t Trace) Dims() (rows, cols int) {
	if !t.Present() {
		return 0, 0
	}
	return t.steps[0].Rows(), t.steps[0].Cols()
}

func (t Trace) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.steps)
}

func (t *Trace) UnmarshalJSON(data []byte) error {
	var grids [][][]int
	if err := json.Unmarshal(data, &grids); err != nil {
		return err
	}
	trace, err := TraceFromGrids(grids)
	if err != nil {
		return err
	}
	*t = trace
	return nil
}
