package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	testCases := []struct {
		in   string
		want Algorithm
	}{
		{"0", AlgorithmAStar},
		{"1", AlgorithmDFS},
		{"2", AlgorithmBFS},
		{"astar", AlgorithmAStar},
		{"A*", AlgorithmAStar},
		{" DFS ", AlgorithmDFS},
		{"bfs", AlgorithmBFS},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "3", "-1", "greedy"} {
		_, err := ParseAlgorithm(bad)
		assert.Error(t, err, "input %q should be rejected", bad)
	}
}

func TestAlgorithmString(t *testing.T) {
	assert.Equal(t, "A*", AlgorithmAStar.String())
	assert.Equal(t, "DFS", AlgorithmDFS.String())
	assert.Equal(t, "BFS", AlgorithmBFS.String())
	assert.Equal(t, "Algorithm(9)", Algorithm(9).String())
}

func TestDiagnosticPrefersStderr(t *testing.T) {
	out := RawSolverOutput{Stdout: "partial", Stderr: "boom", ExitCode: 1}
	assert.Equal(t, "boom", out.Diagnostic())

	out.Stderr = "  \n"
	assert.Equal(t, "partial", out.Diagnostic())
}

func TestSolveErrorMatchesByKind(t *testing.T) {
	err := NewError(KindMalformedSolution, "board %d is not rectangular", 3)
	wrapped := fmt.Errorf("decode: %w", err)

	assert.True(t, errors.Is(wrapped, ErrMalformedSolution))
	assert.False(t, errors.Is(wrapped, ErrPayloadMarkersMissing))
	assert.Equal(t, KindMalformedSolution, KindOf(wrapped))
	assert.Equal(t, "board 3 is not rectangular", MessageOf(wrapped))
}

func TestSolveErrorUnwrap(t *testing.T) {
	cause := errors.New("exec: permission denied")
	err := WrapError(KindSolverExecutionFailed, cause, "could not start solver")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "SolverExecutionFailed")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("x")))
	assert.Equal(t, "x", MessageOf(errors.New("x")))
}

func TestNoSolutionKinds(t *testing.T) {
	assert.True(t, KindPayloadMarkersMissing.NoSolution())
	assert.True(t, KindSolverReportedError.NoSolution())
	assert.True(t, KindMalformedSolution.NoSolution())
	assert.False(t, KindExecutableNotFound.NoSolution())
	assert.False(t, KindInvalidRequest.NoSolution())
}

func TestNewSolveIDUnique(t *testing.T) {
	a, b := NewSolveID(), NewSolveID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
