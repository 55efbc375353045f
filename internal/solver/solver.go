package solver

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/decoder"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// Solver turns a request into a decoded trace: validate, run, decode.
type Solver struct {
	runner *Runner
	log    zerolog.Logger
}

// New creates a Solver on top of runner.
func New(runner *Runner, log zerolog.Logger) *Solver {
	return &Solver{runner: runner, log: log}
}

// Solve runs one invocation. It blocks until the process has exited, so
// callers keep it off the interactive goroutine.
func (s *Solver) Solve(ctx context.Context, req types.SolveRequest) (board.Trace, error) {
	if err := ValidateRequest(req); err != nil {
		return board.Trace{}, err
	}

	out, err := s.runner.Run(ctx, req)
	if err != nil {
		return board.Trace{}, err
	}

	trace, err := decoder.Decode(out.Stdout)
	if err != nil {
		s.log.Warn().
			Str("kind", types.KindOf(err).String()).
			Err(err).
			Msg("Solver output could not be decoded")
		return board.Trace{}, err
	}

	rows, cols := trace.Dims()
	s.log.Info().
		Int("steps", trace.Len()).
		Int("rows", rows).
		Int("cols", cols).
		Msg("Solution decoded")
	return trace, nil
}
