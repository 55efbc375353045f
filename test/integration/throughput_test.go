package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/sokoban-player/internal/storage/wal"
)

// BenchmarkSolveRoundTrip measures one request through process spawn,
// decoding, playback load and journal append.
func BenchmarkSolveRoundTrip(b *testing.B) {
	p := newPaths(b)
	ctrl, _ := startSession(b, p, "ok", 0)
	req := p.request()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ctrl.Solve(req); err != nil {
			b.Fatal(err)
		}
		for ctrl.GetStatus().Solving {
			time.Sleep(time.Millisecond)
		}
	}
}

// TestSequentialSolves issues back-to-back requests; none may be rejected
// once the previous one has finished.
func TestSequentialSolves(t *testing.T) {
	p := newPaths(t)
	ctrl, _ := startSession(t, p, "ok", 0)

	const rounds = 10
	start := time.Now()
	for i := 0; i < rounds; i++ {
		_, err := ctrl.Solve(p.request())
		require.NoError(t, err, "round %d", i)
		waitIdle(t, ctrl)
	}
	t.Logf("%d solves in %s", rounds, time.Since(start))
	ctrl.Stop()

	stats, err := wal.GetWALStats(p.journal)
	require.NoError(t, err)
	require.Equal(t, rounds, stats.EventTypes[wal.EventSucceeded])
	require.Equal(t, 0, stats.EventTypes[wal.EventDiscarded])
}
