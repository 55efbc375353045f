package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	assert.NotNil(t, collector.solvesStarted, "solvesStarted counter should be initialized")
	assert.NotNil(t, collector.solvesFailed, "solvesFailed counter vec should be initialized")
	assert.NotNil(t, collector.solveDuration, "solveDuration histogram should be initialized")
	assert.NotNil(t, collector.playbackPosition, "playbackPosition gauge should be initialized")

	// the labelled counter has no series until first use
	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestNewCollectorNilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector(nil).RecordStarted()
	})
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestRecordOutcomes(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordStarted()
	c.RecordStarted()
	c.RecordStarted()
	c.RecordSucceeded(0.4, 27)
	c.RecordFailed("SolverReportedError", 1.2)
	c.RecordDiscarded()

	assert.Equal(t, 3.0, testutil.ToFloat64(c.solvesStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.solvesSucceeded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.solvesFailed.WithLabelValues("SolverReportedError")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.solvesFailed.WithLabelValues("MalformedSolution")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.solvesDiscarded))
	assert.Equal(t, 27.0, testutil.ToFloat64(c.traceSteps))
}

func TestPlaybackGauges(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.SetTraceSteps(10)
	c.SetPlaybackPosition(4)
	assert.Equal(t, 10.0, testutil.ToFloat64(c.traceSteps))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.playbackPosition))

	c.SetPlaybackPosition(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.playbackPosition))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordFailed("ExecutableNotFound", 0.01)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sokoban_solves_failed_total{kind="ExecutableNotFound"} 1`)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg).RecordStarted()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, reg, zerolog.Nop()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "sokoban_solves_started_total 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
