// ============================================================================
// Sokoban Player Metrics - Prometheus Instrumentation
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Count solve attempts by outcome and expose playback progress
//
// Metrics:
//
//   1. Counters:
//      - sokoban_solves_started_total
//      - sokoban_solves_succeeded_total
//      - sokoban_solves_failed_total{kind}
//      - sokoban_solves_discarded_total   (result of a superseded request)
//
//   2. Histogram:
//      - sokoban_solve_duration_seconds   (spawn to decoded trace, all outcomes)
//
//   3. Gauges:
//      - sokoban_trace_steps              (length of the loaded trace)
//      - sokoban_playback_position        (current 0-based step)
//
// Example queries:
//
//   # failure ratio by kind
//   rate(sokoban_solves_failed_total[5m]) / ignoring(kind) group_left rate(sokoban_solves_started_total[5m])
//
//   # p95 solve time
//   histogram_quantile(0.95, rate(sokoban_solve_duration_seconds_bucket[5m]))
//
// Registration goes through an injected Registerer so tests and multiple
// controllers never collide on the global registry.
//
// ============================================================================

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// solveBuckets cover sub-second searches through multi-minute BFS runs
var solveBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// Collector holds the solve and playback metrics
type Collector struct {
	solvesStarted   prometheus.Counter
	solvesSucceeded prometheus.Counter
	solvesFailed    *prometheus.CounterVec
	solvesDiscarded prometheus.Counter

	solveDuration prometheus.Histogram

	traceSteps       prometheus.Gauge
	playbackPosition prometheus.Gauge
}

// NewCollector creates the metrics and registers them on reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		solvesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sokoban_solves_started_total",
			Help: "Total number of solve requests issued",
		}),
		solvesSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sokoban_solves_succeeded_total",
			Help: "Total number of solves that produced a trace",
		}),
		solvesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sokoban_solves_failed_total",
			Help: "Total number of failed solves by error kind",
		}, []string{"kind"}),
		solvesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sokoban_solves_discarded_total",
			Help: "Total number of results dropped because a newer request superseded them",
		}),
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sokoban_solve_duration_seconds",
			Help:    "Solver wall time in seconds",
			Buckets: solveBuckets,
		}),
		traceSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sokoban_trace_steps",
			Help: "Number of steps in the loaded solution",
		}),
		playbackPosition: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sokoban_playback_position",
			Help: "Current 0-based playback step",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.solvesStarted,
			c.solvesSucceeded,
			c.solvesFailed,
			c.solvesDiscarded,
			c.solveDuration,
			c.traceSteps,
			c.playbackPosition,
		)
	}
	return c
}

// RecordStarted counts an issued request
func (c *Collector) RecordStarted() {
	c.solvesStarted.Inc()
}

// RecordSucceeded counts a solve that produced a trace of steps snapshots
func (c *Collector) RecordSucceeded(seconds float64, steps int) {
	c.solvesSucceeded.Inc()
	c.solveDuration.Observe(seconds)
	c.traceSteps.Set(float64(steps))
}

// RecordFailed counts a failed solve of the given kind
func (c *Collector) RecordFailed(kind string, seconds float64) {
	c.solvesFailed.WithLabelValues(kind).Inc()
	c.solveDuration.Observe(seconds)
}

// RecordDiscarded counts a superseded result
func (c *Collector) RecordDiscarded() {
	c.solvesDiscarded.Inc()
}

// SetTraceSteps records the length of a trace loaded without solving
func (c *Collector) SetTraceSteps(steps int) {
	c.traceSteps.Set(float64(steps))
}

// SetPlaybackPosition records the current step
func (c *Collector) SetPlaybackPosition(position int) {
	c.playbackPosition.Set(float64(position))
}
