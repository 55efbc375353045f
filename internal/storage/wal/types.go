package wal

import "github.com/ChuLiYu/sokoban-player/pkg/types"

// ============================================================================
// Journal Type Definitions
// Responsibility: Define the solve journal record
// ============================================================================

// EventType defines journal event types
type EventType string

const (
	EventStarted   EventType = "STARTED"   // Solve request issued
	EventSucceeded EventType = "SUCCEEDED" // Trace decoded and loaded
	EventFailed    EventType = "FAILED"    // Solve failed with a kind
	EventDiscarded EventType = "DISCARDED" // Result arrived for a superseded request
)

// Terminal reports whether the event ends an attempt
func (t EventType) Terminal() bool {
	return t == EventSucceeded || t == EventFailed || t == EventDiscarded
}

// Event represents one journal record
type Event struct {
	Seq       uint64        `json:"seq"`       // monotonically increasing
	Type      EventType     `json:"type"`      // event type
	SolveID   types.SolveID `json:"solve_id"`  // attempt identifier
	Timestamp int64         `json:"timestamp"` // Unix milliseconds

	Request    *types.SolveRequest `json:"request,omitempty"`     // STARTED
	Steps      int                 `json:"steps,omitempty"`       // SUCCEEDED
	Kind       string              `json:"kind,omitempty"`        // FAILED
	Message    string              `json:"message,omitempty"`     // FAILED
	DurationMs int64               `json:"duration_ms,omitempty"` // terminal events

	Checksum uint32 `json:"checksum"` // CRC32 over every other field
}

// EventHandler processes one event during Replay.
// Returning an error aborts the replay with that error.
type EventHandler func(event Event) error
