package wal

import (
	"time"

	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// Attempt is one solve attempt folded from its events.
type Attempt struct {
	ID        types.SolveID
	Request   types.SolveRequest
	StartedAt time.Time
	Outcome   EventType // zero while no terminal event has been seen
	Steps     int
	Kind      string
	Message   string
	Duration  time.Duration
}

// Finished reports whether a terminal event was recorded
func (a Attempt) Finished() bool {
	return a.Outcome.Terminal()
}

// History replays the journal at path into attempts ordered by start.
// Events before any damage are still returned alongside the error.
func History(path string) ([]Attempt, error) {
	var attempts []Attempt
	index := make(map[types.SolveID]int)

	err := ReplayFile(path, func(e Event) error {
		i, ok := index[e.SolveID]
		if !ok {
			i = len(attempts)
			index[e.SolveID] = i
			attempts = append(attempts, Attempt{ID: e.SolveID})
		}
		a := &attempts[i]

		switch e.Type {
		case EventStarted:
			if e.Request != nil {
				a.Request = *e.Request
			}
			a.StartedAt = time.UnixMilli(e.Timestamp)
		default:
			if !e.Type.Terminal() {
				return nil
			}
			a.Outcome = e.Type
			a.Steps = e.Steps
			a.Kind = e.Kind
			a.Message = e.Message
			a.Duration = time.Duration(e.DurationMs) * time.Millisecond
		}
		return nil
	})
	return attempts, err
}
