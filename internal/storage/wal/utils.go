package wal

// ============================================================================
// Journal Utilities
// Responsibility: inspection helpers used by NewWAL and the status command
// ============================================================================

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// GetLastEvent returns the last valid event of the journal.
// When the journal is damaged the last event before the damage is returned
// together with the error; an empty journal yields ErrEmptyWAL.
func GetLastEvent(path string) (*Event, error) {
	var last *Event
	err := ReplayFile(path, func(e Event) error {
		last = &e
		return nil
	})
	if err != nil {
		return last, err
	}
	if last == nil {
		return nil, ErrEmptyWAL
	}
	return last, nil
}

// ValidateWAL checks every checksum and that seq starts at 1 and has no gaps.
func ValidateWAL(path string) error {
	var lastSeq uint64
	return ReplayFile(path, func(e Event) error {
		if e.Seq != lastSeq+1 {
			return fmt.Errorf("%w: seq %d follows %d", ErrCorruptedWAL, e.Seq, lastSeq)
		}
		lastSeq = e.Seq
		return nil
	})
}

// DumpWAL writes one human readable line per event
func DumpWAL(path string, w io.Writer) error {
	return ReplayFile(path, func(e Event) error {
		_, err := fmt.Fprintf(w, "[Seq:%d] %-9s %s at %s (checksum:0x%08x)\n",
			e.Seq, e.Type, e.SolveID, time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339), e.Checksum)
		return err
	})
}

// WALStats summarizes a journal
type WALStats struct {
	TotalEvents int
	EventTypes  map[EventType]int
	FirstSeq    uint64
	LastSeq     uint64
	TimeRange   [2]int64 // [earliest, latest] Unix milliseconds
	Corrupted   bool     // replay stopped at a damaged record
}

// GetWALStats scans the journal. Damage is reported in Corrupted, not as an
// error, so partial statistics remain available.
func GetWALStats(path string) (*WALStats, error) {
	stats := &WALStats{EventTypes: make(map[EventType]int)}

	err := ReplayFile(path, func(e Event) error {
		if stats.TotalEvents == 0 {
			stats.FirstSeq = e.Seq
			stats.TimeRange[0] = e.Timestamp
		}
		stats.TotalEvents++
		stats.EventTypes[e.Type]++
		stats.LastSeq = e.Seq
		stats.TimeRange[1] = e.Timestamp
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCorruptedWAL) || errors.Is(err, ErrChecksumMismatch) {
			stats.Corrupted = true
			return stats, nil
		}
		return nil, err
	}
	return stats, nil
}
