package wal

// ============================================================================
// Solve Journal
// Responsibilities:
// 1. Append solve attempt events to a JSON-lines file (append-only)
// 2. Replay events in order, verifying each checksum
// 3. Continue the sequence across restarts
// ============================================================================

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileInterface is the subset of *os.File the journal writes through.
// Tests substitute failing implementations.
type FileInterface interface {
	Write(p []byte) (n int, err error)
	Sync() error
	Close() error
}

// WAL is an open journal
type WAL struct {
	mu           sync.Mutex
	file         FileInterface
	encoder      *json.Encoder
	path         string
	seq          uint64 // last sequence number written
	syncOnAppend bool   // fsync after every event
	closed       bool
	now          func() time.Time
}

// NewWAL opens or creates the journal at path.
//
// An existing journal continues from its last valid event, so a torn final
// line from a crash does not stop new appends.
func NewWAL(path string, syncOnAppend bool) (*WAL, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("wal: create dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	var seq uint64
	if last, _ := GetLastEvent(path); last != nil {
		seq = last.Seq
	}

	return &WAL{
		file:         file,
		encoder:      json.NewEncoder(file),
		path:         path,
		seq:          seq,
		syncOnAppend: syncOnAppend,
		now:          time.Now,
	}, nil
}

// Append assigns the next sequence number, a timestamp (when zero) and the
// checksum, then writes the event. The stored event is returned.
func (w *WAL) Append(event Event) (Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return Event{}, ErrWALClosed
	}

	event.Seq = w.seq + 1
	if event.Timestamp == 0 {
		event.Timestamp = w.now().UnixMilli()
	}
	event.Checksum = CalculateChecksum(event)

	if err := w.encoder.Encode(event); err != nil {
		return Event{}, fmt.Errorf("wal: append failed at seq=%d: %w", event.Seq, err)
	}
	w.seq = event.Seq

	if w.syncOnAppend {
		if err := w.file.Sync(); err != nil {
			return event, fmt.Errorf("%w: %v", ErrSyncFailed, err)
		}
	}
	return event, nil
}

// Replay calls handler for every event in order.
func (w *WAL) Replay(handler EventHandler) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ReplayFile(w.path, handler)
}

// Close flushes to disk and closes the file. The WAL must not be reused.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	syncErr := w.file.Sync()
	if err := w.file.Close(); err != nil {
		return err
	}
	if syncErr != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, syncErr)
	}
	return nil
}

// GetLastSeq returns the last sequence number written
func (w *WAL) GetLastSeq() uint64 {
	if w == nil {
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq
}

// GetPath returns the journal path
func (w *WAL) GetPath() string {
	return w.path
}

// ReplayFile reads the journal at path without opening it for writing.
// It stops at the first damaged record with a *CorruptionError or a
// *ChecksumError; events before it have already been handled.
func ReplayFile(path string, handler EventHandler) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return replay(file, handler)
}

func replay(r io.Reader, handler EventHandler) error {
	decoder := json.NewDecoder(r)

	var lastSeq uint64
	for decoder.More() {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || isSyntaxError(err) || isTypeError(err) {
				return &CorruptionError{Seq: lastSeq, Offset: decoder.InputOffset(), Cause: err}
			}
			return err
		}

		if expected := CalculateChecksum(event); expected != event.Checksum {
			return &ChecksumError{Seq: event.Seq, Expected: expected, Actual: event.Checksum}
		}

		if err := handler(event); err != nil {
			return err
		}
		lastSeq = event.Seq
	}
	return nil
}

func isSyntaxError(err error) bool {
	var syntaxErr *json.SyntaxError
	return errors.As(err, &syntaxErr)
}

func isTypeError(err error) bool {
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}
