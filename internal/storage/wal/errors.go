package wal

// ============================================================================
// Journal Error Definitions
// ============================================================================

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptedWAL indicates a record that cannot be parsed
	ErrCorruptedWAL = errors.New("wal: file is corrupted")

	// ErrChecksumMismatch indicates a record whose content does not match its checksum
	ErrChecksumMismatch = errors.New("wal: checksum mismatch")

	// ErrEmptyWAL indicates a journal with no events
	ErrEmptyWAL = errors.New("wal: file is empty")

	// ErrWALClosed indicates an operation after Close
	ErrWALClosed = errors.New("wal: already closed")

	// ErrSyncFailed indicates fsync failed
	ErrSyncFailed = errors.New("wal: sync to disk failed")
)

// ChecksumError represents checksum error with detailed information
type ChecksumError struct {
	Seq      uint64 // Sequence number of failed event
	Expected uint32 // Checksum recomputed from the content
	Actual   uint32 // Checksum stored in the record
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("wal: checksum mismatch at seq=%d (expected=0x%08x, got=0x%08x)", e.Seq, e.Expected, e.Actual)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// CorruptionError represents an unparseable record
type CorruptionError struct {
	Seq    uint64 // Sequence number of the last good event
	Offset int64  // Byte offset in file
	Cause  error  // Underlying error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("wal: file is corrupted after seq=%d at offset %d: %v", e.Seq, e.Offset, e.Cause)
}

func (e *CorruptionError) Is(target error) bool {
	return target == ErrCorruptedWAL
}

func (e *CorruptionError) Unwrap() error {
	return e.Cause
}
