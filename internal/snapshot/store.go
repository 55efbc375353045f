package snapshot

// ============================================================================
// Responsibilities:
// 1. Persist the last successful solution (request + trace) as a JSON file
// 2. Atomic write (temp file + rename) so a crash never leaves a torn file
// 3. Validate the schema version and the trace itself on load
// 4. Accept a bare trace array ([[[...]]]) so a saved solver payload plays too
// ============================================================================

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// SchemaVersion is the current on-disk format
const SchemaVersion = 1

var (
	ErrCorruptedSnapshot   = errors.New("snapshot file is corrupted")
	ErrIncompatibleVersion = errors.New("snapshot schema version is incompatible")
	ErrSnapshotNotFound    = errors.New("snapshot file not found")
)

// Record is one persisted solution.
type Record struct {
	SchemaVer int                `json:"schema_ver"`
	Request   types.SolveRequest `json:"request"`
	Trace     board.Trace        `json:"trace"`
	SolvedAt  time.Time          `json:"solved_at"`
}

// Manager reads and writes one record file.
type Manager struct {
	path string
	mu   sync.Mutex
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Write atomically replaces the record file. SchemaVer is always set to
// SchemaVersion and a zero SolvedAt is stamped with the current time.
func (m *Manager) Write(rec Record) error {
	if !rec.Trace.Present() {
		return fmt.Errorf("refusing to write snapshot: %w", board.ErrEmptyTrace)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec.SchemaVer = SchemaVersion
	if rec.SolvedAt.IsZero() {
		rec.SolvedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	return nil
}

// Load reads the record file.
func (m *Manager) Load() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return LoadFile(m.path)
}

// GetPath returns the record file path
func (m *Manager) GetPath() string {
	return m.path
}

// LoadFile reads a record from path. A file holding a bare trace array is
// accepted and returned with a zero Request.
func LoadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return Record{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes a record or a bare trace.
func Parse(data []byte) (Record, error) {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var trace board.Trace
		if err := json.Unmarshal(data, &trace); err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrCorruptedSnapshot, err)
		}
		return Record{SchemaVer: SchemaVersion, Trace: trace}, nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptedSnapshot, err)
	}
	if rec.SchemaVer != SchemaVersion {
		return Record{}, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleVersion, rec.SchemaVer, SchemaVersion)
	}
	if !rec.Trace.Present() {
		return Record{}, fmt.Errorf("%w: no trace", ErrCorruptedSnapshot)
	}
	return rec, nil
}
