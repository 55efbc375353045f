package snapshot

// ============================================================================
// Snapshot Store Test File
// Purpose: Verify atomic write, load, version checks and corruption handling
// ============================================================================

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

func sampleTrace(t *testing.T) board.Trace {
	t.Helper()
	trace, err := board.TraceFromGrids([][][]int{
		{{0, 0, 0, 0}, {0, 5, 3, 1}, {0, 0, 0, 0}},
		{{0, 0, 0, 0}, {0, 2, 5, 4}, {0, 0, 0, 0}},
	})
	require.NoError(t, err)
	return trace
}

func sampleRecord(t *testing.T) Record {
	return Record{
		Request:  types.SolveRequest{MapPath: "maps/level1.txt", Algorithm: types.AlgorithmBFS, MemoryBudgetMB: 256},
		Trace:    sampleTrace(t),
		SolvedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ============================================================================
// Basic Functionality Tests
// ============================================================================

func TestNewManager(t *testing.T) {
	manager := NewManager("last_solution.json")
	assert.NotNil(t, manager)
	assert.Equal(t, "last_solution.json", manager.GetPath())
}

func TestWriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "last_solution.json")
	manager := NewManager(path)
	original := sampleRecord(t)

	require.NoError(t, manager.Write(original))
	assert.FileExists(t, path)

	loaded, err := manager.Load()
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, loaded.SchemaVer)
	assert.Equal(t, original.Request, loaded.Request)
	assert.True(t, original.SolvedAt.Equal(loaded.SolvedAt))
	assert.Equal(t, original.Trace, loaded.Trace)
	assert.True(t, loaded.Trace.Last().Solved())
}

func TestWriteStampsSolvedAt(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "s.json"))
	rec := sampleRecord(t)
	rec.SolvedAt = time.Time{}

	before := time.Now().Add(-time.Second)
	require.NoError(t, manager.Write(rec))

	loaded, err := manager.Load()
	require.NoError(t, err)
	assert.True(t, loaded.SolvedAt.After(before))
}

func TestWriteRejectsEmptyTrace(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "s.json"))

	err := manager.Write(Record{})
	assert.ErrorIs(t, err, board.ErrEmptyTrace)
	assert.NoFileExists(t, manager.GetPath())
}

func TestAtomicWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	manager := NewManager(path)

	require.NoError(t, manager.Write(sampleRecord(t)))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConcurrentWriteAndLoad(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, manager.Write(sampleRecord(t)))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec := sampleRecord(t)
			rec.Request.MemoryBudgetMB = i + 1
			assert.NoError(t, manager.Write(rec))
		}()
		go func() {
			defer wg.Done()
			_, err := manager.Load()
			assert.NoError(t, err, "readers never observe a torn file")
		}()
	}
	wg.Wait()
}

// ============================================================================
// Error Handling Tests
// ============================================================================

func TestLoadNotFound(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing.json"))

	_, err := manager.Load()
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestLoadCorrupted(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr error
	}{
		{"invalid json", `{"schema_ver": 1, "trace": [`, ErrCorruptedSnapshot},
		{"missing trace", `{"schema_ver": 1}`, ErrCorruptedSnapshot},
		{"ragged trace", `{"schema_ver": 1, "trace": [[[0,0],[0]]]}`, ErrCorruptedSnapshot},
		{"unknown cell code", `{"schema_ver": 1, "trace": [[[9]]]}`, ErrCorruptedSnapshot},
		{"future version", `{"schema_ver": 2, "trace": [[[5]]]}`, ErrIncompatibleVersion},
		{"no version", `{"trace": [[[5]]]}`, ErrIncompatibleVersion},
		{"empty bare trace", `[]`, ErrCorruptedSnapshot},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0644))

			_, err := LoadFile(path)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadBareTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte("\n[[[5,3,1]],[[2,5,4]]]\n"), 0644))

	rec, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Trace.Len())
	assert.Equal(t, types.SolveRequest{}, rec.Request)
}
