package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestJSONLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter(Config{Level: "debug", Format: "json"}, &buf), "solver")

	log.Debug().Str("map", "box.txt").Msg("spawning solver")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "solver", entry["component"])
	assert.Equal(t, "box.txt", entry["map"])
	assert.Equal(t, "debug", entry["level"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.log")
	log, closer, err := New(Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info().Msg("to file")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}

func TestToTerminal(t *testing.T) {
	assert.True(t, Config{}.ToTerminal())
	assert.True(t, Config{Output: "stderr"}.ToTerminal())
	assert.False(t, Config{Output: "/tmp/x.log"}.ToTerminal())
}
