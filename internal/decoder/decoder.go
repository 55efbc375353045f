// ============================================================================
// Sokoban Player - Result Decoder
// ============================================================================
//
// Package: internal/decoder
// File: decoder.go
// Purpose: Recover the framed payload from the solver's noisy stdout and turn
//          it into a validated board.Trace.
//
// Framing:
//   <noise> ---JSON_START--- <payload> ---JSON_END--- <noise>
//
//   payload is either
//     [ [[row],[row],...], ... ]   list of boards
//     {"error": "message"}         solver-reported failure
//
// Decode is a pure function of its input: no state, no environment.
//
// ============================================================================

package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

const (
	StartMarker = "---JSON_START---"
	EndMarker   = "---JSON_END---"
)

// errorFields are the keys probed, in order, for the message of an error object
var errorFields = []string{"error", "message", "msg"}

// Extract returns the trimmed text between the first start marker and the
// first end marker after it.
func Extract(output string) (string, error) {
	start := strings.Index(output, StartMarker)
	if start < 0 {
		return "", types.NewError(types.KindPayloadMarkersMissing, "no solution found or invalid output: start marker missing")
	}
	rest := output[start+len(StartMarker):]

	end := strings.Index(rest, EndMarker)
	if end < 0 {
		return "", types.NewError(types.KindPayloadMarkersMissing, "no solution found or invalid output: end marker missing")
	}

	return strings.TrimSpace(rest[:end]), nil
}

// Decode extracts and parses the payload in output.
func Decode(output string) (board.Trace, error) {
	payload, err := Extract(output)
	if err != nil {
		return board.Trace{}, err
	}
	return Parse([]byte(payload))
}

// Parse interprets an already extracted payload.
func Parse(payload []byte) (board.Trace, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return board.Trace{}, types.NewError(types.KindMalformedSolution, "empty payload")
	}

	switch payload[0] {
	case '{':
		return board.Trace{}, parseErrorObject(payload)
	case '[':
		return parseBoards(payload)
	default:
		return board.Trace{}, types.NewError(types.KindMalformedSolution, "payload is neither a list of boards nor an error object")
	}
}

func parseErrorObject(payload []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return types.WrapError(types.KindMalformedSolution, err, "invalid error object")
	}

	for _, key := range errorFields {
		if raw, ok := obj[key]; ok {
			return reportedError(raw)
		}
	}
	// a single field of any name carries the message
	if len(obj) == 1 {
		for _, raw := range obj {
			return reportedError(raw)
		}
	}
	return types.NewError(types.KindMalformedSolution, "error object carries no message field")
}

func reportedError(raw json.RawMessage) error {
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		// not a string: pass the raw JSON through unmodified
		msg = string(raw)
	}
	return &types.SolveError{Kind: types.KindSolverReportedError, Message: msg}
}

func parseBoards(payload []byte) (board.Trace, error) {
	var grids [][][]int
	if err := json.Unmarshal(payload, &grids); err != nil {
		return board.Trace{}, types.WrapError(types.KindMalformedSolution, err, "payload is not a list of integer grids")
	}

	trace, err := board.TraceFromGrids(grids)
	if err != nil {
		return board.Trace{}, types.WrapError(types.KindMalformedSolution, err, describe(err))
	}
	return trace, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, board.ErrEmptyTrace):
		return "solution contains no boards"
	case errors.Is(err, board.ErrEmptyBoard):
		return "solution contains an empty board"
	case errors.Is(err, board.ErrNotRectangular):
		return "solution contains a non-rectangular board"
	case errors.Is(err, board.ErrUnknownCode):
		return "solution contains an unknown cell code"
	case errors.Is(err, board.ErrDimensionMismatch):
		return "solution boards differ in size"
	default:
		return "invalid solution"
	}
}
