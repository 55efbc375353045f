package solver

import (
	"os"
	"strconv"
	"strings"

	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// ParseRequest builds a SolveRequest from user-entered text. Every problem is
// reported as InvalidRequest before any process is spawned.
func ParseRequest(mapPath, algorithm, memoryMB string) (types.SolveRequest, error) {
	algo, err := types.ParseAlgorithm(algorithm)
	if err != nil {
		return types.SolveRequest{}, types.WrapError(types.KindInvalidRequest, err, "invalid algorithm")
	}

	mem, err := strconv.Atoi(strings.TrimSpace(memoryMB))
	if err != nil {
		return types.SolveRequest{}, types.NewError(types.KindInvalidRequest, "invalid memory value %q", memoryMB)
	}

	req := types.SolveRequest{
		MapPath:        strings.TrimSpace(mapPath),
		Algorithm:      algo,
		MemoryBudgetMB: mem,
	}
	if err := ValidateRequest(req); err != nil {
		return types.SolveRequest{}, err
	}
	return req, nil
}

// ValidateRequest checks an already typed request.
func ValidateRequest(req types.SolveRequest) error {
	if req.MapPath == "" {
		return types.NewError(types.KindInvalidRequest, "please select a valid map file")
	}
	info, err := os.Stat(req.MapPath)
	if err != nil {
		return types.WrapError(types.KindInvalidRequest, err, "please select a valid map file")
	}
	if info.IsDir() {
		return types.NewError(types.KindInvalidRequest, "map path %s is a directory", req.MapPath)
	}
	if !req.Algorithm.Valid() {
		return types.NewError(types.KindInvalidRequest, "unknown algorithm %d", int(req.Algorithm))
	}
	if req.MemoryBudgetMB <= 0 {
		return types.NewError(types.KindInvalidRequest, "memory budget must be positive, got %d", req.MemoryBudgetMB)
	}
	return nil
}
