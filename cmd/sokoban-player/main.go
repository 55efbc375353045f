package main

// ============================================================================
// Sokoban Player - entry point
// ============================================================================
//
// All command logic lives in internal/cli; main only builds the command
// tree, runs it and turns a panic or an error into exit status 1.
//
//   go run ./cmd/sokoban-player solve maps/box.txt -a bfs
//   go build -o bin/sokoban-player ./cmd/sokoban-player
//
// ============================================================================

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/sokoban-player/internal/cli"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", r)
			os.Exit(1)
		}
	}()

	// cobra has already printed the error
	if err := cli.BuildCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
