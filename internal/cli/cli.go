// ============================================================================
// Sokoban Player CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra command tree over the session controller
//
// Command Structure:
//   sokoban-player                 # Root command
//   ├── solve [map]                # Solve a map and play the solution
//   │   ├── --algorithm, -a       # astar | dfs | bfs | 0 | 1 | 2
//   │   ├── --memory, -m          # solver memory budget in MB
//   │   ├── --plain               # text output, auto-play, exit
//   │   └── --watch, -w           # re-solve when the map file changes
//   ├── play [file]                # Replay a stored solution without solving
//   │   └── --plain
//   ├── history                    # List past solve attempts
//   │   ├── --all                 # include unfinished attempts
//   │   └── --dump                # raw journal lines
//   ├── status                     # Configuration, solver and storage status
//   ├── --config, -c               # Config file (default configs/default.yaml)
//   ├── --version
//   └── --help
//
// Configuration Management:
//   YAML config file; a missing file means built-in defaults.
//   - solver:   executable lookup, timeout, default request
//   - playback: auto-advance interval
//   - storage:  last solution file and solve journal
//   - metrics:  Prometheus endpoint
//   - logging:  level, format, output
//
// solve / play lifecycle:
//   1. Load config, build logger, registry and controller
//   2. errgroup: metrics server (if enabled) + front end
//   3. SIGINT / SIGTERM or quitting the UI cancels the group
//   4. Controller.Stop: kill any running solver, drain the UI queue,
//      close the journal
//
// Examples:
//   ./sokoban-player solve maps/box.txt -a bfs -m 256
//   ./sokoban-player solve --plain
//   ./sokoban-player solve maps/box.txt --watch
//   ./sokoban-player play
//   ./sokoban-player history --all
//
// ============================================================================

package cli

import (
	"github.com/spf13/cobra"
)

// Version is reported by --version
const Version = "1.0.0"

var configFile string

func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sokoban-player",
		Short: "Sokoban Player: solve Sokoban maps and replay the solution",
		Long: `Sokoban Player drives an external Sokoban solver and replays its solution:
- step, jump and auto-play through every board of the solution
- re-solve on demand or whenever the map file changes
- last solution and a journal of every attempt kept on disk
- Prometheus metrics`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", DefaultConfigPath, "config file path")

	rootCmd.AddCommand(buildSolveCommand())
	rootCmd.AddCommand(buildPlayCommand())
	rootCmd.AddCommand(buildHistoryCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}
