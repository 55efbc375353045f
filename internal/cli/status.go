package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/sokoban-player/internal/snapshot"
	"github.com/ChuLiYu/sokoban-player/internal/solver"
	"github.com/ChuLiYu/sokoban-player/internal/storage/wal"
)

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, solver and storage status",
		Long:  "Display the effective configuration, where the solver was found, the last stored solution and journal statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			showStatus(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
	return cmd
}

func showStatus(w io.Writer, cfg *Config) {
	fmt.Fprintln(w, "\n╔═══════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║           Sokoban Player Status                           ║")
	fmt.Fprintln(w, "╚═══════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	// Configuration
	fmt.Fprintln(w, "📋 Configuration:")
	fmt.Fprintf(w, "  ├─ Config File:     %s\n", configFile)
	fmt.Fprintf(w, "  ├─ Default Map:     %s\n", cfg.Solver.DefaultMap)
	fmt.Fprintf(w, "  ├─ Algorithm:       %s\n", cfg.Solver.DefaultAlgorithm)
	fmt.Fprintf(w, "  ├─ Memory Budget:   %d MB\n", cfg.Solver.DefaultMemoryMB)
	fmt.Fprintf(w, "  └─ Playback Every:  %s\n", cfg.Playback.Interval)
	fmt.Fprintln(w)

	// Solver
	fmt.Fprintln(w, "🧩 Solver:")
	locator := solver.NewLocator(cfg.Solver.Executable, cfg.Solver.SearchDirs...)
	if exe, err := locator.Find(); err == nil {
		fmt.Fprintf(w, "  ├─ Executable:      ✅ %s\n", exe)
	} else {
		fmt.Fprintf(w, "  ├─ Executable:      ❌ %s not found\n", locator.Name)
		for _, c := range locator.Candidates() {
			fmt.Fprintf(w, "  │  └─ searched:     %s\n", c)
		}
	}
	if cfg.Solver.Timeout > 0 {
		fmt.Fprintf(w, "  └─ Timeout:         %s\n", cfg.Solver.Timeout)
	} else {
		fmt.Fprintln(w, "  └─ Timeout:         none")
	}
	fmt.Fprintln(w)

	// Storage
	fmt.Fprintln(w, "💾 Storage:")
	printLastSolution(w, cfg.Storage.TracePath)
	printJournal(w, cfg.Storage.JournalPath)
	fmt.Fprintln(w)

	// Metrics
	fmt.Fprintln(w, "📡 Metrics:")
	if cfg.Metrics.Enabled {
		fmt.Fprintf(w, "  └─ Status: ✅ Enabled on http://localhost:%d/metrics\n", cfg.Metrics.Port)
	} else {
		fmt.Fprintln(w, "  └─ Status: ⚠️  Disabled")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

func printLastSolution(w io.Writer, path string) {
	if path == "" {
		fmt.Fprintln(w, "  ├─ Last Solution:   disabled")
		return
	}
	fmt.Fprintf(w, "  ├─ Last Solution:   %s\n", path)

	rec, err := snapshot.LoadFile(path)
	switch {
	case errors.Is(err, snapshot.ErrSnapshotNotFound):
		fmt.Fprintln(w, "  │  └─ none yet")
	case err != nil:
		fmt.Fprintf(w, "  │  └─ ❌ %v\n", err)
	default:
		fmt.Fprintf(w, "  │  ├─ Map:          %s\n", rec.Request)
		fmt.Fprintf(w, "  │  ├─ Steps:        %d\n", rec.Trace.Len())
		fmt.Fprintf(w, "  │  └─ Solved At:    %s\n", rec.SolvedAt.Local().Format(time.DateTime))
	}
}

func printJournal(w io.Writer, path string) {
	if path == "" {
		fmt.Fprintln(w, "  └─ Journal:         disabled")
		return
	}
	fmt.Fprintf(w, "  └─ Journal:         %s\n", path)

	stats, err := wal.GetWALStats(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(w, "     └─ empty")
		return
	case err != nil:
		fmt.Fprintf(w, "     └─ ❌ %v\n", err)
		return
	}

	fmt.Fprintf(w, "     ├─ Events:        %d (seq %d..%d)\n", stats.TotalEvents, stats.FirstSeq, stats.LastSeq)
	fmt.Fprintf(w, "     ├─ ✅ Succeeded:   %d\n", stats.EventTypes[wal.EventSucceeded])
	fmt.Fprintf(w, "     ├─ ❌ Failed:      %d\n", stats.EventTypes[wal.EventFailed])
	fmt.Fprintf(w, "     ├─ 🗑  Discarded:   %d\n", stats.EventTypes[wal.EventDiscarded])
	switch err := wal.ValidateWAL(path); {
	case err == nil:
		fmt.Fprintln(w, "     └─ Integrity:     ✅ all checksums valid")
	case stats.Corrupted:
		fmt.Fprintf(w, "     └─ ⚠️  %v, statistics are partial\n", err)
	default:
		fmt.Fprintf(w, "     └─ ⚠️  %v\n", err)
	}

	if started := stats.EventTypes[wal.EventStarted]; started > 0 {
		ok := float64(stats.EventTypes[wal.EventSucceeded]) / float64(started) * 100
		fmt.Fprintf(w, "\n📈 Success Rate: %.1f%%\n", ok)
	}
}
