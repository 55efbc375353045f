package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ChuLiYu/sokoban-player/internal/storage/wal"
)

func buildHistoryCommand() *cobra.Command {
	var (
		all  bool
		dump bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past solve attempts",
		Long:  "Replay the solve journal and print one line per attempt.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Storage.JournalPath == "" {
				return fmt.Errorf("journal disabled (storage.journal_path is empty)")
			}
			if dump {
				return wal.DumpWAL(cfg.Storage.JournalPath, cmd.OutOrStdout())
			}
			return printHistory(cmd.OutOrStdout(), cfg.Storage.JournalPath, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include attempts without an outcome")
	cmd.Flags().BoolVar(&dump, "dump", false, "print raw journal events")
	return cmd
}

// printHistory renders the attempts in path as a table. A damaged journal
// still prints what precedes the damage, followed by a warning.
func printHistory(w io.Writer, path string, all bool) error {
	attempts, err := wal.History(path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(w, "No solve attempts recorded.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STARTED", "MAP", "ALGORITHM", "MEMORY", "OUTCOME", "STEPS", "DURATION", "DETAIL")

	shown := 0
	for _, a := range attempts {
		if !a.Finished() && !all {
			continue
		}
		t.Row(historyRow(a)...)
		shown++
	}

	if shown == 0 {
		fmt.Fprintln(w, "No solve attempts recorded.")
	} else {
		fmt.Fprintln(w, t.String())
	}

	if err != nil {
		fmt.Fprintf(w, "warning: journal damaged after %d attempts: %v\n", len(attempts), err)
	}
	return nil
}

func historyRow(a wal.Attempt) []string {
	outcome := string(a.Outcome)
	if outcome == "" {
		outcome = "RUNNING"
	}

	steps, duration := "-", "-"
	if a.Outcome == wal.EventSucceeded {
		steps = strconv.Itoa(a.Steps)
	}
	if a.Finished() {
		duration = a.Duration.Round(time.Millisecond).String()
	}

	detail := a.Message
	if a.Kind != "" {
		detail = a.Kind + ": " + a.Message
	}

	return []string{
		a.StartedAt.Local().Format(time.DateTime),
		a.Request.MapPath,
		a.Request.Algorithm.String(),
		fmt.Sprintf("%d MB", a.Request.MemoryBudgetMB),
		outcome,
		steps,
		duration,
		detail,
	}
}
