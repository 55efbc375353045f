package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ChuLiYu/sokoban-player/internal/snapshot"
	"github.com/ChuLiYu/sokoban-player/internal/tui"
)

func buildPlayCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Replay a stored solution without solving",
		Long: `Load a solution and replay it. Without a file the last successful solution
(storage.trace_path) is used. A file may hold a stored solution record or a
bare JSON array of boards.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path := cfg.Storage.TracePath
			if len(args) == 1 {
				path = args[0]
			}
			rec, err := snapshot.LoadFile(path)
			if err != nil {
				return fmt.Errorf("failed to load solution: %w", err)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runPlay(ctx, cfg, rec, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print boards as text, play to the end and exit")
	return cmd
}

func runPlay(ctx context.Context, cfg *Config, rec snapshot.Record, plain bool) error {
	if plain {
		adapter := newPlainAdapter(os.Stdout)
		s, err := newSession(cfg, adapter, false)
		if err != nil {
			return err
		}
		defer s.close()

		return s.run(ctx, func(ctx context.Context) error {
			if err := s.ctrl.LoadRecord(rec); err != nil {
				return err
			}
			adapter.report(nil)
			return runPlain(ctx, s.ctrl, adapter, false)
		})
	}

	adapter := tui.NewAdapter()
	s, err := newSession(cfg, adapter, true)
	if err != nil {
		return err
	}
	defer s.close()

	return s.run(ctx, func(ctx context.Context) error {
		startup := func() tea.Msg {
			if err := s.ctrl.LoadRecord(rec); err != nil {
				s.log.Error().Err(err).Msg("Failed to load solution")
			}
			return nil
		}
		return tui.Run(ctx, tui.NewModel(s.ctrl, tui.WithStartup(startup)), adapter)
	})
}
