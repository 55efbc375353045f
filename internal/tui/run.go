package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the program for model and blocks until the user quits or ctx
// is cancelled. adapter is attached before the first message is processed.
func Run(ctx context.Context, model Model, adapter *Adapter, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(model, opts...)
	adapter.Attach(p)
	defer adapter.attach(nil)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
