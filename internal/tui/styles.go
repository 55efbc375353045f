package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ChuLiYu/sokoban-player/internal/board"
	"github.com/ChuLiYu/sokoban-player/internal/render"
)

// Theme holds the palette
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color

	Wall   lipgloss.Color
	Target lipgloss.Color
	Box    lipgloss.Color
	Placed lipgloss.Color
	Agent  lipgloss.Color
}

// DefaultTheme uses 256-color codes that read on dark and light terminals.
func DefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.Color("63"),
		Muted:   lipgloss.Color("244"),
		Success: lipgloss.Color("42"),
		Error:   lipgloss.Color("196"),
		Warning: lipgloss.Color("214"),

		Wall:   lipgloss.Color("240"),
		Target: lipgloss.Color("203"),
		Box:    lipgloss.Color("178"),
		Placed: lipgloss.Color("42"),
		Agent:  lipgloss.Color("39"),
	}
}

// Styles are the rendered styles derived from a Theme
type Styles struct {
	Title    lipgloss.Style
	Board    lipgloss.Style
	Progress lipgloss.Style
	Mode     lipgloss.Style
	Muted    lipgloss.Style

	Thinking lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style

	wall   lipgloss.Style
	target lipgloss.Style
	box    lipgloss.Style
	placed lipgloss.Style
	agent  lipgloss.Style
	floor  lipgloss.Style
}

// NewStyles builds Styles from theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Board: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Muted).
			Padding(0, 1),

		Progress: lipgloss.NewStyle().Bold(true),
		Mode:     lipgloss.NewStyle().Foreground(theme.Muted).Italic(true),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),

		Thinking: lipgloss.NewStyle().Foreground(theme.Warning),
		Success:  lipgloss.NewStyle().Foreground(theme.Success).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(theme.Error).Bold(true),

		wall:   lipgloss.NewStyle().Foreground(theme.Wall),
		target: lipgloss.NewStyle().Foreground(theme.Target),
		box:    lipgloss.NewStyle().Foreground(theme.Box).Bold(true),
		placed: lipgloss.NewStyle().Foreground(theme.Placed).Bold(true),
		agent:  lipgloss.NewStyle().Foreground(theme.Agent).Bold(true),
		floor:  lipgloss.NewStyle(),
	}
}

// DefaultStyles is NewStyles(DefaultTheme())
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}

// cell renders one cell as its glyph in the matching color
func (s Styles) cell(c board.Cell) string {
	glyph := string(render.Glyph(c))
	switch {
	case c.IsWall:
		return s.wall.Render(glyph)
	case c.BoxSatisfied:
		return s.placed.Render(glyph)
	case c.Occupant == board.OccupantBox:
		return s.box.Render(glyph)
	case c.Occupant == board.OccupantAgent:
		return s.agent.Render(glyph)
	case c.IsTarget:
		return s.target.Render(glyph)
	default:
		return s.floor.Render(glyph)
	}
}
