package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pgdeck/pgdeck/internal/ui/theme"
)

// Panel is a bordered box with a bold title line. The border color
// tracks Focused so exactly one pane reads as active at a time.
type Panel struct {
	Title   string
	Content string
	Width   int
	Height  int
	Focused bool
	Theme   theme.Theme
}

func (p *Panel) View() string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}

	border := p.Theme.Border
	if p.Focused {
		border = p.Theme.BorderFocused
	}
	box := lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)

	content := p.Content
	if p.Title != "" {
		title := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render(p.Title)
		content = title + "\n" + content
	}
	return box.Render(content)
}
