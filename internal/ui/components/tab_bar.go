package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pgdeck/pgdeck/internal/ui/theme"
	"github.com/pgdeck/pgdeck/internal/workspace"
)

// TabBar renders the workspace tab strip.
type TabBar struct {
	Width int
	Theme theme.Theme
}

// View renders all tabs, marking the active one and any with a running
// query.
func (tb *TabBar) View(tabs []workspace.Tab, activeID string) string {
	active := lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(tb.Theme.TabActive).
		Bold(true).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(tb.Theme.TabInactive).
		Padding(0, 1)

	var parts []string
	for _, tab := range tabs {
		label := tab.Title
		if label == "" {
			label = "untitled"
		}
		if tab.IsLoading {
			label += " ⟳"
		}
		if tab.ID == activeID {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}

	bar := strings.Join(parts, "")
	return lipgloss.NewStyle().Width(tb.Width).Render(bar)
}
