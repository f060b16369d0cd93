// Package help renders the keybinding overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type binding struct {
	keys string
	desc string
}

var sections = []struct {
	title    string
	bindings []binding
}{
	{
		title: "Global",
		bindings: []binding{
			{"tab", "cycle focus (tree → editor → results)"},
			{"?", "toggle this help"},
			{"ctrl+c", "quit"},
		},
	},
	{
		title: "Tabs",
		bindings: []binding{
			{"ctrl+t", "new tab"},
			{"ctrl+w", "close tab"},
			{"ctrl+right / ctrl+left", "next / previous tab"},
			{"ctrl+g", "rename tab"},
		},
	},
	{
		title: "Connections",
		bindings: []binding{
			{"a", "add connection"},
			{"e", "edit connection"},
			{"x", "delete connection"},
			{"enter / space", "toggle node, connect, open table"},
		},
	},
	{
		title: "Editor",
		bindings: []binding{
			{"ctrl+r", "run query"},
			{"ctrl+y", "copy editor content"},
		},
	},
	{
		title: "Results",
		bindings: []binding{
			{"h/j/k/l or arrows", "move cell cursor"},
			{"ctrl+u / ctrl+d", "page up / down"},
			{"enter", "edit cell"},
			{"d", "delete row"},
			{"y", "copy cell"},
		},
	},
}

// Render draws the help overlay centered in the given dimensions.
func Render(width, height int) string {
	keyStyle := lipgloss.NewStyle().Bold(true).Width(24)
	titleStyle := lipgloss.NewStyle().Bold(true).Underline(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("pgdeck keybindings"))
	b.WriteString("\n")
	for _, section := range sections {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(section.title))
		b.WriteString("\n")
		for _, bind := range section.bindings {
			b.WriteString(keyStyle.Render(bind.keys))
			b.WriteString(bind.desc)
			b.WriteString("\n")
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 3).
		Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
