package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pgdeck/pgdeck/internal/ui/theme"
)

// ErrorModal shows a failure centered on screen. For failed queries and
// edits SQL carries the statement that failed.
type ErrorModal struct {
	Title   string
	Message string
	SQL     string
	theme   theme.Theme
}

// NewErrorModal creates an error modal.
func NewErrorModal(th theme.Theme, title, message, sql string) *ErrorModal {
	return &ErrorModal{Title: title, Message: message, SQL: sql, theme: th}
}

// View renders the modal box.
func (m *ErrorModal) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(m.theme.Error).Render(m.Title))
	b.WriteString("\n\n")
	b.WriteString(wrap(m.Message, 56))
	if m.SQL != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Metadata).Render(wrap(m.SQL, 56)))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Metadata).Render("[esc] dismiss"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Error).
		Padding(1, 2).
		Width(60).
		Render(b.String())
}

func wrap(s string, width int) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		for len(line) > width {
			lines = append(lines, line[:width])
			line = line[width:]
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
