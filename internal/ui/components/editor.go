package components

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgdeck/pgdeck/internal/ui/theme"
)

// Editor is the SQL editor pane, a thin wrapper over a textarea whose
// content is pushed back into the workspace tab on every keystroke.
type Editor struct {
	area  textarea.Model
	theme theme.Theme
}

// NewEditor creates an empty SQL editor.
func NewEditor(th theme.Theme) *Editor {
	area := textarea.New()
	area.Placeholder = "SELECT ..."
	area.Prompt = ""
	area.ShowLineNumbers = true
	area.CharLimit = 0
	area.FocusedStyle.CursorLine = lipgloss.NewStyle().Background(th.Selection)
	return &Editor{area: area, theme: th}
}

// Update forwards a message to the textarea.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return cmd
}

// Value returns the editor text.
func (e *Editor) Value() string { return e.area.Value() }

// SetValue replaces the editor text, used when switching tabs.
func (e *Editor) SetValue(sql string) {
	e.area.SetValue(sql)
}

// Focus gives the editor keyboard focus.
func (e *Editor) Focus() tea.Cmd { return e.area.Focus() }

// Blur removes keyboard focus.
func (e *Editor) Blur() { e.area.Blur() }

// Focused reports keyboard focus.
func (e *Editor) Focused() bool { return e.area.Focused() }

// SetSize resizes the textarea.
func (e *Editor) SetSize(width, height int) {
	e.area.SetWidth(width)
	e.area.SetHeight(height)
}

// Copy puts the editor content on the system clipboard.
func (e *Editor) Copy() error {
	return clipboard.WriteAll(e.area.Value())
}

// View renders the editor.
func (e *Editor) View() string { return e.area.View() }
