package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgdeck/pgdeck/internal/ui/theme"
)

// Prompt is a one-line modal input used for renaming tabs and editing
// cell values. For cell edits ctrl+n toggles NULL.
type Prompt struct {
	Label     string
	AllowNull bool
	IsNull    bool

	input textinput.Model
	theme theme.Theme
}

// NewPrompt creates a prompt pre-filled with value.
func NewPrompt(th theme.Theme, label, value string, allowNull bool) *Prompt {
	input := textinput.New()
	input.SetValue(value)
	input.Focus()
	input.CursorEnd()
	return &Prompt{Label: label, AllowNull: allowNull, input: input, theme: th}
}

// Update forwards a message to the input. Typing clears a NULL toggle.
func (p *Prompt) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		if p.AllowNull && key.String() == "ctrl+n" {
			p.IsNull = !p.IsNull
			return nil
		}
		if p.IsNull && key.Type == tea.KeyRunes {
			p.IsNull = false
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// Value returns the entered text; nil means NULL.
func (p *Prompt) Value() *string {
	if p.IsNull {
		return nil
	}
	v := p.input.Value()
	return &v
}

// View renders the prompt box.
func (p *Prompt) View() string {
	body := p.input.View()
	if p.IsNull {
		body = lipgloss.NewStyle().Foreground(p.theme.Metadata).Italic(true).Render("NULL")
	}

	hint := "[enter] apply  [esc] cancel"
	if p.AllowNull {
		hint += "  [ctrl+n] NULL"
	}
	hintLine := lipgloss.NewStyle().Foreground(p.theme.Metadata).Render(hint)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.theme.BorderFocused).
		Padding(0, 1).
		Width(60)
	title := lipgloss.NewStyle().Bold(true).Render(p.Label)
	return box.Render(title + "\n" + body + "\n" + hintLine)
}
