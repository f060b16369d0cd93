package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/pgdeck/pgdeck/internal/models"
	"github.com/pgdeck/pgdeck/internal/ui/theme"
)

const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldUser
	fieldPassword
	fieldDBName
	fieldCount
)

// ConnForm is the add/edit connection dialog.
type ConnForm struct {
	fields  [fieldCount]textinput.Model
	focused int
	editID  string
	theme   theme.Theme
}

// NewConnForm creates a form. A non-zero existing connection pre-fills
// the fields and keeps its id on save.
func NewConnForm(th theme.Theme, existing *models.SavedConnection) *ConnForm {
	labels := [fieldCount]string{"Name", "Host", "Port", "User", "Password", "Database"}
	form := &ConnForm{theme: th}
	for i := range form.fields {
		input := textinput.New()
		input.Placeholder = labels[i]
		input.Prompt = ""
		form.fields[i] = input
	}
	form.fields[fieldHost].SetValue("localhost")
	form.fields[fieldPort].SetValue("5432")
	form.fields[fieldPassword].EchoMode = textinput.EchoPassword

	if existing != nil {
		form.editID = existing.ID
		form.fields[fieldName].SetValue(existing.Name)
		form.fields[fieldHost].SetValue(existing.Config.Host)
		form.fields[fieldPort].SetValue(strconv.Itoa(existing.Config.Port))
		form.fields[fieldUser].SetValue(existing.Config.User)
		form.fields[fieldPassword].SetValue(existing.Config.Password)
		form.fields[fieldDBName].SetValue(existing.Config.DBName)
	}
	form.fields[0].Focus()
	return form
}

// Update forwards messages; tab and shift+tab cycle fields.
func (f *ConnForm) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.moveFocus(1)
			return nil
		case "shift+tab", "up":
			f.moveFocus(-1)
			return nil
		}
	}
	var cmd tea.Cmd
	f.fields[f.focused], cmd = f.fields[f.focused].Update(msg)
	return cmd
}

func (f *ConnForm) moveFocus(delta int) {
	f.fields[f.focused].Blur()
	f.focused = (f.focused + delta + fieldCount) % fieldCount
	f.fields[f.focused].Focus()
}

// Connection validates the form and returns the saved connection it
// describes.
func (f *ConnForm) Connection() (models.SavedConnection, error) {
	name := strings.TrimSpace(f.fields[fieldName].Value())
	host := strings.TrimSpace(f.fields[fieldHost].Value())
	dbName := strings.TrimSpace(f.fields[fieldDBName].Value())
	if host == "" || dbName == "" {
		return models.SavedConnection{}, fmt.Errorf("host and database are required")
	}
	port, err := strconv.Atoi(strings.TrimSpace(f.fields[fieldPort].Value()))
	if err != nil || port <= 0 || port > 65535 {
		return models.SavedConnection{}, fmt.Errorf("invalid port %q", f.fields[fieldPort].Value())
	}
	if name == "" {
		name = fmt.Sprintf("%s/%s", host, dbName)
	}

	id := f.editID
	if id == "" {
		id = uuid.New().String()
	}
	return models.SavedConnection{
		ID:   id,
		Name: name,
		Config: models.DBConfig{
			Host:     host,
			Port:     port,
			User:     strings.TrimSpace(f.fields[fieldUser].Value()),
			Password: f.fields[fieldPassword].Value(),
			DBName:   dbName,
		},
	}, nil
}

// View renders the form.
func (f *ConnForm) View() string {
	labels := [fieldCount]string{"Name", "Host", "Port", "User", "Password", "Database"}
	labelStyle := lipgloss.NewStyle().Width(10).Foreground(f.theme.Metadata)

	var b strings.Builder
	title := "New Connection"
	if f.editID != "" {
		title = "Edit Connection"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")
	for i := range f.fields {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(f.fields[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(f.theme.Metadata).
		Render("[enter] save  [esc] cancel  [tab] next field"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(f.theme.BorderFocused).
		Padding(1, 2).
		Width(50).
		Render(b.String())
}
