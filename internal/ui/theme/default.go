package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),

		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		TableHeader:      lipgloss.Color("62"),
		TableRowSelected: lipgloss.Color("25"),

		TabActive:   lipgloss.Color("62"),
		TabInactive: lipgloss.Color("240"),

		ConnLive:   lipgloss.Color("42"),
		ConnDead:   lipgloss.Color("244"),
		SchemaIcon: lipgloss.Color("75"),
		TableIcon:  lipgloss.Color("139"),
		Metadata:   lipgloss.Color("245"),
		PrimaryKey: lipgloss.Color("220"),
	}
}
