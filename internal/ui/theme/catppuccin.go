package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMochaTheme returns the Catppuccin Mocha theme
// Based on: https://github.com/catppuccin/catppuccin
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		Background: lipgloss.Color("#1e1e2e"), // Base
		Foreground: lipgloss.Color("#cdd6f4"), // Text

		Border:        lipgloss.Color("#45475a"), // Surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // Blue
		Selection:     lipgloss.Color("#313244"), // Surface0
		Cursor:        lipgloss.Color("#f5e0dc"), // Rosewater

		Success: lipgloss.Color("#a6e3a1"), // Green
		Warning: lipgloss.Color("#f9e2af"), // Yellow
		Error:   lipgloss.Color("#f38ba8"), // Red
		Info:    lipgloss.Color("#89dceb"), // Sky

		TableHeader:      lipgloss.Color("#89b4fa"), // Blue
		TableRowSelected: lipgloss.Color("#313244"), // Surface0

		TabActive:   lipgloss.Color("#89b4fa"), // Blue
		TabInactive: lipgloss.Color("#6c7086"), // Overlay0

		ConnLive:   lipgloss.Color("#a6e3a1"), // Green
		ConnDead:   lipgloss.Color("#6c7086"), // Overlay0
		SchemaIcon: lipgloss.Color("#89b4fa"), // Blue
		TableIcon:  lipgloss.Color("#cba6f7"), // Mauve
		Metadata:   lipgloss.Color("#6c7086"), // Overlay0
		PrimaryKey: lipgloss.Color("#f9e2af"), // Yellow
	}
}
