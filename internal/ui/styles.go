package ui

import (
	"github.com/charmbracelet/lipgloss"

	"subs/internal/config"
	"subs/internal/ui/display"
)

// Styles contains the style of each cell attribute and of the help screen
type Styles struct {
	Selected  lipgloss.Style
	Inactive  lipgloss.Style
	Bold      lipgloss.Style
	Error     lipgloss.Style
	Cursor    lipgloss.Style
	Title     lipgloss.Style
	Key       lipgloss.Style
	Desc      lipgloss.Style
	Separator lipgloss.Style
}

// NewStyles creates the styles for a theme
func NewStyles(theme config.Theme) Styles {
	return Styles{
		Selected: lipgloss.NewStyle().
			Reverse(true).
			Foreground(lipgloss.Color(theme.Selected)),
		Inactive: lipgloss.NewStyle().
			Underline(true).
			Foreground(lipgloss.Color(theme.Inactive)),
		Bold:   lipgloss.NewStyle().Bold(true),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Error)), // red by default
		Cursor: lipgloss.NewStyle().Reverse(true),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Title)).
			MarginBottom(1),
		Key:       lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Desc:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Border)),
	}
}

// For returns the style for a set of attributes
func (s Styles) For(a display.Attr) lipgloss.Style {
	st := lipgloss.NewStyle()
	if a&display.AttrReverse != 0 {
		st = st.Inherit(s.Selected)
	}
	if a&display.AttrUnderline != 0 {
		st = st.Inherit(s.Inactive)
	}
	if a&display.AttrBold != 0 {
		st = st.Inherit(s.Bold)
	}
	if a&display.AttrError != 0 {
		st = st.Inherit(s.Error)
	}
	return st
}
