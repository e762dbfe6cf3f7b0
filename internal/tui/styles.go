package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the browser.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
	Panel    lipgloss.Style
	Footer   lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Focused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().MarginTop(1),
	}
}
