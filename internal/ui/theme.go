package ui

import "github.com/charmbracelet/lipgloss"

// theme collects the lipgloss styles shared by the picker and the monitor.
type theme struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Dimmed   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Error    lipgloss.Style
	Offline  lipgloss.Style
	Help     lipgloss.Style
	Frame    lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")),
		Dimmed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Width(10),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Offline: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(0, 2),
	}
}
