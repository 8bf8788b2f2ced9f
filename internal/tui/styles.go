package tui

import "github.com/charmbracelet/lipgloss"

// styles contains all lipgloss styles used by the TUI.
var styles = struct {
	// Layout styles
	Container lipgloss.Style
	Divider   lipgloss.Style

	// Header styles
	Title lipgloss.Style
	Query lipgloss.Style

	// Footer style
	Footer lipgloss.Style

	// Status styles
	Loading lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style

	// Chat styles
	ChatUser      lipgloss.Style
	ChatAssistant lipgloss.Style

	// Focus indicators
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style
}{
	Container: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Query: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Loading: lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	ChatUser: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")),

	ChatAssistant: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),

	FocusedBorder: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")), // Bright blue for focused

	UnfocusedBorder: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")), // Dimmed gray for unfocused
}

// mapStyles contains styles specific to map rendering.
var mapStyles = struct {
	Link         lipgloss.Style // Tree links
	NodeSelected lipgloss.Style // Selected/focused node
	Tooltip      lipgloss.Style // Selected-node detail line
}{
	Link: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	NodeSelected: lipgloss.NewStyle().
		Bold(true).
		Background(lipgloss.Color("236")),

	Tooltip: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),
}
