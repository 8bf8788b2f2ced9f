package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minWidth  = 60
	minHeight = 15
)

// View implements tea.Model. This renders the full TUI display.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Handle too small terminal
	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	// Modal overlays everything while open.
	if m.modal.IsOpen() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.modal.View(m.width, m.height))
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderSearchBar())
	sections = append(sections, m.renderDivider())
	sections = append(sections, m.renderContent())
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the title line with the active query.
func (m model) renderHeader() string {
	title := styles.Title.Render("mindtrail")
	if q := m.mapPane.Query(); q != "" {
		title += " " + styles.Query.Render("· "+truncateString(q, m.width-12))
	}
	return title
}

// renderSearchBar renders the concept input line.
func (m model) renderSearchBar() string {
	m.searchInput.SetWidth(safeWidth(m.width - 2))
	prompt := "> "
	if m.focusedPane == FocusSearch {
		prompt = styles.Query.Render("> ")
	} else {
		prompt = styles.Muted.Render("> ")
	}
	return prompt + m.searchInput.View()
}

// renderDivider renders a horizontal divider line.
func (m model) renderDivider() string {
	return styles.Divider.Render(strings.Repeat("─", safeWidth(m.width)))
}

// renderContent renders the map pane, with the chat pane alongside when open.
func (m model) renderContent() string {
	if !m.chatVisible() {
		return m.mapPane.View()
	}

	chatWidth := m.width * chatWidthPercent / 100
	if chatWidth < minChatCols {
		chatWidth = minChatCols
	}

	mapView := m.mapPane.View()

	chatStyle := styles.UnfocusedBorder
	if m.focusedPane == FocusChat {
		chatStyle = styles.FocusedBorder
	}
	chatView := chatStyle.
		Width(safeWidth(chatWidth - 2)).
		Height(max(1, m.height-headerRows-footerRows-2)).
		Render(m.chatPane.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, mapView, chatView)
}

// renderTooSmall renders a minimal message for terminals that are too small.
func (m model) renderTooSmall() string {
	return fmt.Sprintf("Terminal too small (%dx%d). Need %dx%d minimum.",
		m.width, m.height, minWidth, minHeight)
}

// renderFooter renders keyboard shortcuts help text.
func (m model) renderFooter() string {
	var help string

	switch m.focusedPane {
	case FocusSearch:
		help = "enter: map it  tab: switch  esc: clear  ctrl+c: quit"
	case FocusChat:
		help = "enter: send  tab: switch  esc: clear  ctrl+c: quit"
	default:
		help = "/: search  arrows/hjkl: pan  +/-: zoom  f: fit  n/p: select  enter: explain"
		if m.chatEnabled {
			help += "  c: chat"
		}
		help += "  q: quit"
	}

	return styles.Footer.Render(truncateString(help, safeWidth(m.width)))
}
