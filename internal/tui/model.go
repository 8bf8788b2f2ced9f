package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mindtrail/mindtrail/internal/config"
	"github.com/mindtrail/mindtrail/internal/mapclient"
)

// FocusedPane represents which pane currently has keyboard focus.
type FocusedPane int

const (
	// FocusSearch means the concept search input has focus (default).
	FocusSearch FocusedPane = iota
	// FocusMap means the map pane has focus.
	FocusMap
	// FocusChat means the chat pane has focus.
	FocusChat
)

// Layout size constants.
const (
	// chatWidthPercent is the percentage of width for the chat pane.
	chatWidthPercent = 40
	// minMapCols is the minimum width for the map pane.
	minMapCols = 40
	// minChatCols is the minimum width for the chat pane.
	minChatCols = 30
	// headerRows is title + search input + divider.
	headerRows = 3
	// footerRows is the help line.
	footerRows = 1
)

// model is the bubbletea model for the TUI.
type model struct {
	searchInput textarea.Model
	mapPane     MapPane
	modal       *ExplanationModal
	chatPane    ChatPane

	chatEnabled bool
	chatOpen    bool

	initialQuery string

	width       int
	height      int
	focusedPane FocusedPane
}

// newModel creates a new model wired to the given backend client.
func newModel(client mapclient.Client, cfg *config.Config, initialQuery string) model {
	ta := textarea.New()
	ta.Placeholder = "Concept to map (e.g. \"linear algebra\")..."
	ta.SetHeight(1)
	ta.CharLimit = 200
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter submits
	ta.Focus()

	m := model{
		searchInput:  ta,
		mapPane:      NewMapPane(client, cfg),
		modal:        NewExplanationModal(client),
		chatPane:     NewChatPane(client, cfg.Chat.HistoryLimit),
		chatEnabled:  cfg.Chat.Enabled,
		initialQuery: initialQuery,
		focusedPane:  FocusSearch,
	}
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		tea.EnterAltScreen,
		tea.EnableMouseCellMotion,
	}
	if m.initialQuery != "" {
		cmds = append(cmds, m.mapPane.Search(m.initialQuery))
	}
	return tea.Batch(cmds...)
}

// Update, handleKey are implemented in update.go
// View is implemented in view.go

// updatePaneSizes recalculates pane dimensions from the window size.
func (m *model) updatePaneSizes() {
	contentHeight := max(1, m.height-headerRows-footerRows)

	mapWidth := m.width
	if m.chatVisible() {
		chatWidth := m.width * chatWidthPercent / 100
		if chatWidth < minChatCols {
			chatWidth = minChatCols
		}
		mapWidth = m.width - chatWidth
		m.chatPane.SetSize(chatWidth-2, contentHeight-2) // Account for borders
	}

	m.mapPane.SetSize(mapWidth, contentHeight)
	m.mapPane.SetOrigin(0, headerRows)
	m.modal.SetSize(m.width, m.height)
}

// chatVisible returns true if the chat pane should be rendered.
func (m model) chatVisible() bool {
	return m.chatEnabled && m.chatOpen && m.width >= minMapCols+minChatCols
}

// toggleChat opens or closes the chat pane.
func (m *model) toggleChat() {
	if !m.chatEnabled {
		return
	}
	m.chatOpen = !m.chatOpen
	if m.chatOpen {
		m.setFocus(FocusChat)
	} else {
		m.setFocus(FocusMap)
	}
	m.updatePaneSizes()
}

// setFocus moves keyboard focus to a pane, updating per-pane focus state.
func (m *model) setFocus(pane FocusedPane) {
	m.focusedPane = pane
	if pane == FocusSearch {
		m.searchInput.Focus()
	} else {
		m.searchInput.Blur()
	}
	m.mapPane.SetFocused(pane == FocusMap)
	m.chatPane.SetFocused(pane == FocusChat)
}

// cycleFocus advances focus to the next visible pane.
func (m *model) cycleFocus() {
	switch m.focusedPane {
	case FocusSearch:
		m.setFocus(FocusMap)
	case FocusMap:
		if m.chatVisible() {
			m.setFocus(FocusChat)
		} else {
			m.setFocus(FocusSearch)
		}
	case FocusChat:
		m.setFocus(FocusSearch)
	}
}

// typingFocused returns true when a text input owns the keyboard, which
// suppresses viewport shortcut handling.
func (m model) typingFocused() bool {
	return m.focusedPane == FocusSearch || m.focusedPane == FocusChat
}
