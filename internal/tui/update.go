package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model. It handles all message types and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePaneSizes()
		return m, nil

	case tea.MouseMsg:
		if m.modal.IsOpen() {
			return m, nil
		}
		var cmd tea.Cmd
		m.mapPane, cmd = m.mapPane.Update(msg)
		return m, cmd

	case MapOpenModalMsg:
		cmd := m.modal.Open(msg.Node, m.mapPane.Query(), m.mapPane.Tree())
		return m, cmd

	case modalExplainResultMsg:
		cmd := m.modal.Update(msg)
		// Hand the loaded explanation to the chat pane so follow-up
		// questions carry the right context.
		if node := m.modal.Node(); node != nil && m.modal.Explanation() != "" {
			m.chatPane.SetContext(node.Name, m.mapPane.Query(), m.mapPane.Tree(), m.modal.Explanation())
		}
		return m, cmd

	case mapStartLoadingMsg, mapResultMsg, mapTickMsg, animTickMsg:
		var cmd tea.Cmd
		m.mapPane, cmd = m.mapPane.Update(msg)
		return m, cmd

	case chatTickMsg, chatResultMsg:
		var cmd tea.Cmd
		m.chatPane, cmd = m.chatPane.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.mapPane, cmd = m.mapPane.Update(msg)
		cmds = append(cmds, cmd)
		m.chatPane, cmd = m.chatPane.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	default:
		// Forward unknown messages to the focused text input.
		switch m.focusedPane {
		case FocusSearch:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			cmds = append(cmds, cmd)
		case FocusChat:
			var cmd tea.Cmd
			m.chatPane, cmd = m.chatPane.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
}

// handleKey processes keyboard input and returns the updated model and command.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys: always work regardless of focus
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// Modal swallows all keys while open.
	if m.modal.IsOpen() {
		if key == "c" && m.chatEnabled {
			// Jump from explanation to chat about it.
			if node := m.modal.Node(); node != nil {
				m.chatPane.SetContext(node.Name, m.mapPane.Query(), m.mapPane.Tree(), m.modal.Explanation())
			}
			m.modal.Close()
			if !m.chatOpen {
				m.toggleChat()
			} else {
				m.setFocus(FocusChat)
			}
			return m, nil
		}
		cmd := m.modal.Update(msg)
		return m, cmd
	}

	switch key {
	case "tab":
		m.cycleFocus()
		return m, nil

	case "esc":
		// Text panes get first crack at clearing their own state; if they
		// had nothing to clear, focus falls back.
		switch m.focusedPane {
		case FocusSearch:
			if m.searchInput.Value() != "" {
				m.searchInput.Reset()
				return m, nil
			}
			m.setFocus(FocusMap)
			return m, nil
		case FocusChat:
			var cmd tea.Cmd
			m.chatPane, cmd = m.chatPane.Update(msg)
			return m, cmd
		default:
			var cmd tea.Cmd
			m.mapPane, cmd = m.mapPane.Update(msg)
			return m, cmd
		}
	}

	// While typing, every other key belongs to the text input; viewport
	// shortcuts must not fire.
	if m.focusedPane == FocusSearch {
		if key == "enter" {
			concept := strings.TrimSpace(m.searchInput.Value())
			if concept == "" {
				return m, nil
			}
			cmd := m.mapPane.Search(concept)
			m.setFocus(FocusMap)
			return m, cmd
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	if m.focusedPane == FocusChat {
		var cmd tea.Cmd
		m.chatPane, cmd = m.chatPane.Update(msg)
		return m, cmd
	}

	// Map pane focused: host shortcuts first, the rest go to the pane.
	switch key {
	case "q":
		return m, tea.Quit

	case "/", "s":
		m.setFocus(FocusSearch)
		return m, nil

	case "c":
		m.toggleChat()
		return m, nil
	}

	var cmd tea.Cmd
	m.mapPane, cmd = m.mapPane.Update(msg)
	return m, cmd
}
