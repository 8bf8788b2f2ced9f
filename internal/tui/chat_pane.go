package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mindtrail/mindtrail/internal/mapclient"
)

const (
	// chatInputHeight is the height of the message input textarea.
	chatInputHeight = 3
	// chatTickInterval is the interval for updating elapsed time during requests.
	chatTickInterval = 100 * time.Millisecond
)

// ChatPane is a TUI component for follow-up conversation about an
// explanation.
type ChatPane struct {
	client       mapclient.Explainer
	input        textarea.Model
	spinner      spinner.Model
	historyLimit int

	// Conversation context, set when an explanation modal hands off.
	conceptName   string
	originalQuery string
	tree          *mapclient.ConceptNode
	explanation   string
	history       []mapclient.ChatMessage

	loading   bool
	startedAt time.Time
	errorMsg  string
	width     int
	height    int
	focused   bool
	requestID int // For staleness detection
}

// chatTickMsg signals a tick for updating elapsed time.
type chatTickMsg time.Time

// chatResultMsg carries the assistant's reply to a chat message.
type chatResultMsg struct {
	response  string
	err       error
	requestID int
}

// NewChatPane creates a new ChatPane with the given backend client.
func NewChatPane(client mapclient.Explainer, historyLimit int) ChatPane {
	ta := textarea.New()
	ta.Placeholder = "Ask a follow-up question..."
	ta.SetHeight(chatInputHeight)
	ta.CharLimit = 500
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter submits

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Loading

	return ChatPane{
		client:       client,
		input:        ta,
		spinner:      sp,
		historyLimit: historyLimit,
	}
}

// Init returns initial commands for the chat pane.
func (p ChatPane) Init() tea.Cmd {
	return textarea.Blink
}

// SetContext points the conversation at a concept and its explanation, along
// with the original query and tree the backend needs for follow-up requests.
// Switching concepts starts a fresh history and invalidates any reply still
// in flight for the previous concept.
func (p *ChatPane) SetContext(conceptName, originalQuery string, tree *mapclient.ConceptNode, explanation string) {
	if conceptName != p.conceptName {
		p.history = nil
		p.errorMsg = ""
		p.requestID++
		p.loading = false
	}
	p.conceptName = conceptName
	p.originalQuery = originalQuery
	p.tree = tree
	p.explanation = explanation
}

// History returns the conversation so far.
func (p ChatPane) History() []mapclient.ChatMessage {
	return p.history
}

// Update handles messages and returns the updated pane and any commands.
func (p ChatPane) Update(msg tea.Msg) (ChatPane, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p.handleKey(msg)

	case chatTickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			cmds = append(cmds, cmd, p.tickCmd())
		}
		return p, tea.Batch(cmds...)

	case chatResultMsg:
		// Drop stale results
		if msg.requestID != p.requestID {
			return p, nil
		}
		p.loading = false
		if msg.err != nil {
			p.errorMsg = msg.err.Error()
			// Drop the optimistic user message so a retry is not doubled up.
			if n := len(p.history); n > 0 && p.history[n-1].Role == "user" {
				p.history = p.history[:n-1]
			}
		} else {
			p.errorMsg = ""
			p.history = append(p.history, mapclient.ChatMessage{Role: "assistant", Content: msg.response})
		}
		return p, nil

	case spinner.TickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return p, cmd
		}
		return p, nil

	default:
		if p.focused && !p.loading {
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			cmds = append(cmds, cmd)
		}
		return p, tea.Batch(cmds...)
	}
}

// handleKey processes keyboard input.
func (p ChatPane) handleKey(msg tea.KeyMsg) (ChatPane, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if !p.loading && strings.TrimSpace(p.input.Value()) != "" {
			return p.submitMessage()
		}
		return p, nil

	case "esc":
		// Clear input or error
		if p.errorMsg != "" {
			p.errorMsg = ""
			return p, nil
		}
		if p.input.Value() != "" {
			p.input.Reset()
			return p, nil
		}
		// Nothing to clear; parent handles focus switching.
		return p, nil

	default:
		if !p.loading {
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}
		return p, nil
	}
}

// submitMessage appends the user message and starts the request.
func (p ChatPane) submitMessage() (ChatPane, tea.Cmd) {
	text := strings.TrimSpace(p.input.Value())
	if text == "" {
		return p, nil
	}

	p.loading = true
	p.startedAt = time.Now()
	p.errorMsg = ""
	p.input.Reset()
	p.requestID++

	// Snapshot the history before the optimistic append; the backend gets
	// the user message in its own field.
	prior := p.contextHistory()
	p.history = append(p.history, mapclient.ChatMessage{Role: "user", Content: text})

	return p, tea.Batch(p.spinner.Tick, p.requestCmd(text, prior, p.requestID), p.tickCmd())
}

// contextHistory returns the trailing history window sent as context.
func (p ChatPane) contextHistory() []mapclient.ChatMessage {
	h := p.history
	if p.historyLimit > 0 && len(h) > p.historyLimit {
		h = h[len(h)-p.historyLimit:]
	}
	out := make([]mapclient.ChatMessage, len(h))
	copy(out, h)
	return out
}

// requestCmd returns a command that sends the chat message to the backend.
func (p ChatPane) requestCmd(text string, history []mapclient.ChatMessage, requestID int) tea.Cmd {
	client := p.client
	req := mapclient.ChatRequest{
		ConceptName:   p.conceptName,
		OriginalQuery: p.originalQuery,
		KnowledgeTree: p.tree,
		Explanation:   p.explanation,
		ChatHistory:   history,
		UserMessage:   text,
	}
	return func() tea.Msg {
		if client == nil {
			return chatResultMsg{err: fmt.Errorf("chat client not initialized"), requestID: requestID}
		}

		ctx, cancel := context.WithTimeout(context.Background(), mapclient.DefaultTimeout)
		defer cancel()

		response, err := client.ChatAboutExplanation(ctx, req)
		return chatResultMsg{response: response, err: err, requestID: requestID}
	}
}

// tickCmd returns a command that sends a tick message.
func (p ChatPane) tickCmd() tea.Cmd {
	return tea.Tick(chatTickInterval, func(t time.Time) tea.Msg {
		return chatTickMsg(t)
	})
}

// View renders the chat pane.
func (p ChatPane) View() string {
	if p.width == 0 || p.height == 0 {
		return ""
	}

	contentWidth := safeWidth(p.width - 4)

	var sections []string

	header := "Chat"
	if p.conceptName != "" {
		header = "Chat: " + truncateString(p.conceptName, contentWidth-6)
	}
	sections = append(sections, styles.Title.Width(contentWidth).Render(header))

	historyHeight := p.height - chatInputHeight - 4 // header + status + input + padding
	sections = append(sections, p.renderHistory(contentWidth, historyHeight))

	sections = append(sections, p.renderStatusBar(contentWidth))

	p.input.SetWidth(contentWidth)
	sections = append(sections, p.input.View())

	return strings.Join(sections, "\n")
}

// renderHistory renders the scrollback, newest messages pinned to the bottom.
func (p ChatPane) renderHistory(width, height int) string {
	if height < 1 {
		height = 1
	}

	if len(p.history) == 0 {
		placeholder := "Open a concept's explanation and ask about it here."
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(width).
			Height(height).
			Render(placeholder)
	}

	var lines []string
	for _, msg := range p.history {
		prefix := "you: "
		style := styles.ChatUser
		if msg.Role == "assistant" {
			prefix = "  ai: "
			style = styles.ChatAssistant
		}
		wrapped := wrapText(sanitize(msg.Content), width-len(prefix))
		for i, line := range wrapped {
			if i == 0 {
				lines = append(lines, style.Render(prefix+line))
			} else {
				lines = append(lines, style.Render(strings.Repeat(" ", len(prefix))+line))
			}
		}
	}

	// Keep the tail visible.
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for len(lines) < height {
		lines = append([]string{""}, lines...)
	}

	return strings.Join(lines, "\n")
}

// renderStatusBar renders the status bar with loading state or error.
func (p ChatPane) renderStatusBar(width int) string {
	if p.loading {
		elapsed := time.Since(p.startedAt).Round(100 * time.Millisecond)
		status := fmt.Sprintf("%s Thinking... (%s elapsed)", p.spinner.View(), elapsed)
		return styles.Loading.Width(width).Render(status)
	}

	if p.errorMsg != "" {
		return styles.Error.Width(width).Render("Error: " + truncateString(p.errorMsg, width-7))
	}

	hint := "Enter: send | Esc: clear"
	return styles.Footer.Width(width).Render(hint)
}

// SetSize updates the pane dimensions.
func (p *ChatPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.SetWidth(safeWidth(width - 4))
}

// SetFocused updates the focus state.
func (p *ChatPane) SetFocused(focused bool) {
	p.focused = focused
	if focused {
		p.input.Focus()
	} else {
		p.input.Blur()
	}
}

// IsFocused returns true if the pane is focused.
func (p ChatPane) IsFocused() bool {
	return p.focused
}

// IsLoading returns true if a request is in progress.
func (p ChatPane) IsLoading() bool {
	return p.loading
}
