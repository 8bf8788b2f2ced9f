package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mindtrail/mindtrail/internal/layout"
	"github.com/mindtrail/mindtrail/internal/mapclient"
)

// ExplanationModal displays a generated explanation for a concept in a
// modal overlay.
type ExplanationModal struct {
	node        *layout.Node
	explanation string
	client      mapclient.Explainer
	query       string // original query the map was generated from
	tree        *mapclient.ConceptNode
	loading     bool
	errorMsg    string
	width       int
	height      int
	scrollPos   int
	open        bool
	requestID   int // For staleness detection
}

// modalExplainResultMsg carries the result of an explanation fetch.
type modalExplainResultMsg struct {
	explanation string
	err         error
	requestID   int
}

// NewExplanationModal creates a new ExplanationModal.
func NewExplanationModal(client mapclient.Explainer) *ExplanationModal {
	return &ExplanationModal{
		client: client,
	}
}

// Open opens the modal for the given node and starts fetching its
// explanation. The original query and the full tree travel with the request
// so the backend can explain the concept in context.
func (m *ExplanationModal) Open(node *layout.Node, query string, tree *mapclient.ConceptNode) tea.Cmd {
	m.open = true
	m.node = node
	m.explanation = ""
	m.loading = true
	m.errorMsg = ""
	m.scrollPos = 0
	m.query = query
	m.tree = tree
	m.requestID++

	if m.client == nil || node == nil {
		m.loading = false
		return nil
	}

	reqID := m.requestID
	req := mapclient.ExplainRequest{
		ConceptName:   node.Name,
		OriginalQuery: query,
		KnowledgeTree: tree,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mapclient.DefaultTimeout)
		defer cancel()

		explanation, err := m.client.ExplainConcept(ctx, req)
		return modalExplainResultMsg{explanation: explanation, err: err, requestID: reqID}
	}
}

// Close closes the modal.
func (m *ExplanationModal) Close() {
	m.open = false
	m.node = nil
	m.explanation = ""
	m.loading = false
	m.errorMsg = ""
	m.scrollPos = 0
}

// IsOpen returns true if the modal is open.
func (m *ExplanationModal) IsOpen() bool {
	return m.open
}

// Node returns the concept the modal is showing.
func (m *ExplanationModal) Node() *layout.Node {
	return m.node
}

// Explanation returns the loaded explanation text (empty while loading).
func (m *ExplanationModal) Explanation() string {
	return m.explanation
}

// SetSize updates the modal dimensions.
func (m *ExplanationModal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the modal.
func (m *ExplanationModal) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case modalExplainResultMsg:
		// Drop stale results
		if msg.requestID != m.requestID {
			return nil
		}
		m.loading = false
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
		} else {
			m.errorMsg = ""
			m.explanation = msg.explanation
		}
		return nil

	case spinner.TickMsg:
		// No spinner in the modal; the loading line is static.
		return nil
	}

	return nil
}

// handleKey processes keyboard input for the modal.
func (m *ExplanationModal) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter", "q":
		m.Close()
		return nil

	case "up", "k":
		if m.scrollPos > 0 {
			m.scrollPos--
		}
		return nil

	case "down", "j":
		// Scroll down (capped in View based on content height)
		m.scrollPos++
		return nil

	case "home", "g":
		m.scrollPos = 0
		return nil

	case "end", "G":
		// Set to large number, will be capped in View
		m.scrollPos = 9999
		return nil

	case "r":
		if m.errorMsg != "" && m.node != nil {
			return m.Open(m.node, m.query, m.tree)
		}
		return nil
	}

	return nil
}

// View renders the modal.
func (m *ExplanationModal) View(parentWidth, parentHeight int) string {
	if !m.open || m.node == nil {
		return ""
	}

	// Calculate modal size (~90% of parent)
	modalWidth := parentWidth * 90 / 100
	modalHeight := parentHeight * 90 / 100
	if modalWidth < 40 {
		modalWidth = 40
	}
	if modalHeight < 10 {
		modalHeight = 10
	}
	innerWidth := modalWidth - 4

	var content strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Width(innerWidth)
	content.WriteString(titleStyle.Render(m.node.Name))
	content.WriteString("\n")

	meta := fmt.Sprintf("Depth: %d", m.node.Depth)
	if m.node.IsAtomic {
		meta += " | atomic"
	}
	if m.node.SelfLearningTime > 0 {
		meta += " | self: " + formatMinutes(m.node.SelfLearningTime)
	}
	if m.node.TotalLearningTime > 0 {
		meta += " | total: " + formatMinutes(m.node.TotalLearningTime)
	}
	content.WriteString(styles.Footer.Render(meta))
	content.WriteString("\n\n")

	if m.node.Description != "" {
		for _, line := range wrapText(sanitize(m.node.Description), innerWidth) {
			content.WriteString(styles.Muted.Render(line))
			content.WriteString("\n")
		}
		content.WriteString("\n")
	}

	switch {
	case m.loading:
		loadingStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Italic(true)
		content.WriteString(loadingStyle.Render("Generating explanation..."))
		content.WriteString("\n")
	case m.errorMsg != "":
		content.WriteString(styles.Error.Render("Error: " + m.errorMsg))
		content.WriteString("\n")
		content.WriteString(styles.Footer.Render("[r] retry"))
		content.WriteString("\n")
	default:
		for _, line := range wrapText(m.explanation, innerWidth) {
			content.WriteString(line)
			content.WriteString("\n")
		}
	}

	lines := strings.Split(content.String(), "\n")

	// Reserve lines for border and footer.
	visibleHeight := modalHeight - 4
	if visibleHeight < 3 {
		visibleHeight = 3
	}

	maxScroll := len(lines) - visibleHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scrollPos > maxScroll {
		m.scrollPos = maxScroll
	}

	endLine := m.scrollPos + visibleHeight
	if endLine > len(lines) {
		endLine = len(lines)
	}
	visibleContent := strings.Join(lines[m.scrollPos:endLine], "\n")

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
	scrollInfo := ""
	if maxScroll > 0 {
		scrollInfo = fmt.Sprintf(" | Line %d/%d", m.scrollPos+1, len(lines))
	}
	footer := footerStyle.Render("[Enter/Esc] close | [j/k] scroll | [c] chat" + scrollInfo)

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(1, 2).
		Width(modalWidth).
		Height(modalHeight)

	return modalStyle.Render(visibleContent + "\n\n" + footer)
}
