package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mindtrail/mindtrail/internal/config"
	"github.com/mindtrail/mindtrail/internal/mapclient"
)

func newTestModel(client mapclient.Client) model {
	m := newModel(client, config.Default(), "")
	m.width = 100
	m.height = 30
	m.updatePaneSizes()
	return m
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelInitialFocus(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())

	if m.focusedPane != FocusSearch {
		t.Errorf("initial focus = %v, want FocusSearch", m.focusedPane)
	}
	if m.mapPane.IsFocused() {
		t.Error("map pane should start unfocused")
	}
}

func TestModelTabCyclesFocus(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	if m.focusedPane != FocusMap {
		t.Fatalf("after tab: focus = %v, want FocusMap", m.focusedPane)
	}
	if !m.mapPane.IsFocused() {
		t.Error("map pane should be focused")
	}

	// Chat is closed, so tab skips it and returns to search.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	if m.focusedPane != FocusSearch {
		t.Errorf("after second tab: focus = %v, want FocusSearch", m.focusedPane)
	}
}

func TestModelSearchSubmit(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())
	m.searchInput.SetValue("calculus")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)

	if cmd == nil {
		t.Fatal("expected a search command")
	}
	if m.focusedPane != FocusMap {
		t.Errorf("focus = %v, want FocusMap after submitting", m.focusedPane)
	}
}

func TestModelSearchSubmitEmpty(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)

	if cmd != nil {
		t.Error("empty search must not start a fetch")
	}
	if m.focusedPane != FocusSearch {
		t.Error("focus should stay on search")
	}
}

func TestModelTypingSuppressesViewportKeys(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())
	m.mapPane = loadTree(t, m.mapPane, testTree())
	before := m.mapPane.Transform()

	// Focus is on search: viewport shortcuts must go into the text input,
	// not the viewport.
	for _, r := range []rune{'+', '-', 'h', 'l', 'f'} {
		next, _ := m.Update(keyRunes(r))
		m = next.(model)
	}

	if m.mapPane.Transform() != before {
		t.Error("typing in the search box must not move the viewport")
	}
	if m.searchInput.Value() != "+-hlf" {
		t.Errorf("search input = %q, want the typed runes", m.searchInput.Value())
	}
}

func TestModelMapKeysReachPaneWhenFocused(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())
	m.mapPane = loadTree(t, m.mapPane, testTree())
	m.setFocus(FocusMap)
	before := m.mapPane.Transform()

	next, _ := m.Update(keyRunes('l'))
	m = next.(model)

	if m.mapPane.Transform() == before {
		t.Error("pan key should reach the focused map pane")
	}
}

func TestModelOpenModalMessage(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())
	m.mapPane = loadTree(t, m.mapPane, testTree())

	node := m.mapPane.SelectedNode()
	next, cmd := m.Update(MapOpenModalMsg{Node: node})
	m = next.(model)

	if !m.modal.IsOpen() {
		t.Fatal("expected modal to open")
	}
	if cmd == nil {
		t.Error("expected an explanation fetch command")
	}
}

func TestModelModalSwallowsKeys(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())
	m.mapPane = loadTree(t, m.mapPane, testTree())
	m.setFocus(FocusMap)

	next, _ := m.Update(MapOpenModalMsg{Node: m.mapPane.SelectedNode()})
	m = next.(model)

	before := m.mapPane.Transform()
	next, _ = m.Update(keyRunes('l'))
	m = next.(model)
	if m.mapPane.Transform() != before {
		t.Error("viewport keys must not leak through an open modal")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	if m.modal.IsOpen() {
		t.Error("esc should close the modal")
	}
}

func TestModelExplanationFeedsChat(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())
	m.mapPane = loadTree(t, m.mapPane, testTree())

	next, _ := m.Update(MapOpenModalMsg{Node: m.mapPane.SelectedNode()})
	m = next.(model)

	next, _ = m.Update(modalExplainResultMsg{
		explanation: "a branch of mathematics",
		requestID:   m.modal.requestID,
	})
	m = next.(model)

	if m.chatPane.conceptName != "calculus" {
		t.Errorf("chat concept = %q, want calculus", m.chatPane.conceptName)
	}
	if m.chatPane.explanation != "a branch of mathematics" {
		t.Errorf("chat explanation = %q", m.chatPane.explanation)
	}
	if m.chatPane.originalQuery != m.mapPane.Query() {
		t.Errorf("chat query = %q, want the map's query", m.chatPane.originalQuery)
	}
	if m.chatPane.tree != m.mapPane.Tree() {
		t.Error("chat should carry the map's knowledge tree")
	}
}

func TestModelChatToggle(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())
	m.setFocus(FocusMap)

	next, _ := m.Update(keyRunes('c'))
	m = next.(model)
	if !m.chatOpen {
		t.Fatal("expected chat to open")
	}
	if m.focusedPane != FocusChat {
		t.Errorf("focus = %v, want FocusChat", m.focusedPane)
	}

	m.setFocus(FocusMap)
	next, _ = m.Update(keyRunes('c'))
	m = next.(model)
	if m.chatOpen {
		t.Error("expected chat to close on second toggle")
	}
}

func TestModelChatDisabledByConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.Enabled = false
	m := newModel(mapclient.NewMockClient(), cfg, "")
	m.width = 100
	m.height = 30
	m.setFocus(FocusMap)

	next, _ := m.Update(keyRunes('c'))
	m = next.(model)
	if m.chatOpen {
		t.Error("chat must stay closed when disabled")
	}
}

func TestModelQuitFromMap(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())
	m.setFocus(FocusMap)

	_, cmd := m.Update(keyRunes('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("expected tea.Quit, got %T", msg)
	}
}

func TestModelQTypesIntoSearch(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())

	next, cmd := m.Update(keyRunes('q'))
	m = next.(model)
	if cmd != nil {
		if msg := cmd(); msg == tea.Quit() {
			t.Fatal("q while typing must not quit")
		}
	}
	if m.searchInput.Value() != "q" {
		t.Errorf("search input = %q, want q", m.searchInput.Value())
	}
}

func TestModelWindowSize(t *testing.T) {
	m := newTestModel(mapclient.NewMockClient())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
	if m.mapPane.width != 120 {
		t.Errorf("map pane width = %d, want full width with chat closed", m.mapPane.width)
	}
}
