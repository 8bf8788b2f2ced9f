package tui

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/mindtrail/mindtrail/internal/config"
	"github.com/mindtrail/mindtrail/internal/mapclient"
)

// TestTUILifecycleSmoke verifies the full bubbletea program lifecycle:
// start with an initial query, load the map, move focus, and quit cleanly.
// This test uses teatest to run the TUI headlessly without a real TTY.
func TestTUILifecycleSmoke(t *testing.T) {
	client := mapclient.NewMockClient()
	client.GenerateMapResponse = testTree()

	m := newModel(client, config.Default(), "calculus")

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(100, 30),
	)

	// Wait for Init and the initial map fetch to land.
	time.Sleep(100 * time.Millisecond)

	// Move focus to the map pane and pan around.
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	if fm == nil {
		t.Fatal("FinalModel returned nil")
	}

	finalModel, ok := fm.(model)
	if !ok {
		t.Fatalf("FinalModel is not of type model: %T", fm)
	}
	if finalModel.mapPane.Tree() == nil {
		t.Error("initial query should have loaded a tree")
	}
	if finalModel.mapPane.Query() != "calculus" {
		t.Errorf("query = %q, want calculus", finalModel.mapPane.Query())
	}
	if finalModel.focusedPane != FocusMap {
		t.Errorf("focus = %v, want FocusMap after tab", finalModel.focusedPane)
	}

	out := tm.FinalOutput(t, teatest.WithFinalTimeout(5*time.Second))
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(out)
	if buf.Len() == 0 {
		t.Error("expected non-empty output from TUI")
	}
}

// TestTUILifecycleTypedSearch verifies that typing a query and pressing
// enter starts a map fetch.
func TestTUILifecycleTypedSearch(t *testing.T) {
	client := mapclient.NewMockClient()
	client.GenerateMapResponse = testTree()

	m := newModel(client, config.Default(), "")

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(100, 30),
	)

	time.Sleep(50 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("calculus")})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	time.Sleep(100 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	finalModel, ok := fm.(model)
	if !ok {
		t.Fatalf("FinalModel is not of type model: %T", fm)
	}

	if finalModel.mapPane.Query() != "calculus" {
		t.Errorf("query = %q, want calculus", finalModel.mapPane.Query())
	}
	if finalModel.mapPane.Tree() == nil {
		t.Error("submitted search should have loaded a tree")
	}
	if len(client.GenerateMapCalls) != 1 || client.GenerateMapCalls[0] != "calculus" {
		t.Errorf("GenerateMapCalls = %v", client.GenerateMapCalls)
	}
}

// TestTUILifecycleCtrlCQuit verifies that ctrl+c quits from any focus state.
func TestTUILifecycleCtrlCQuit(t *testing.T) {
	m := newModel(mapclient.NewMockClient(), config.Default(), "")

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(80, 24),
	)

	time.Sleep(50 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	if fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second)); fm == nil {
		t.Fatal("FinalModel returned nil")
	}
}
