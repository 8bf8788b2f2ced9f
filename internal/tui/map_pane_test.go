package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mindtrail/mindtrail/internal/config"
	"github.com/mindtrail/mindtrail/internal/layout"
	"github.com/mindtrail/mindtrail/internal/mapclient"
)

func testTree() *mapclient.ConceptNode {
	return &mapclient.ConceptNode{
		Name: "calculus",
		Children: []*mapclient.ConceptNode{
			{Name: "limits", IsAtomic: true},
			{Name: "derivatives", Children: []*mapclient.ConceptNode{
				{Name: "chain rule", IsAtomic: true},
			}},
		},
	}
}

func newTestMapPane(client mapclient.MapGenerator) MapPane {
	pane := NewMapPane(client, config.Default())
	pane.SetSize(80, 24)
	return pane
}

// loadTree drives a pane through a successful fetch cycle.
func loadTree(t *testing.T, pane MapPane, tree *mapclient.ConceptNode) MapPane {
	t.Helper()
	pane, _ = pane.Update(mapStartLoadingMsg{requestID: pane.requestID + 1, concept: "calculus"})
	pane, _ = pane.Update(mapResultMsg{tree: tree, requestID: pane.requestID, concept: "calculus"})
	if pane.errorMsg != "" {
		t.Fatalf("load failed: %s", pane.errorMsg)
	}
	return pane
}

func TestNewMapPane(t *testing.T) {
	pane := newTestMapPane(mapclient.NewMockClient())

	if pane.loading {
		t.Error("expected loading to be false initially")
	}
	if pane.errorMsg != "" {
		t.Error("expected errorMsg to be empty initially")
	}
	if !pane.lay.Empty() {
		t.Error("expected empty layout initially")
	}
	if got := pane.Transform(); got.Scale != 1 {
		t.Errorf("initial scale = %v, want identity", got.Scale)
	}
}

func TestMapPane_StartLoading(t *testing.T) {
	pane := newTestMapPane(mapclient.NewMockClient())

	pane, _ = pane.Update(mapStartLoadingMsg{requestID: 1, concept: "calculus"})

	if !pane.loading {
		t.Error("expected loading after start message")
	}
	if pane.requestID != 1 {
		t.Errorf("requestID = %d, want 1", pane.requestID)
	}
	if pane.Query() != "calculus" {
		t.Errorf("query = %q, want calculus", pane.Query())
	}
	if pane.startedAt.IsZero() {
		t.Error("expected startedAt to be set")
	}
}

func TestMapPane_ResultBuildsLayout(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())

	if pane.loading {
		t.Error("expected loading to be false after result")
	}
	if pane.lay.Empty() || len(pane.lay.Nodes) != 4 {
		t.Fatalf("expected 4 laid-out nodes, got %d", len(pane.lay.Nodes))
	}
	if len(pane.boxes) != 4 {
		t.Errorf("expected label boxes for every node, got %d", len(pane.boxes))
	}
	if got := pane.SelectedNode(); got == nil || got.Name != "calculus" {
		t.Errorf("selection should reset to the root, got %v", got)
	}
	if pane.Transform().Scale <= 0 {
		t.Error("expected a fit transform after load")
	}
}

func TestMapPane_StaleResultDropped(t *testing.T) {
	pane := newTestMapPane(mapclient.NewMockClient())

	// Two searches in flight; the pane tracks the second.
	pane, _ = pane.Update(mapStartLoadingMsg{requestID: 1, concept: "calculus"})
	pane, _ = pane.Update(mapStartLoadingMsg{requestID: 2, concept: "algebra"})

	// The first (stale) response arrives late and must be dropped whole:
	// no layout, no error, still loading.
	pane, _ = pane.Update(mapResultMsg{tree: testTree(), requestID: 1, concept: "calculus"})

	if !pane.loading {
		t.Error("stale result must not clear the loading state")
	}
	if !pane.lay.Empty() {
		t.Error("stale result must not build a layout")
	}

	// Even a stale error is dropped.
	pane, _ = pane.Update(mapResultMsg{err: errors.New("boom"), requestID: 1})
	if pane.errorMsg != "" {
		t.Error("stale error must be dropped")
	}

	// The current response lands normally.
	algebra := &mapclient.ConceptNode{Name: "algebra"}
	pane, _ = pane.Update(mapResultMsg{tree: algebra, requestID: 2, concept: "algebra"})
	if pane.loading || pane.lay.Empty() {
		t.Error("current result should build the layout")
	}
	if pane.lay.Root.Name != "algebra" {
		t.Errorf("root = %q, want algebra", pane.lay.Root.Name)
	}
}

func TestMapPane_ResultError(t *testing.T) {
	pane := newTestMapPane(mapclient.NewMockClient())
	pane, _ = pane.Update(mapStartLoadingMsg{requestID: 1, concept: "calculus"})

	pane, _ = pane.Update(mapResultMsg{err: errors.New("backend down"), requestID: 1})

	if pane.loading {
		t.Error("expected loading cleared on error")
	}
	if pane.errorMsg != "backend down" {
		t.Errorf("errorMsg = %q", pane.errorMsg)
	}
}

func TestMapPane_InvalidTreeRejected(t *testing.T) {
	pane := newTestMapPane(mapclient.NewMockClient())
	pane, _ = pane.Update(mapStartLoadingMsg{requestID: 1, concept: "calculus"})

	bad := &mapclient.ConceptNode{Name: "root", Children: []*mapclient.ConceptNode{{}}}
	pane, _ = pane.Update(mapResultMsg{tree: bad, requestID: 1})

	if pane.errorMsg == "" {
		t.Error("expected error for invalid tree")
	}
	if !pane.lay.Empty() {
		t.Error("invalid tree must not produce a partial layout")
	}
}

func TestMapPane_PanKeys(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())
	pane.SetFocused(true)

	before := pane.Transform()
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	after := pane.Transform()

	// "l" pans the scene left by one step: translation decreases.
	if after.TranslateX != before.TranslateX-40 {
		t.Errorf("TranslateX = %v, want %v", after.TranslateX, before.TranslateX-40)
	}
	if after.TranslateY != before.TranslateY {
		t.Error("horizontal pan must not change TranslateY")
	}

	// Opposite key restores exactly.
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	if pane.Transform() != before {
		t.Errorf("pan round trip = %+v, want %+v", pane.Transform(), before)
	}
}

func TestMapPane_KeysIgnoredWhenUnfocused(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())
	pane.SetFocused(false)

	before := pane.Transform()
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})

	if pane.Transform() != before {
		t.Error("unfocused pane must not react to viewport keys")
	}
}

func TestMapPane_ZoomKeys(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())
	pane.SetFocused(true)

	before := pane.Transform().Scale
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if got := pane.Transform().Scale; got <= before {
		t.Errorf("scale after zoom in = %v, want > %v", got, before)
	}

	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	got := pane.Transform().Scale
	if diff := got - before; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("zoom out should restore scale %v, got %v", before, got)
	}
}

func TestMapPane_SelectionCycles(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())
	pane.SetFocused(true)

	names := func() string { return pane.SelectedNode().Name }

	if names() != "calculus" {
		t.Fatalf("initial selection = %q", names())
	}
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if names() != "limits" {
		t.Errorf("after n: %q, want limits", names())
	}
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	// Wraps backwards to the last node.
	if names() != "chain rule" {
		t.Errorf("after p p: %q, want chain rule", names())
	}
}

func TestMapPane_EnterEmitsOpenModal(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())
	pane.SetFocused(true)

	pane, cmd := pane.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	msg, ok := cmd().(MapOpenModalMsg)
	if !ok {
		t.Fatalf("expected MapOpenModalMsg, got %T", cmd())
	}
	if msg.Node == nil || msg.Node.Name != "calculus" {
		t.Errorf("modal node = %v, want selected node", msg.Node)
	}
}

func TestMapPane_FitStartsAnimation(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())
	pane.SetFocused(true)

	pane, cmd := pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if cmd == nil {
		t.Fatal("expected animation tick command from fit")
	}
	if !pane.controller.Animating() {
		t.Error("expected fit to start an animation")
	}
}

func TestMapPane_WheelZoom(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())

	before := pane.Transform().Scale
	pane, _ = pane.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if got := pane.Transform().Scale; got <= before {
		t.Errorf("wheel up scale = %v, want > %v", got, before)
	}

	pane, _ = pane.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	got := pane.Transform().Scale
	if diff := got - before; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("wheel down should restore scale %v, got %v", before, got)
	}
}

func TestMapPane_Drag(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())
	before := pane.Transform()

	pane, _ = pane.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !pane.controller.Dragging() {
		t.Fatal("expected drag to start on left press")
	}
	pane, _ = pane.Update(tea.MouseMsg{X: 15, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	pane, _ = pane.Update(tea.MouseMsg{X: 15, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if pane.controller.Dragging() {
		t.Error("expected drag to end on release")
	}
	after := pane.Transform()
	// 5 columns of pointer travel = 5*pxPerCol logical px.
	if after.TranslateX != before.TranslateX+5*pxPerCol {
		t.Errorf("TranslateX = %v, want %v", after.TranslateX, before.TranslateX+5*pxPerCol)
	}
}

func TestMapPane_ViewRendersLabels(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())

	view := pane.View()
	for _, label := range []string{"calculus", "limits", "derivatives"} {
		if !strings.Contains(view, label) {
			t.Errorf("view missing label %q", label)
		}
	}
	if !strings.Contains(view, "4 concepts") {
		t.Error("status bar should report the node count")
	}
}

func TestMapPane_InitialFitUsesConfiguredOptions(t *testing.T) {
	pane := loadTree(t, newTestMapPane(mapclient.NewMockClient()), testTree())
	cfg := config.Default()

	vw, vh := pane.viewportPx()
	want := layout.FitTransform(layout.BoundsOf(pane.lay), vw, vh,
		cfg.Viewport.FitPadding, cfg.Viewport.MaxFitScale)
	if got := pane.Transform(); got != want {
		t.Errorf("initial transform = %+v, want configured fit %+v", got, want)
	}

	// A later explicit fit must land on the same transform, so the first
	// render and an 'f' fit agree.
	pane.SetFocused(true)
	pane.controller.Pan(1, 0)
	pane, _ = pane.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	pane, _ = pane.Update(animTickMsg(time.Now().Add(time.Second)))
	if got := pane.Transform(); got != want {
		t.Errorf("fit transform = %+v, want %+v", got, want)
	}
}

func TestMapPane_ViewWhileLoading(t *testing.T) {
	pane := newTestMapPane(mapclient.NewMockClient())
	pane, _ = pane.Update(mapStartLoadingMsg{requestID: 1, concept: "calculus"})

	view := pane.View()
	if !strings.Contains(view, "calculus") {
		t.Error("loading view should show the concept being mapped")
	}
}
