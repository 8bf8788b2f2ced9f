package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mindtrail/mindtrail/internal/config"
	"github.com/mindtrail/mindtrail/internal/layout"
	"github.com/mindtrail/mindtrail/internal/mapclient"
)

const (
	// pxPerCol / pxPerRow map logical layout pixels onto terminal cells.
	// A cell is taller than wide; the ratio keeps the tree roughly square.
	pxPerCol = 8.0
	pxPerRow = 18.0

	// mapTickInterval is the interval for updating elapsed time during a fetch.
	mapTickInterval = 100 * time.Millisecond
	// animTickInterval drives viewport transition interpolation.
	animTickInterval = 60 * time.Millisecond

	// labelGapCols is the gap between a node marker and its label.
	labelGapCols = 2
)

// MapPane is the interactive knowledge-map visualization component.
type MapPane struct {
	client     mapclient.MapGenerator
	layoutCfg  config.LayoutConfig
	collision  layout.CollisionOptions
	palette    layout.Palette
	controller *layout.Controller

	tree     *mapclient.ConceptNode
	lay      *layout.Layout
	boxes    []*layout.LabelBox // index-aligned with lay.Nodes
	query    string
	selected int

	spinner   spinner.Model
	loading   bool
	startedAt time.Time
	errorMsg  string

	width   int
	height  int
	originX int // pane origin in window cells, for mouse coordinates
	originY int
	focused bool

	requestID int // For staleness detection
}

// mapTickMsg signals a tick for updating elapsed time during a fetch.
type mapTickMsg time.Time

// animTickMsg drives an in-flight viewport animation.
type animTickMsg time.Time

// mapStartLoadingMsg signals the start of a map fetch.
type mapStartLoadingMsg struct {
	requestID  int
	concept    string
	startFetch bool // when true, start the fetch after processing this message
}

// mapResultMsg carries the result of a map fetch.
type mapResultMsg struct {
	tree      *mapclient.ConceptNode
	err       error
	concept   string
	requestID int
}

// MapOpenModalMsg is emitted when Enter is pressed to open the explanation
// modal for the selected node. The parent model handles this.
type MapOpenModalMsg struct {
	Node *layout.Node
}

// NewMapPane creates a MapPane with the given backend client and config.
func NewMapPane(client mapclient.MapGenerator, cfg *config.Config) MapPane {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Loading

	vp := cfg.Viewport
	controller := layout.NewController(layout.ViewportOptions{
		ZoomStep:          vp.ZoomStep,
		ZoomMin:           vp.ZoomMin,
		ZoomMax:           vp.ZoomMax,
		PanStep:           vp.PanStep,
		FitPadding:        vp.FitPadding,
		MaxFitScale:       vp.MaxFitScale,
		AnimationDuration: vp.AnimationDuration,
	})

	return MapPane{
		client:    client,
		layoutCfg: cfg.Layout,
		collision: layout.CollisionOptions{
			MaxPasses: cfg.Collision.MaxPasses,
			MarginX:   cfg.Collision.MarginX,
			MarginY:   cfg.Collision.MarginY,
		},
		palette:    layout.Palette(cfg.Palette),
		controller: controller,
		spinner:    sp,
	}
}

// Search returns a command that fetches the knowledge tree for a concept.
// A search issued while another is in flight supersedes it: the stale
// response is dropped by the requestID check when it eventually arrives.
func (p MapPane) Search(concept string) tea.Cmd {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil
	}

	reqID := p.requestID + 1

	// Send mapStartLoadingMsg first so requestID is recorded before any
	// result can arrive; the fetch itself starts when that message is
	// processed.
	return tea.Batch(
		p.spinner.Tick,
		func() tea.Msg {
			return mapStartLoadingMsg{requestID: reqID, concept: concept, startFetch: true}
		},
	)
}

// fetchCmd fetches the tree in the background.
func (p MapPane) fetchCmd(requestID int, concept string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mapclient.DefaultTimeout)
		defer cancel()

		tree, err := p.client.GenerateMap(ctx, concept)
		return mapResultMsg{tree: tree, err: err, concept: concept, requestID: requestID}
	}
}

// tickCmd returns a command that sends a tick message.
func (p MapPane) tickCmd() tea.Cmd {
	return tea.Tick(mapTickInterval, func(t time.Time) tea.Msg {
		return mapTickMsg(t)
	})
}

// animTickCmd returns a command driving the viewport animation.
func (p MapPane) animTickCmd() tea.Cmd {
	return tea.Tick(animTickInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages and returns the updated pane and any commands.
func (p MapPane) Update(msg tea.Msg) (MapPane, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.focused {
			return p.handleKey(msg)
		}
		return p, nil

	case tea.MouseMsg:
		return p.handleMouse(msg)

	case mapStartLoadingMsg:
		p.requestID = msg.requestID
		p.loading = true
		p.startedAt = time.Now()
		p.query = msg.concept
		if msg.startFetch {
			return p, tea.Batch(p.fetchCmd(msg.requestID, msg.concept), p.tickCmd())
		}
		return p, nil

	case mapResultMsg:
		// Drop stale results
		if msg.requestID != p.requestID {
			return p, nil
		}
		p.loading = false
		if msg.err != nil {
			p.errorMsg = msg.err.Error()
			return p, nil
		}
		p.errorMsg = ""
		if err := p.rebuild(msg.tree); err != nil {
			p.errorMsg = err.Error()
		}
		return p, nil

	case mapTickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			cmds = append(cmds, cmd, p.tickCmd())
		}
		return p, tea.Batch(cmds...)

	case animTickMsg:
		done := p.controller.Step(time.Time(msg))
		if !done {
			return p, p.animTickCmd()
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
		return p, nil
	}
}

// rebuild replaces the layout with a freshly laid-out tree. The previous
// LayoutNode tree is discarded wholesale; there is no incremental update.
func (p *MapPane) rebuild(tree *mapclient.ConceptNode) error {
	lay, err := layout.Build(tree, layout.Canvas{
		Width:   p.layoutCfg.CanvasWidth,
		Height:  p.layoutCfg.CanvasHeight,
		Padding: p.layoutCfg.Padding,
	}, layout.Options{
		SiblingGap:  p.layoutCfg.SiblingGap,
		SubtreeGap:  p.layoutCfg.SubtreeGap,
		LabelBudget: p.layoutCfg.LabelBudget,
	})
	if err != nil {
		return err
	}

	p.tree = tree
	p.lay = lay
	p.selected = 0
	p.boxes = buildLabelBoxes(lay)
	layout.ResolveCollisions(p.boxes, p.collision)

	// Initial fit is applied instantly; subsequent fits animate to the
	// same target.
	vw, vh := p.viewportPx()
	p.controller.SetTransform(p.controller.FitTarget(lay, vw, vh))
	return nil
}

// buildLabelBoxes derives the transient text boxes the collision resolver
// adjusts. Widths use the logical pixel width of the truncated label.
func buildLabelBoxes(lay *layout.Layout) []*layout.LabelBox {
	boxes := make([]*layout.LabelBox, len(lay.Nodes))
	for i, n := range lay.Nodes {
		boxes[i] = &layout.LabelBox{
			X:      n.X + labelGapCols*pxPerCol,
			Y:      n.Y - pxPerRow/2,
			Width:  float64(len([]rune(n.Label))) * pxPerCol,
			Height: pxPerRow,
			Depth:  n.Depth,
		}
	}
	return boxes
}

// handleKey processes keyboard input when focused.
func (p MapPane) handleKey(msg tea.KeyMsg) (MapPane, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		p.controller.Pan(1, 0)
		return p, nil
	case "right", "l":
		p.controller.Pan(-1, 0)
		return p, nil
	case "up", "k":
		p.controller.Pan(0, 1)
		return p, nil
	case "down", "j":
		p.controller.Pan(0, -1)
		return p, nil

	case "+", "=":
		cx, cy := p.centerPx()
		p.controller.ZoomIn(cx, cy)
		return p, nil
	case "-", "_":
		cx, cy := p.centerPx()
		p.controller.ZoomOut(cx, cy)
		return p, nil

	case "f":
		if p.lay.Empty() {
			return p, nil
		}
		vw, vh := p.viewportPx()
		p.controller.FitToCanvas(p.lay, vw, vh, time.Now())
		return p, p.animTickCmd()

	case "n":
		p.selectStep(1)
		return p, nil
	case "p":
		p.selectStep(-1)
		return p, nil

	case "enter":
		node := p.SelectedNode()
		if node == nil {
			return p, nil
		}
		return p, func() tea.Msg {
			return MapOpenModalMsg{Node: node}
		}

	case "R":
		if p.query != "" {
			return p, p.Search(p.query)
		}
		return p, nil

	case "esc":
		if p.errorMsg != "" {
			p.errorMsg = ""
			return p, nil
		}
		p.focused = false
		return p, nil
	}

	return p, nil
}

// handleMouse translates wheel and drag gestures into viewport operations.
func (p MapPane) handleMouse(msg tea.MouseMsg) (MapPane, tea.Cmd) {
	fx, fy := p.mousePx(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.controller.ZoomIn(fx, fy)
		return p, nil
	case tea.MouseButtonWheelDown:
		p.controller.ZoomOut(fx, fy)
		return p, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			p.controller.DragStart(fx, fy)
		}
	case tea.MouseActionMotion:
		if p.controller.Dragging() {
			p.controller.DragMove(fx, fy)
		}
	case tea.MouseActionRelease:
		p.controller.DragEnd()
	}

	return p, nil
}

// selectStep cycles node selection through the pre-order node list.
func (p *MapPane) selectStep(delta int) {
	if p.lay.Empty() {
		return
	}
	n := len(p.lay.Nodes)
	p.selected = ((p.selected+delta)%n + n) % n
}

// SelectedNode returns the currently selected node, or nil if none.
func (p MapPane) SelectedNode() *layout.Node {
	if p.lay.Empty() || p.selected < 0 || p.selected >= len(p.lay.Nodes) {
		return nil
	}
	return p.lay.Nodes[p.selected]
}

// Query returns the concept the current map was generated from.
func (p MapPane) Query() string { return p.query }

// Tree returns the raw concept tree backing the current map.
func (p MapPane) Tree() *mapclient.ConceptNode { return p.tree }

// IsLoading returns true if a fetch is in progress.
func (p MapPane) IsLoading() bool { return p.loading }

// Transform returns the current viewport transform (for tests and export).
func (p MapPane) Transform() layout.Transform { return p.controller.Transform() }

// SetSize updates the pane dimensions.
func (p *MapPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetOrigin records the pane's top-left position in window cells so mouse
// coordinates can be translated into pane-local focal points.
func (p *MapPane) SetOrigin(x, y int) {
	p.originX = x
	p.originY = y
}

// SetFocused updates the focus state.
func (p *MapPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsFocused returns true if the pane is focused.
func (p MapPane) IsFocused() bool { return p.focused }

// gridSize returns the drawable map area in cells.
func (p MapPane) gridSize() (int, int) {
	return safeWidth(p.width), safeHeight(p.height - 2) // status bar + tooltip line
}

// viewportPx returns the drawable area in logical pixels.
func (p MapPane) viewportPx() (float64, float64) {
	gw, gh := p.gridSize()
	return float64(gw) * pxPerCol, float64(gh) * pxPerRow
}

// centerPx returns the viewport center in logical pixels.
func (p MapPane) centerPx() (float64, float64) {
	vw, vh := p.viewportPx()
	return vw / 2, vh / 2
}

// mousePx converts window-cell mouse coordinates to pane-local logical px.
func (p MapPane) mousePx(mx, my int) (float64, float64) {
	return float64(mx-p.originX) * pxPerCol, float64(my-p.originY) * pxPerRow
}

// View renders the map pane.
func (p MapPane) View() string {
	if p.width == 0 || p.height == 0 {
		return ""
	}

	gw, gh := p.gridSize()

	var sections []string
	sections = append(sections, p.renderStatusBar(gw))
	sections = append(sections, p.renderMap(gw, gh))
	sections = append(sections, p.renderTooltip(gw))
	return strings.Join(sections, "\n")
}

// renderStatusBar renders loading/error state or map summary.
func (p MapPane) renderStatusBar(width int) string {
	if p.loading {
		elapsed := time.Since(p.startedAt).Round(100 * time.Millisecond)
		status := p.spinner.View() + " Mapping \"" + truncateString(p.query, 30) + "\"... (" + elapsed.String() + ")"
		return styles.Loading.Width(width).Render(truncateString(status, width))
	}

	if p.errorMsg != "" {
		return styles.Error.Width(width).Render("Error: " + truncateString(p.errorMsg, width-7))
	}

	if p.lay.Empty() {
		return styles.Footer.Width(width).Render("Type a concept and press enter to map it.")
	}

	info := fmt.Sprintf("%s | zoom %.2fx", pluralize(len(p.lay.Nodes), "concept", "concepts"), p.controller.Transform().Scale)
	hint := " | f:fit +/-:zoom n/p:select enter:explain"
	if len(info)+len(hint) <= width {
		info += hint
	}
	return styles.Footer.Width(width).Render(info)
}

// renderTooltip renders the selected node's details.
func (p MapPane) renderTooltip(width int) string {
	node := p.SelectedNode()
	if node == nil {
		return styles.Muted.Width(width).Render("")
	}

	parts := []string{node.Name}
	if node.IsAtomic {
		parts = append(parts, "atomic")
	}
	if node.SelfLearningTime > 0 {
		parts = append(parts, "self "+formatMinutes(node.SelfLearningTime))
	}
	if node.TotalLearningTime > 0 {
		parts = append(parts, "total "+formatMinutes(node.TotalLearningTime))
	}
	line := strings.Join(parts, " · ")
	if node.Description != "" {
		line += " — " + sanitize(node.Description)
	}
	return mapStyles.Tooltip.Width(width).Render(truncateString(line, width))
}

// renderMap projects the laid-out tree through the viewport transform onto
// a character grid.
func (p MapPane) renderMap(width, height int) string {
	grid := newCellGrid(width, height)

	if p.lay.Empty() {
		return grid.String()
	}

	t := p.controller.Transform()

	// Links first so nodes and labels draw on top.
	for _, n := range p.lay.Nodes {
		for _, child := range n.Children {
			p.drawLink(grid, t, n, child)
		}
	}

	for i, n := range p.lay.Nodes {
		p.drawNode(grid, t, i, n)
	}

	return grid.String()
}

// cellAt projects a world coordinate to a grid cell.
func cellAt(t layout.Transform, x, y float64) (int, int) {
	sx, sy := t.Apply(x, y)
	return int(sx/pxPerCol + 0.5), int(sy/pxPerRow + 0.5)
}

// drawLink draws an elbow between parent and child: across to the midpoint
// column, down/up, then across into the child.
func (p MapPane) drawLink(grid *cellGrid, t layout.Transform, parent, child *layout.Node) {
	c1, r1 := cellAt(t, parent.X, parent.Y)
	c2, r2 := cellAt(t, child.X, child.Y)
	mid := (c1 + c2) / 2

	style := &mapStyles.Link
	for c := c1 + 1; c < mid; c++ {
		grid.set(c, r1, '─', style)
	}
	minR, maxR := r1, r2
	if minR > maxR {
		minR, maxR = maxR, minR
	}
	for r := minR + 1; r < maxR; r++ {
		grid.set(mid, r, '│', style)
	}
	if r1 != r2 {
		if r2 > r1 {
			grid.set(mid, r1, '╮', style)
			grid.set(mid, r2, '╰', style)
		} else {
			grid.set(mid, r1, '╯', style)
			grid.set(mid, r2, '╭', style)
		}
	} else {
		grid.set(mid, r1, '─', style)
	}
	for c := mid + 1; c < c2; c++ {
		grid.set(c, r2, '─', style)
	}
}

// drawNode draws the node marker and its collision-resolved label.
func (p MapPane) drawNode(grid *cellGrid, t layout.Transform, idx int, n *layout.Node) {
	col, row := cellAt(t, n.X, n.Y)

	marker := '●'
	if n.IsAtomic {
		marker = '○'
	}

	color := lipgloss.NewStyle().Foreground(lipgloss.Color(p.palette.Color(n.Depth)))
	if idx == p.selected {
		color = mapStyles.NodeSelected.Foreground(lipgloss.Color(p.palette.Color(n.Depth)))
	}
	grid.set(col, row, marker, &color)

	// Label row honors the resolver's vertical offset.
	labelRow := row
	if idx < len(p.boxes) {
		_, labelRow = cellAt(t, n.X, n.Y+p.boxes[idx].VOffset)
	}
	grid.setString(col+labelGapCols, labelRow, n.Label, &color)
}

// cellGrid is a 2D character grid with per-cell styles.
type cellGrid struct {
	width  int
	height int
	cells  [][]rune
	styles [][]*lipgloss.Style
}

// newCellGrid creates a grid filled with spaces.
func newCellGrid(width, height int) *cellGrid {
	cells := make([][]rune, height)
	cellStyles := make([][]*lipgloss.Style, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]rune, width)
		cellStyles[y] = make([]*lipgloss.Style, width)
		for x := 0; x < width; x++ {
			cells[y][x] = ' '
		}
	}
	return &cellGrid{width: width, height: height, cells: cells, styles: cellStyles}
}

// set writes a single rune with a style, ignoring out-of-bounds writes.
func (g *cellGrid) set(x, y int, r rune, style *lipgloss.Style) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.cells[y][x] = r
	g.styles[y][x] = style
}

// setString writes a string starting at the given position.
func (g *cellGrid) setString(x, y int, s string, style *lipgloss.Style) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r, style)
	}
}

// String renders the grid, styling runs of identically styled cells.
func (g *cellGrid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		x := 0
		for x < g.width {
			style := g.styles[y][x]
			run := x
			for run < g.width && g.styles[y][run] == style {
				run++
			}
			segment := string(g.cells[y][x:run])
			if style != nil {
				b.WriteString(style.Render(segment))
			} else {
				b.WriteString(segment)
			}
			x = run
		}
	}
	return b.String()
}
