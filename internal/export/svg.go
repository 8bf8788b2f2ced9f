// Package export writes one-shot SVG snapshots of a laid-out knowledge map.
package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/mindtrail/mindtrail/internal/layout"
)

// Options tunes the SVG output.
type Options struct {
	Width     int            // output width in px
	Height    int            // output height in px
	Palette   layout.Palette // depth colors
	Collision layout.CollisionOptions
	Title     string // rendered in the top-left corner
}

// DefaultOptions returns export defaults sized like the reference canvas.
func DefaultOptions() Options {
	return Options{
		Width:     1200,
		Height:    800,
		Palette:   layout.DefaultPalette,
		Collision: layout.DefaultCollisionOptions(),
	}
}

const (
	nodeRadius   = 6
	labelCharW   = 7.5 // approximate glyph width at font-size 13
	labelHeight  = 16
	labelOffsetX = 10
)

// WriteSVG renders the layout as an SVG node-link diagram: elbow links,
// depth-colored node dots, and labels with collisions resolved the same way
// the interactive view resolves them.
func WriteSVG(w io.Writer, l *layout.Layout, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("export: invalid size %dx%d", opts.Width, opts.Height)
	}
	if len(opts.Palette) == 0 {
		opts.Palette = layout.DefaultPalette
	}

	fit := layout.FitTransform(layout.BoundsOf(l), float64(opts.Width), float64(opts.Height), 40, 3)

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#11111b")

	if opts.Title != "" {
		canvas.Text(16, 28, opts.Title,
			"fill:#cdd6f4;font-size:16px;font-family:system-ui,sans-serif;font-weight:600")
	}

	if l.Empty() {
		canvas.End()
		return nil
	}

	// Links first so nodes draw on top.
	for _, n := range l.Nodes {
		for _, child := range n.Children {
			drawLink(canvas, fit, n, child)
		}
	}

	boxes := labelBoxes(l, fit)
	layout.ResolveCollisions(boxes, opts.Collision)

	for i, n := range l.Nodes {
		x, y := fit.Apply(n.X, n.Y)
		color := opts.Palette.Color(n.Depth)

		style := fmt.Sprintf("fill:%s;stroke:#11111b;stroke-width:1.5", color)
		if n.IsAtomic {
			style = fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", color)
		}
		canvas.Circle(int(x), int(y), nodeRadius, style)

		box := boxes[i]
		canvas.Text(int(box.X), int(box.Top())+labelHeight-4, n.Label,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:system-ui,sans-serif", color))
	}

	canvas.End()
	return nil
}

// drawLink draws an elbow from parent to child: horizontal run to the
// midpoint, vertical, then horizontal into the child.
func drawLink(canvas *svg.SVG, t layout.Transform, parent, child *layout.Node) {
	x1, y1 := t.Apply(parent.X, parent.Y)
	x2, y2 := t.Apply(child.X, child.Y)
	midX := (x1 + x2) / 2

	xs := []int{int(x1), int(midX), int(midX), int(x2)}
	ys := []int{int(y1), int(y1), int(y2), int(y2)}
	canvas.Polyline(xs, ys, "fill:none;stroke:#45475a;stroke-width:1.5")
}

// labelBoxes builds the transient label boxes fed to the collision resolver.
// Index order matches l.Nodes.
func labelBoxes(l *layout.Layout, t layout.Transform) []*layout.LabelBox {
	boxes := make([]*layout.LabelBox, len(l.Nodes))
	for i, n := range l.Nodes {
		x, y := t.Apply(n.X, n.Y)
		boxes[i] = &layout.LabelBox{
			X:      x + labelOffsetX,
			Y:      y - labelHeight/2,
			Width:  float64(len([]rune(n.Label))) * labelCharW,
			Height: labelHeight,
			Depth:  n.Depth,
		}
	}
	return boxes
}
