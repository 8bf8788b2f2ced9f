// Package layout computes positioned node-link layouts for knowledge trees
// and owns the viewport math used to pan, zoom, and fit them.
package layout

import (
	"fmt"

	"github.com/mindtrail/mindtrail/internal/mapclient"
)

// Canvas is the logical drawing area the layout is scaled to, in pixels.
type Canvas struct {
	Width   float64
	Height  float64
	Padding float64
}

// Options tunes the tree layout.
type Options struct {
	// SiblingGap is the vertical gap weight between leaves sharing a parent.
	SiblingGap float64
	// SubtreeGap is the vertical gap weight between leaves of different
	// subtrees. Must be >= SiblingGap for the separation rule to hold.
	SubtreeGap float64
	// LabelBudget caps label length (runes) before layout.
	LabelBudget int
}

// DefaultOptions returns layout options matching the reference rendering.
func DefaultOptions() Options {
	return Options{
		SiblingGap:  1.0,
		SubtreeGap:  1.6,
		LabelBudget: 24,
	}
}

// Node is a positioned tree node derived from a ConceptNode.
type Node struct {
	Name              string
	Label             string // truncated Name used for rendering
	Description       string
	IsAtomic          bool
	SelfLearningTime  float64
	TotalLearningTime float64

	Depth int
	X     float64
	Y     float64

	Parent   *Node // traversal only; owned by the tree root
	Children []*Node
}

// Path returns the root-to-node name path, uniquely identifying the node
// position within the tree.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil; cur = cur.Parent {
		path = append([]string{cur.Name}, path...)
	}
	return path
}

// Layout is a fully positioned tree. Nodes is in pre-order; Nodes[0] is the
// root when the layout is non-empty.
type Layout struct {
	Root   *Node
	Nodes  []*Node
	Canvas Canvas
}

// Empty reports whether the layout has no nodes.
func (l *Layout) Empty() bool {
	return l == nil || len(l.Nodes) == 0
}

// Build converts a ConceptNode tree into a positioned Layout for the given
// canvas. A nil root yields an empty layout and no error; a malformed tree
// (any node with an empty name) fails without producing a partial layout.
func Build(root *mapclient.ConceptNode, canvas Canvas, opts Options) (*Layout, error) {
	l := &Layout{Canvas: canvas}
	if root == nil {
		return l, nil
	}

	if _, err := root.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	if opts.SiblingGap <= 0 {
		opts.SiblingGap = DefaultOptions().SiblingGap
	}
	if opts.SubtreeGap < opts.SiblingGap {
		opts.SubtreeGap = opts.SiblingGap
	}
	if opts.LabelBudget <= 0 {
		opts.LabelBudget = DefaultOptions().LabelBudget
	}

	l.Root = buildNode(root, nil, 0, opts.LabelBudget, &l.Nodes)

	maxDepth := 0
	for _, n := range l.Nodes {
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}

	// First pass: raw vertical slots. Leaves advance a cursor, the gap
	// depending on whether the previous leaf shares a parent; internal
	// nodes center over their children.
	cursor := 0.0
	var prevLeaf *Node
	assignRawY(l.Root, &cursor, &prevLeaf, opts)

	// Second pass: scale raw coordinates onto the canvas so later label
	// collision math operates on non-degenerate boxes.
	scaleToCanvas(l, maxDepth, cursor)

	return l, nil
}

func buildNode(cn *mapclient.ConceptNode, parent *Node, depth int, budget int, acc *[]*Node) *Node {
	n := &Node{
		Name:              cn.Name,
		Label:             TruncateLabel(cn.Name, budget),
		Description:       cn.Description,
		IsAtomic:          cn.IsAtomic,
		SelfLearningTime:  cn.SelfLearningTime,
		TotalLearningTime: cn.TotalLearningTime,
		Depth:             depth,
		Parent:            parent,
	}
	*acc = append(*acc, n)
	for _, child := range cn.Children {
		n.Children = append(n.Children, buildNode(child, n, depth+1, budget, acc))
	}
	return n
}

// assignRawY walks the tree leaf-first. The cursor is in gap-weight units;
// scaleToCanvas maps it to pixels afterwards.
func assignRawY(n *Node, cursor *float64, prevLeaf **Node, opts Options) {
	if len(n.Children) == 0 {
		if *prevLeaf != nil {
			if (*prevLeaf).Parent == n.Parent {
				*cursor += opts.SiblingGap
			} else {
				*cursor += opts.SubtreeGap
			}
		}
		n.Y = *cursor
		*prevLeaf = n
		return
	}

	for _, child := range n.Children {
		assignRawY(child, cursor, prevLeaf, opts)
	}
	first := n.Children[0]
	last := n.Children[len(n.Children)-1]
	n.Y = (first.Y + last.Y) / 2
}

func scaleToCanvas(l *Layout, maxDepth int, rawSpan float64) {
	innerW := l.Canvas.Width - 2*l.Canvas.Padding
	innerH := l.Canvas.Height - 2*l.Canvas.Padding
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	for _, n := range l.Nodes {
		if maxDepth == 0 {
			n.X = l.Canvas.Padding
		} else {
			n.X = l.Canvas.Padding + float64(n.Depth)/float64(maxDepth)*innerW
		}
		if rawSpan == 0 {
			n.Y = l.Canvas.Padding + innerH/2
		} else {
			n.Y = l.Canvas.Padding + n.Y/rawSpan*innerH
		}
	}
}
