package layout

import "sort"

// CollisionOptions tunes the label collision resolver.
type CollisionOptions struct {
	// MaxPasses bounds the relaxation; dense clusters may keep residual
	// overlap once the bound is hit. The bound exists to cap render latency.
	MaxPasses int
	// MarginX is the horizontal clearance (px) two labels must keep before
	// they are considered overlapping.
	MarginX float64
	// MarginY is the vertical clearance (px) enforced between labels.
	MarginY float64
}

// DefaultCollisionOptions returns the resolver defaults.
func DefaultCollisionOptions() CollisionOptions {
	return CollisionOptions{
		MaxPasses: 10,
		MarginX:   8,
		MarginY:   4,
	}
}

// LabelBox is the text bounding box of one rendered label. X/Y anchor the
// box at its top-left in layout coordinates; VOffset is the only field the
// resolver mutates.
type LabelBox struct {
	X       float64
	Y       float64
	Width   float64
	Height  float64
	Depth   int
	VOffset float64
}

// Top returns the current top edge including the resolved offset.
func (b *LabelBox) Top() float64 { return b.Y + b.VOffset }

// Bottom returns the current bottom edge including the resolved offset.
func (b *LabelBox) Bottom() float64 { return b.Y + b.VOffset + b.Height }

// center returns the vertical center including the resolved offset.
func (b *LabelBox) center() float64 { return b.Y + b.VOffset + b.Height/2 }

// ResolveCollisions nudges overlapping labels apart vertically. Labels are
// sorted by horizontal position and every overlapping pair is pushed apart
// symmetrically around its shared vertical midpoint until a full pass finds
// no collisions or the pass bound is reached. Only VOffset changes; node
// positions and horizontal ordering never do. Returns the number of passes
// that performed at least one adjustment.
func ResolveCollisions(boxes []*LabelBox, opts CollisionOptions) int {
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = DefaultCollisionOptions().MaxPasses
	}
	if len(boxes) < 2 {
		return 0
	}

	order := make([]*LabelBox, len(boxes))
	copy(order, boxes)
	sort.SliceStable(order, func(i, j int) bool { return order[i].X < order[j].X })

	passes := 0
	for pass := 0; pass < opts.MaxPasses; pass++ {
		moved := false
		for i := 0; i < len(order); i++ {
			for j := i + 1; j < len(order); j++ {
				a, b := order[i], order[j]
				if !overlapsX(a, b, opts.MarginX) {
					continue
				}
				if !overlapsY(a, b, opts.MarginY) {
					continue
				}
				separate(a, b, opts.MarginY)
				moved = true
			}
		}
		if !moved {
			break
		}
		passes++
	}
	return passes
}

func overlapsX(a, b *LabelBox, margin float64) bool {
	return a.X < b.X+b.Width+margin && b.X < a.X+a.Width+margin
}

func overlapsY(a, b *LabelBox, margin float64) bool {
	return a.Top() < b.Bottom()+margin && b.Top() < a.Bottom()+margin
}

// separate pushes a and b apart symmetrically around their shared vertical
// midpoint so their centers end up half the combined height plus the margin
// apart.
func separate(a, b *LabelBox, margin float64) {
	upper, lower := a, b
	if upper.center() > lower.center() {
		upper, lower = lower, upper
	}

	mid := (upper.center() + lower.center()) / 2
	want := (upper.Height+lower.Height)/2 + margin

	upper.VOffset += (mid - want/2) - upper.center()
	lower.VOffset += (mid + want/2) - lower.center()
}
