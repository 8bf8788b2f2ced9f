package layout

// Bounds is an axis-aligned bounding box over laid-out node coordinates.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the box.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// CenterX returns the horizontal center of the box.
func (b Bounds) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }

// CenterY returns the vertical center of the box.
func (b Bounds) CenterY() float64 { return (b.MinY + b.MaxY) / 2 }

// BoundsOf computes the bounding box over all node coordinates. It is
// recomputed on every fit request rather than cached. The zero Bounds is
// returned for an empty layout.
func BoundsOf(l *Layout) Bounds {
	if l.Empty() {
		return Bounds{}
	}

	b := Bounds{
		MinX: l.Nodes[0].X, MaxX: l.Nodes[0].X,
		MinY: l.Nodes[0].Y, MaxY: l.Nodes[0].Y,
	}
	for _, n := range l.Nodes[1:] {
		if n.X < b.MinX {
			b.MinX = n.X
		}
		if n.X > b.MaxX {
			b.MaxX = n.X
		}
		if n.Y < b.MinY {
			b.MinY = n.Y
		}
		if n.Y > b.MaxY {
			b.MaxY = n.Y
		}
	}
	return b
}

// FitTransform computes the transform that centers bounds b in a viewport of
// the given size with the given padding. Scale is the minimum of the
// width-fit, the height-fit, and maxScale. A degenerate zero-size box (a
// single node) falls back to scale 1, clamped to maxScale, with the point
// centered; there is no division by zero.
func FitTransform(b Bounds, viewportW, viewportH, padding, maxScale float64) Transform {
	if maxScale <= 0 {
		maxScale = 3
	}

	scale := maxScale
	if w := b.Width(); w > 0 {
		if s := (viewportW - 2*padding) / w; s < scale {
			scale = s
		}
	}
	if h := b.Height(); h > 0 {
		if s := (viewportH - 2*padding) / h; s < scale {
			scale = s
		}
	}
	if b.Width() == 0 && b.Height() == 0 {
		scale = 1
		if scale > maxScale {
			scale = maxScale
		}
	}
	if scale < 0 {
		scale = 0
	}

	return Transform{
		TranslateX: viewportW/2 - b.CenterX()*scale,
		TranslateY: viewportH/2 - b.CenterY()*scale,
		Scale:      scale,
	}
}

// Palette is a fixed cycle of colors indexed by tree depth.
type Palette []string

// DefaultPalette matches the depth colors of the reference rendering.
// Hex values render both in the terminal (lipgloss) and in SVG export.
var DefaultPalette = Palette{"#1f77b4", "#9467bd", "#2ca02c", "#ff7f0e", "#17becf", "#e377c2"}

// Color returns the palette entry for the given depth. Depths past the
// palette length cycle predictably instead of erroring; negative depths and
// empty palettes map to the first/default entry.
func (p Palette) Color(depth int) string {
	if len(p) == 0 {
		return DefaultPalette[0]
	}
	if depth < 0 {
		depth = 0
	}
	return p[depth%len(p)]
}

// TruncateLabel caps s to max runes, appending "..." when it was cut.
// Applied before layout so collision math sees realistic label widths.
func TruncateLabel(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
