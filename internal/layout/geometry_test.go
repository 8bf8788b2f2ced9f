package layout

import (
	"math"
	"testing"
)

func TestBoundsOf(t *testing.T) {
	root := branch("root", leaf("a"), leaf("b"))
	l, err := Build(root, testCanvas(), DefaultOptions())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	b := BoundsOf(l)
	if b.MinX != 60 || b.MaxX != 1140 {
		t.Errorf("X bounds = [%v, %v], want [60, 1140]", b.MinX, b.MaxX)
	}
	if b.MinY >= b.MaxY {
		t.Errorf("Y bounds degenerate: [%v, %v]", b.MinY, b.MaxY)
	}
}

func TestBoundsOfEmpty(t *testing.T) {
	if b := BoundsOf(&Layout{}); b != (Bounds{}) {
		t.Errorf("empty layout bounds = %+v, want zero", b)
	}
}

func TestFitTransformScaleDown(t *testing.T) {
	b := Bounds{MinX: 0, MinY: 0, MaxX: 2000, MaxY: 1000}
	tr := FitTransform(b, 1000, 800, 40, 3)

	wantScale := math.Min((1000-80)/2000.0, (800-80)/1000.0)
	if math.Abs(tr.Scale-wantScale) > 1e-9 {
		t.Errorf("Scale = %v, want %v", tr.Scale, wantScale)
	}

	// The box center lands on the viewport center.
	cx, cy := tr.Apply(b.CenterX(), b.CenterY())
	if math.Abs(cx-500) > 1e-9 || math.Abs(cy-400) > 1e-9 {
		t.Errorf("center maps to (%v, %v), want (500, 400)", cx, cy)
	}
}

func TestFitTransformScaleCap(t *testing.T) {
	// A tiny tree must not be blown up past the cap.
	b := Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	tr := FitTransform(b, 1000, 800, 40, 3)
	if tr.Scale != 3 {
		t.Errorf("Scale = %v, want capped at 3", tr.Scale)
	}
}

func TestFitTransformSinglePoint(t *testing.T) {
	b := Bounds{MinX: 100, MinY: 200, MaxX: 100, MaxY: 200}
	tr := FitTransform(b, 1000, 800, 40, 3)

	if tr.Scale != 1 {
		t.Errorf("Scale = %v, want 1 for degenerate box", tr.Scale)
	}
	x, y := tr.Apply(100, 200)
	if math.Abs(x-500) > 1e-9 || math.Abs(y-400) > 1e-9 {
		t.Errorf("point maps to (%v, %v), want viewport center", x, y)
	}
	if math.IsNaN(tr.TranslateX) || math.IsNaN(tr.TranslateY) || math.IsNaN(tr.Scale) {
		t.Error("transform contains NaN")
	}
}

func TestFitTransformNarrowViewport(t *testing.T) {
	// Viewport smaller than twice the padding: scale clamps at 0 instead of
	// going negative.
	b := Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	tr := FitTransform(b, 50, 50, 40, 3)
	if tr.Scale < 0 {
		t.Errorf("Scale = %v, must not be negative", tr.Scale)
	}
}

func TestPaletteColorCycles(t *testing.T) {
	p := Palette{"#111111", "#222222", "#333333"}

	tests := []struct {
		depth int
		want  string
	}{
		{0, "#111111"},
		{1, "#222222"},
		{2, "#333333"},
		{3, "#111111"},
		{7, "#222222"},
		{-1, "#111111"},
	}
	for _, tt := range tests {
		if got := p.Color(tt.depth); got != tt.want {
			t.Errorf("Color(%d) = %q, want %q", tt.depth, got, tt.want)
		}
	}

	if got := Palette(nil).Color(5); got != DefaultPalette[0] {
		t.Errorf("empty palette Color = %q, want default %q", got, DefaultPalette[0])
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 24, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a very long concept name", 10, "a very ..."},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 8, "héllo..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := TruncateLabel(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateLabel(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
