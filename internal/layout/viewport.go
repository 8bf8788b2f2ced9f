package layout

import "time"

// Transform is the pan/zoom state applied to the rendered scene.
// screen = world*Scale + Translate.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// Identity returns the neutral transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a world coordinate to a screen coordinate.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// ViewportOptions tunes the viewport controller.
type ViewportOptions struct {
	ZoomStep          float64       // multiplicative zoom factor per step
	ZoomMin           float64       // lower scale clamp
	ZoomMax           float64       // upper scale clamp
	PanStep           float64       // keyboard pan step in logical pixels
	FitPadding        float64       // padding around the tree on fit
	MaxFitScale       float64       // hard cap on the fit scale
	AnimationDuration time.Duration // duration of animated transitions
}

// DefaultViewportOptions returns controller defaults matching the reference
// behavior.
func DefaultViewportOptions() ViewportOptions {
	return ViewportOptions{
		ZoomStep:          1.2,
		ZoomMin:           0.3,
		ZoomMax:           3.0,
		PanStep:           40,
		FitPadding:        40,
		MaxFitScale:       3.0,
		AnimationDuration: 300 * time.Millisecond,
	}
}

// animation is a timed interpolation between two transforms.
type animation struct {
	from     Transform
	to       Transform
	start    time.Time
	duration time.Duration
}

// Controller owns the current viewport transform. All mutation goes through
// its operations; the renderer only reads Transform(). Not safe for
// concurrent use: it is driven entirely from the UI event loop.
type Controller struct {
	opts ViewportOptions

	current Transform

	dragging   bool
	lastDragX  float64
	lastDragY  float64
	activeAnim *animation
}

// NewController creates a Controller at the identity transform.
func NewController(opts ViewportOptions) *Controller {
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = DefaultViewportOptions().ZoomStep
	}
	if opts.ZoomMin <= 0 {
		opts.ZoomMin = DefaultViewportOptions().ZoomMin
	}
	if opts.ZoomMax < opts.ZoomMin {
		opts.ZoomMax = DefaultViewportOptions().ZoomMax
	}
	if opts.PanStep <= 0 {
		opts.PanStep = DefaultViewportOptions().PanStep
	}
	if opts.MaxFitScale <= 0 {
		opts.MaxFitScale = DefaultViewportOptions().MaxFitScale
	}
	if opts.AnimationDuration <= 0 {
		opts.AnimationDuration = DefaultViewportOptions().AnimationDuration
	}
	return &Controller{
		opts:    opts,
		current: Identity(),
	}
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform {
	return c.current
}

// SetTransform replaces the current transform and cancels any animation.
func (c *Controller) SetTransform(t Transform) {
	c.activeAnim = nil
	c.current = t
}

// Pan translates the viewport by one keyboard step in the given direction
// (unit deltas), in logical pixels independent of the current scale. An
// equal-and-opposite pan restores the translation exactly.
func (c *Controller) Pan(dx, dy float64) {
	c.activeAnim = nil
	c.current.TranslateX += dx * c.opts.PanStep
	c.current.TranslateY += dy * c.opts.PanStep
}

// ZoomIn zooms in by one step around the focal point (screen coordinates).
func (c *Controller) ZoomIn(focalX, focalY float64) {
	c.zoomBy(c.opts.ZoomStep, focalX, focalY)
}

// ZoomOut zooms out by one step around the focal point.
func (c *Controller) ZoomOut(focalX, focalY float64) {
	c.zoomBy(1/c.opts.ZoomStep, focalX, focalY)
}

// zoomBy rescales around the focal point, keeping it visually fixed. Scale
// is clamped to [ZoomMin, ZoomMax]; translation is never clamped.
func (c *Controller) zoomBy(factor, focalX, focalY float64) {
	c.activeAnim = nil

	oldScale := c.current.Scale
	newScale := oldScale * factor
	if newScale > c.opts.ZoomMax {
		newScale = c.opts.ZoomMax
	}
	if newScale < c.opts.ZoomMin {
		newScale = c.opts.ZoomMin
	}
	if newScale == oldScale {
		return
	}

	ratio := newScale / oldScale
	c.current.TranslateX = focalX - (focalX-c.current.TranslateX)*ratio
	c.current.TranslateY = focalY - (focalY-c.current.TranslateY)*ratio
	c.current.Scale = newScale
}

// FitTarget computes the fit transform for the layout in a viewport of the
// given size, using the controller's configured padding and scale cap.
func (c *Controller) FitTarget(l *Layout, viewportW, viewportH float64) Transform {
	return FitTransform(BoundsOf(l), viewportW, viewportH, c.opts.FitPadding, c.opts.MaxFitScale)
}

// FitToCanvas starts an animated transition to the fit transform. Step drives
// the animation; callers wanting an instant fit can use SetTransform with the
// returned target.
func (c *Controller) FitToCanvas(l *Layout, viewportW, viewportH float64, now time.Time) Transform {
	target := c.FitTarget(l, viewportW, viewportH)
	c.AnimateTo(target, now)
	return target
}

// AnimateTo starts a timed transition to the target transform. A transition
// started while another is running restarts from the current interpolated
// value rather than queueing.
func (c *Controller) AnimateTo(target Transform, now time.Time) {
	c.activeAnim = &animation{
		from:     c.current,
		to:       target,
		start:    now,
		duration: c.opts.AnimationDuration,
	}
}

// Animating reports whether a transition is in progress.
func (c *Controller) Animating() bool {
	return c.activeAnim != nil
}

// Step advances the active animation to the given time. Returns true when
// the animation completed (or none was active).
func (c *Controller) Step(now time.Time) bool {
	anim := c.activeAnim
	if anim == nil {
		return true
	}

	elapsed := now.Sub(anim.start)
	if elapsed >= anim.duration {
		c.current = anim.to
		c.activeAnim = nil
		return true
	}

	p := float64(elapsed) / float64(anim.duration)
	if p < 0 {
		p = 0
	}
	ease := p * p * (3 - 2*p) // smoothstep

	c.current = Transform{
		TranslateX: lerp(anim.from.TranslateX, anim.to.TranslateX, ease),
		TranslateY: lerp(anim.from.TranslateY, anim.to.TranslateY, ease),
		Scale:      lerp(anim.from.Scale, anim.to.Scale, ease),
	}
	return false
}

// DragStart enters the dragging state at the given pointer position.
func (c *Controller) DragStart(x, y float64) {
	c.activeAnim = nil
	c.dragging = true
	c.lastDragX = x
	c.lastDragY = y
}

// DragMove applies the pointer delta directly to the translation while
// dragging. Translation is not clamped; only scale ever is.
func (c *Controller) DragMove(x, y float64) {
	if !c.dragging {
		return
	}
	c.current.TranslateX += x - c.lastDragX
	c.current.TranslateY += y - c.lastDragY
	c.lastDragX = x
	c.lastDragY = y
}

// DragEnd leaves the dragging state.
func (c *Controller) DragEnd() {
	c.dragging = false
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.dragging
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
