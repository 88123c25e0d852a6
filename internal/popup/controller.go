// Package popup is the state machine governing the overlay's visibility.
// The controller owns PopupState and the show/hide animation; it runs
// entirely on the UI event loop, so at most one transition is ever in
// flight and no locking is needed.
package popup

import "github.com/charmbracelet/harmonica"

type State int

const (
	Hidden State = iota
	Appearing
	Shown
	Hiding
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Appearing:
		return "appearing"
	case Shown:
		return "shown"
	case Hiding:
		return "hiding"
	}
	return "unknown"
}

const (
	// FPS is the animation frame rate; callers schedule Advance at this
	// cadence while Animating reports true.
	FPS = 60

	// HiddenOffset is how many rows below its resting place the popup sits
	// when fully hidden (the slide-up distance).
	HiddenOffset = 4

	// Spring tuning: critically damped so the popup settles without
	// overshoot, stiff enough to finish in roughly 150-200ms.
	angularFrequency = 28.0
	damping          = 1.0

	settleEpsilon = 0.005
)

// Controller drives progress 0 (hidden) to 1 (shown) with a spring.
// Opacity and vertical offset are both derived from progress.
type Controller struct {
	state          State
	pendingReverse bool

	spring   harmonica.Spring
	progress float64
	velocity float64

	// OnShown runs when a transition lands in Shown: the app layer focuses
	// the input and asks the coordinator for a fresh transcript. OnHidden
	// runs when a transition lands in Hidden.
	OnShown  func()
	OnHidden func()
}

func New() *Controller {
	return &Controller{
		state:  Hidden,
		spring: harmonica.NewSpring(harmonica.FPS(FPS), angularFrequency, damping),
	}
}

func (c *Controller) State() State {
	return c.state
}

// Visible reports whether anything of the popup should be drawn.
func (c *Controller) Visible() bool {
	return c.state != Hidden
}

// Animating reports whether a transition is in flight; the caller keeps
// scheduling frame ticks while it is.
func (c *Controller) Animating() bool {
	return c.state == Appearing || c.state == Hiding
}

// Opacity is in [0,1]; the renderer dims the popup frame below 1.
func (c *Controller) Opacity() float64 {
	return clamp(c.progress, 0, 1)
}

// Offset is how many rows below its resting position to draw the popup.
func (c *Controller) Offset() int {
	off := int(float64(HiddenOffset)*(1-clamp(c.progress, 0, 1)) + 0.5)
	if off < 0 {
		off = 0
	}
	return off
}

// Toggle requests a visibility flip. From a resting state it starts the
// transition. During a transition it coalesces: the first toggle queues
// exactly one reversal to run when the active animation completes, and
// further toggles before then are dropped.
func (c *Controller) Toggle() {
	switch c.state {
	case Hidden:
		c.state = Appearing
	case Shown:
		c.state = Hiding
	case Appearing, Hiding:
		c.pendingReverse = true
	}
}

// Escape hides the popup when it is shown. Equivalent to Toggle but a no-op
// in every other state, so a stray Esc never pops the window up.
func (c *Controller) Escape() {
	if c.state == Shown {
		c.Toggle()
	}
}

// Advance runs one animation frame. It returns true when this frame
// completed a transition (the moment OnShown/OnHidden fire). Calling it in
// a resting state is a no-op.
func (c *Controller) Advance() bool {
	if !c.Animating() {
		return false
	}

	target := 0.0
	if c.state == Appearing {
		target = 1.0
	}

	c.progress, c.velocity = c.spring.Update(c.progress, c.velocity, target)

	if !settled(c.progress, c.velocity, target) {
		return false
	}

	c.progress = target
	c.velocity = 0
	if c.state == Appearing {
		c.state = Shown
		if c.OnShown != nil {
			c.OnShown()
		}
	} else {
		c.state = Hidden
		if c.OnHidden != nil {
			c.OnHidden()
		}
	}

	if c.pendingReverse {
		c.pendingReverse = false
		c.Toggle()
	}
	return true
}

func settled(pos, vel, target float64) bool {
	d := pos - target
	if d < 0 {
		d = -d
	}
	v := vel
	if v < 0 {
		v = -v
	}
	return d < settleEpsilon && v < settleEpsilon
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
