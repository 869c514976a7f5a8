package world

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi/features/math"
)

// Camera scrolls the map so the primary entity stays centered, never past the map edges.
type Camera struct {
	// Offset is the exact scroll position: how far the map is shifted up and left.
	Offset math.Vec2

	viewW, viewH float64
	ease         time.Duration

	view   math.Vec2
	tweenX *gween.Tween
	tweenY *gween.Tween
}

func NewCamera(viewportW, viewportH int, ease time.Duration) *Camera {
	return &Camera{
		viewW: float64(viewportW),
		viewH: float64(viewportH),
		ease:  ease,
	}
}

// CenteredOffset centers a viewport on pos, clamped so it never leaves [0, mapW] x [0, mapH].
// Along an axis where the map is smaller than the viewport the offset is 0.
func CenteredOffset(pos math.Vec2, viewW, viewH, mapW, mapH float64) math.Vec2 {
	return math.Vec2{
		X: clampAxis(pos.X-viewW/2, mapW-viewW),
		Y: clampAxis(pos.Y-viewH/2, mapH-viewH),
	}
}

func clampAxis(v, max float64) float64 {
	if max <= 0 || v <= 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// CenterOn recomputes Offset for pos on a map of mapW x mapH pixels and eases
// the rendered view toward it.
func (c *Camera) CenterOn(pos math.Vec2, mapW, mapH float64) {
	target := CenteredOffset(pos, c.viewW, c.viewH, mapW, mapH)
	if target == c.Offset && c.tweenX == nil {
		return
	}
	c.Offset = target
	if c.ease <= 0 {
		c.view = target
		c.tweenX, c.tweenY = nil, nil
		return
	}
	secs := float32(c.ease.Seconds())
	c.tweenX = gween.New(float32(c.view.X), float32(target.X), secs, ease.Linear)
	c.tweenY = gween.New(float32(c.view.Y), float32(target.Y), secs, ease.Linear)
}

// Jump moves both the offset and the rendered view to pos immediately.
func (c *Camera) Jump(pos math.Vec2, mapW, mapH float64) {
	c.Offset = CenteredOffset(pos, c.viewW, c.viewH, mapW, mapH)
	c.view = c.Offset
	c.tweenX, c.tweenY = nil, nil
}

// Update advances the view easing by dt.
func (c *Camera) Update(dt time.Duration) {
	if c.tweenX == nil {
		return
	}
	x, doneX := c.tweenX.Update(float32(dt.Seconds()))
	y, doneY := c.tweenY.Update(float32(dt.Seconds()))
	c.view = math.Vec2{X: float64(x), Y: float64(y)}
	if doneX && doneY {
		c.view = c.Offset
		c.tweenX, c.tweenY = nil, nil
	}
}

// View is the eased offset the renderer should use.
func (c *Camera) View() math.Vec2 {
	return c.view
}

// Reset scrolls back to the origin.
func (c *Camera) Reset() {
	c.Offset = math.Vec2{}
	c.view = math.Vec2{}
	c.tweenX, c.tweenY = nil, nil
}
