package bramble

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is the world-space position of the top-left corner of the screen.
// Every layer that is not camera-fixed is drawn offset by (-X, -Y).
type Camera struct {
	X, Y float64

	// Width and Height are the size of the visible window in pixels.
	Width, Height float64

	followTarget  *Entity
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera is clamped to when
	// BoundsEnabled is true.
	Bounds Rect

	scrollTween *scrollAnim
}

// NewCamera creates a camera at the origin with the given window size.
func NewCamera(width, height float64) *Camera {
	return &Camera{Width: width, Height: height}
}

// Follow makes the camera keep target centered, shifted by the given offset.
// A lerp of 1.0 snaps immediately; lower values give smoother following.
func (c *Camera) Follow(target *Entity, offsetX, offsetY, lerp float64) {
	c.followTarget = target
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera so (x, y) becomes its top-left corner over
// duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// VisibleBounds returns the world-space rectangle that is on screen.
func (c *Camera) VisibleBounds() Rect {
	return Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx - c.X, wy - c.Y
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return sx + c.X, sy + c.Y
}

// update advances follow, scroll, and bounds clamping. Called once per
// update phase after the screen's late-update hook.
func (c *Camera) update(dt float32) {
	if c.followTarget != nil && !c.followTarget.IsDestroyed() {
		targetX := c.followTarget.X + c.followOffsetX - c.Width/2
		targetY := c.followTarget.Y + c.followOffsetY - c.Height/2
		c.X += (targetX - c.X) * c.followLerp
		c.Y += (targetY - c.Y) * c.followLerp
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts the camera position so the visible area stays
// within Bounds.
func (c *Camera) clampToBounds() {
	maxX := c.Bounds.X + c.Bounds.Width - c.Width
	maxY := c.Bounds.Y + c.Bounds.Height - c.Height

	// If bounds are smaller than the visible area, center on them.
	if maxX < c.Bounds.X {
		c.X = c.Bounds.X + (c.Bounds.Width-c.Width)/2
	} else {
		c.X = math.Max(c.Bounds.X, math.Min(c.X, maxX))
	}
	if maxY < c.Bounds.Y {
		c.Y = c.Bounds.Y + (c.Bounds.Height-c.Height)/2
	} else {
		c.Y = math.Max(c.Bounds.Y, math.Min(c.Y, maxY))
	}
}
