package bramble

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// tweenChannel drives one float64 field.
type tweenChannel struct {
	tween *gween.Tween
	field *float64
}

// TweenGroup animates one or more float64 fields of an entity together.
// Create one via the constructors and register it with Screen.AddTween,
// which advances it once per update phase, or call Update yourself.
//
// A registered group stops, without calling OnDone, as soon as its target
// entity is destroyed or no longer belongs to the screen driving it.
type TweenGroup struct {
	channels []tweenChannel
	target   *Entity
	screen   *Screen
	Done     bool

	// OnDone fires once when every channel has finished.
	OnDone func()
}

func newTweenGroup(target *Entity) *TweenGroup {
	return &TweenGroup{target: target}
}

// track adds a channel moving *field from its current value to to.
func (g *TweenGroup) track(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	g.channels = append(g.channels, tweenChannel{
		tween: gween.New(float32(*field), float32(to), duration, fn),
		field: field,
	})
}

// orphaned reports whether the target can no longer be animated.
func (g *TweenGroup) orphaned() bool {
	if g.target == nil {
		return false
	}
	if g.target.IsDestroyed() {
		return true
	}
	return g.screen != nil && g.target.Screen() != g.screen
}

// Update advances every channel by dt seconds and writes the values to the
// target fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.orphaned() {
		g.Done = true
		return
	}

	finished := 0
	for _, ch := range g.channels {
		val, done := ch.tween.Update(dt)
		*ch.field = float64(val)
		if done {
			finished++
		}
	}
	if g.target != nil {
		g.target.placementDirty = true
	}
	if finished < len(g.channels) {
		return
	}
	g.Done = true
	if g.OnDone != nil {
		g.OnDone()
	}
}

// TweenPosition moves e to (toX, toY) over duration seconds.
func TweenPosition(e *Entity, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(e)
	g.track(&e.X, toX, duration, fn)
	g.track(&e.Y, toY, duration, fn)
	return g
}

// TweenColor animates the entity's base sprite color to the target color.
// The color is copied first, so configs sharing one are not animated
// together.
func TweenColor(e *Entity, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	c := ColorWhite
	if e.sprite.Color != nil {
		c = *e.sprite.Color
	}
	e.sprite.Color = &c
	g := newTweenGroup(e)
	g.track(&c.R, to.R, duration, fn)
	g.track(&c.G, to.G, duration, fn)
	g.track(&c.B, to.B, duration, fn)
	g.track(&c.A, to.A, duration, fn)
	return g
}

// TweenValue animates an arbitrary float64 field. The group has no target
// entity and only stops when it finishes.
func TweenValue(field *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(nil)
	g.track(field, to, duration, fn)
	return g
}
