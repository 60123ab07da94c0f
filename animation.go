package bramble

import "github.com/pkg/errors"

// DefaultFrameDelay is the number of extra ticks each animation frame is held
// when neither the frame, its animation, nor the sprite config sets a delay.
const DefaultFrameDelay = 4

// Frame is a single entry in an animation sequence. Zero-valued fields fall
// back to the animation's defaults.
type Frame struct {
	Image ImageRef
	// Delay is the number of extra ticks this frame is held. Zero inherits;
	// a negative delay holds the frame for exactly one tick.
	Delay  int
	Color  *Color
	Offset *Vec2
}

// Animation is a named, frame-indexed visual sequence.
type Animation struct {
	Frames []Frame
	Delay  int
	Color  *Color
	Offset *Vec2

	// Done fires once each time the sequence wraps back to its first frame.
	Done func(e *Entity)
	// Change fires each time the sequence advances to a frame other than the first.
	Change func(e *Entity, frame int)
}

// Frames builds an animation frame list from sprite ids on one sheet.
func Frames(sheet string, ids ...int) []Frame {
	frames := make([]Frame, len(ids))
	for i, id := range ids {
		frames[i] = Frame{Image: ImageRef{Sheet: sheet, ID: id}}
	}
	return frames
}

// SpriteConfig binds an entity to either a static image or a named animation
// set. When Animations is non-empty, Default must name one of its entries.
type SpriteConfig struct {
	Image      *ImageRef
	Animations map[string]*Animation
	Default    string

	Delay  int
	Color  *Color
	Offset Vec2

	// Width and Height give the drawn size used for auto-visibility culling.
	// When zero, the hitbox size is used.
	Width, Height float64
}

// Playback requests an animation switch. Done and Change, when set, replace
// the animation's own callbacks for this playback.
type Playback struct {
	Name   string
	Reset  bool
	Done   func(e *Entity)
	Change func(e *Entity, frame int)
}

// animState is the per-entity animation playback state.
type animState struct {
	name      string
	anim      *Animation
	frame     int
	countdown int
	ticked    bool
	done      func(e *Entity)
	change    func(e *Entity, frame int)
}

func (c *SpriteConfig) validate() error {
	if len(c.Animations) == 0 {
		return nil
	}
	if c.Default == "" {
		return ErrNoDefaultAnimation
	}
	if _, ok := c.Animations[c.Default]; !ok {
		return errors.Wrapf(ErrNoDefaultAnimation, "default %q", c.Default)
	}
	return nil
}

// ConfigureSprite binds the entity to cfg, replacing any prior sprite
// configuration. Animated configs start their default animation.
func (e *Entity) ConfigureSprite(cfg SpriteConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	e.sprite = cfg
	e.hasSprite = true
	e.anim = animState{}
	if len(cfg.Animations) > 0 {
		e.startAnimation(cfg.Default, cfg.Animations[cfg.Default], nil, nil)
	}
	e.placementDirty = true
	return nil
}

// PlayAnimation switches to the named animation unless it is already playing.
func (e *Entity) PlayAnimation(name string) error {
	return e.PlayAnimationWith(Playback{Name: name})
}

// PlayAnimationWith switches animations according to p. The switch happens
// only if p.Name differs from the current animation or p.Reset is set; a
// switch resets the frame index and delay countdown.
func (e *Entity) PlayAnimationWith(p Playback) error {
	anim, ok := e.sprite.Animations[p.Name]
	if !ok {
		return errors.Wrapf(ErrUnknownAnimation, "%q on entity %q", p.Name, e.Name)
	}
	if e.anim.anim != nil && e.anim.name == p.Name && !p.Reset {
		return nil
	}
	e.startAnimation(p.Name, anim, p.Done, p.Change)
	return nil
}

// CurrentAnimation returns the name of the playing animation and its frame
// index. The name is empty for static sprites.
func (e *Entity) CurrentAnimation() (name string, frame int) {
	return e.anim.name, e.anim.frame
}

func (e *Entity) startAnimation(name string, anim *Animation, done func(*Entity), change func(*Entity, int)) {
	if done == nil {
		done = anim.Done
	}
	if change == nil {
		change = anim.Change
	}
	e.anim = animState{
		name:   name,
		anim:   anim,
		done:   done,
		change: change,
	}
	e.anim.countdown = e.frameDelay(0)
	e.placementDirty = true
}

// advanceAnimation runs one tick of the animation state machine. Callbacks
// run after the new state is stored, so a callback that switches animations
// wins.
func (e *Entity) advanceAnimation() {
	st := &e.anim
	if st.anim == nil || len(st.anim.Frames) == 0 {
		return
	}
	st.ticked = true
	if st.countdown > 0 {
		st.countdown--
		return
	}
	e.placementDirty = true
	next := st.frame + 1
	if next >= len(st.anim.Frames) {
		st.frame = 0
		st.countdown = e.frameDelay(0)
		if st.done != nil {
			st.done(e)
		}
		return
	}
	st.frame = next
	st.countdown = e.frameDelay(next)
	if st.change != nil {
		st.change(e, next)
	}
}

// frameDelay resolves the effective delay of frame i of the current animation.
func (e *Entity) frameDelay(i int) int {
	d := 0
	if a := e.anim.anim; a != nil && i < len(a.Frames) {
		d = a.Frames[i].Delay
		if d == 0 {
			d = a.Delay
		}
	}
	if d == 0 {
		d = e.sprite.Delay
	}
	if d == 0 {
		d = e.defaultDelay()
	}
	if d < 0 {
		return 0
	}
	return d
}

// resolveFirstDelay recomputes the countdown of an animation that has not
// ticked yet. An animation started before the entity had a screen counted
// from DefaultFrameDelay; on attach the screen's default applies instead.
func (e *Entity) resolveFirstDelay() {
	if e.anim.anim != nil && !e.anim.ticked {
		e.anim.countdown = e.frameDelay(e.anim.frame)
	}
}

func (e *Entity) defaultDelay() int {
	if e.screen != nil && e.screen.frameDelay != 0 {
		return e.screen.frameDelay
	}
	return DefaultFrameDelay
}

// currentFrame resolves the image, color and offset for the frame that is on
// screen right now. It always reads the live animation state.
func (e *Entity) currentFrame() (ref ImageRef, c Color, off Vec2) {
	c = ColorWhite
	if e.sprite.Color != nil {
		c = *e.sprite.Color
	}
	off = e.sprite.Offset
	if e.sprite.Image != nil {
		ref = *e.sprite.Image
	}

	a := e.anim.anim
	if a == nil || len(a.Frames) == 0 {
		return ref, c, off
	}
	if a.Color != nil {
		c = *a.Color
	}
	if a.Offset != nil {
		off = *a.Offset
	}
	f := a.Frames[e.anim.frame]
	ref = f.Image
	if f.Color != nil {
		c = *f.Color
	}
	if f.Offset != nil {
		off = *f.Offset
	}
	return ref, c, off
}
