package bramble

import (
	"go.uber.org/zap"
)

// entityIDCounter is a plain counter. bramble is single-threaded.
var entityIDCounter uint32

func nextEntityID() uint32 {
	entityIDCounter++
	return entityIDCounter
}

// pendingState tracks an entity's position in a screen's deferred queues.
type pendingState uint8

const (
	pendingNone pendingState = iota
	pendingAdd
	pendingRemove
)

// Hitbox is an axis-aligned rectangle relative to an entity's position.
type Hitbox struct {
	X, Y, W, H float64
}

// HitboxOption sets one field of an entity's hitbox.
type HitboxOption func(*Hitbox)

// HitboxOffset sets the hitbox offset from the entity position.
func HitboxOffset(x, y float64) HitboxOption {
	return func(h *Hitbox) { h.X, h.Y = x, y }
}

// HitboxSize sets the hitbox width and height.
func HitboxSize(w, h float64) HitboxOption {
	return func(hb *Hitbox) { hb.W, hb.H = w, h }
}

// HitboxRect sets every hitbox field.
func HitboxRect(x, y, w, h float64) HitboxOption {
	return func(hb *Hitbox) { *hb = Hitbox{x, y, w, h} }
}

// Entity is a positioned object owned by at most one Screen. It combines a
// hitbox, a sprite or animation configuration, optional type tags used for
// collision lookup, and optional lifecycle hooks.
type Entity struct {
	// Identity
	ID   uint32
	Name string

	// Position
	X, Y           float64
	startX, startY float64

	// Collision
	Hitbox     Hitbox
	Collidable bool
	types      []string

	// Behavior
	Active      bool
	Visible     bool
	AutoVisible bool
	layer       int

	// Metadata
	UserData any

	// Per-entity hooks (nil by default; absence is a no-op)
	OnUpdate  func(e *Entity)
	OnRender  func(e *Entity)
	OnAdded   func(e *Entity)
	OnRemoved func(e *Entity)

	// Sprite & animation
	sprite         SpriteConfig
	hasSprite      bool
	anim           animState
	prim           Primitive
	placementDirty bool

	// Ownership. screen is a non-owning back-pointer; the screen's live list
	// is the authoritative owner.
	screen       *Screen
	pending      pendingState
	removingFrom *Screen
	destroyed    bool
	// added is set once OnAdded has run for the current ownership.
	added bool
}

// NewEntity creates a detached, active, visible entity at (x, y) tagged
// with the given types. The position is also recorded as the start position.
func NewEntity(name string, x, y float64, types ...string) *Entity {
	e := &Entity{
		ID:      nextEntityID(),
		Name:    name,
		X:       x,
		Y:       y,
		startX:  x,
		startY:  y,
		Active:  true,
		Visible: true,
	}
	e.types = dedupeTypes(types)
	return e
}

// StartPosition returns the position the entity was created at.
func (e *Entity) StartPosition() (x, y float64) {
	return e.startX, e.startY
}

// Screen returns the screen that owns or is about to own the entity, or nil.
func (e *Entity) Screen() *Screen {
	return e.screen
}

// IsDestroyed reports whether Destroy has been called.
func (e *Entity) IsDestroyed() bool {
	return e.destroyed
}

// Types returns the entity's type tags. The returned slice MUST NOT be mutated.
func (e *Entity) Types() []string {
	return e.types
}

// HasType reports whether the entity carries the given tag.
func (e *Entity) HasType(t string) bool {
	for _, tt := range e.types {
		if tt == t {
			return true
		}
	}
	return false
}

// SetTypes replaces the entity's type tags, re-indexing it on its screen.
func (e *Entity) SetTypes(types ...string) {
	if e.screen != nil {
		e.screen.index.remove(e)
	}
	e.types = dedupeTypes(types)
	if e.screen != nil {
		e.screen.index.add(e)
	}
}

// Layer returns the entity's render layer.
func (e *Entity) Layer() int {
	return e.layer
}

// SetLayer moves the entity to render layer i. Panics if the entity belongs
// to a screen and i is not one of its layers.
func (e *Entity) SetLayer(i int) {
	if e.layer == i {
		return
	}
	if e.screen != nil {
		e.screen.checkLayer(i)
	}
	e.layer = i
	if e.prim != nil {
		e.prim.Destroy()
		e.prim = nil
		if e.screen != nil && e.pending == pendingNone {
			e.attach(e.screen)
		}
	}
}

// UpdateHitbox merges the given fields into the hitbox and marks the entity
// collidable.
func (e *Entity) UpdateHitbox(opts ...HitboxOption) {
	for _, opt := range opts {
		opt(&e.Hitbox)
	}
	e.Collidable = true
}

// Bounds returns the hitbox rectangle in world space with the entity placed
// at (x, y).
func (e *Entity) Bounds(x, y float64) Rect {
	return Rect{X: x + e.Hitbox.X, Y: y + e.Hitbox.Y, Width: e.Hitbox.W, Height: e.Hitbox.H}
}

// CollidesWith reports whether e at its current position overlaps other.
func (e *Entity) CollidesWith(other Collider) bool {
	return CollideAt(e, other, e.X, e.Y)
}

// CollidesWithAt reports whether e placed at (x, y) overlaps other.
func (e *Entity) CollidesWithAt(other Collider, x, y float64) bool {
	return CollideAt(e, other, x, y)
}

// CollidesWithTypes returns the first collidable entity carrying any of the
// given tags that overlaps e, or nil. Detached entities never collide.
func (e *Entity) CollidesWithTypes(types ...string) *Entity {
	return e.CollidesWithTypesAt(e.X, e.Y, types...)
}

// CollidesWithTypesAt is CollidesWithTypes with e placed at (x, y).
func (e *Entity) CollidesWithTypesAt(x, y float64, types ...string) *Entity {
	if e.screen == nil {
		return nil
	}
	return e.screen.FirstCollision(e, x, y, types...)
}

// AllCollisionsWithTypes returns every collidable entity carrying any of the
// given tags that overlaps e at (x, y).
func (e *Entity) AllCollisionsWithTypes(x, y float64, types ...string) []*Entity {
	if e.screen == nil {
		return nil
	}
	return e.screen.Collisions(e, x, y, types...)
}

// Destroy detaches the entity's graphics and removes it from its screen. It
// is idempotent and terminal: a destroyed entity can never be added again.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	s := e.screen
	if s != nil {
		// Cancels a pending add, or queues removal of a live entity.
		_ = s.Remove(e)
	}
	e.destroyed = true
	e.detach()
	e.OnUpdate = nil
	e.OnRender = nil
	if s == nil {
		s = e.removingFrom
	}
	if s != nil {
		s.emit(EventDestroyed, e)
	}
	if DebugMode() {
		logger.Debug("entity destroyed", entityFields(e)...)
	}
}

// isLiveOn reports whether e is attached to s and takes part in the update
// and render passes.
func (e *Entity) isLiveOn(s *Screen) bool {
	return e.screen == s && e.pending == pendingNone && !e.destroyed
}

// attach creates the entity's primitive on its layer.
func (e *Entity) attach(s *Screen) {
	if e.prim != nil || s.backend == nil {
		return
	}
	s.checkLayer(e.layer)
	e.prim = s.backend.NewPrimitive(e.layer)
	e.prim.SetVisible(false)
	e.placementDirty = true
}

// detach releases the entity's primitive.
func (e *Entity) detach() {
	if e.prim == nil {
		return
	}
	e.prim.SetVisible(false)
	e.prim.Destroy()
	e.prim = nil
}

// drawSize returns the size used for auto-visibility culling.
func (e *Entity) drawSize() (w, h float64) {
	w, h = e.sprite.Width, e.sprite.Height
	if w == 0 && h == 0 {
		w, h = e.Hitbox.W, e.Hitbox.H
	}
	return w, h
}

// place recomputes the primitive's screen position, image and visibility.
func (e *Entity) place(s *Screen) {
	if e.prim == nil {
		return
	}
	ref, c, off := e.currentFrame()
	x := e.X + off.X
	y := e.Y + off.Y
	if s.CameraEnabled && !s.isCameraFixed(e.layer) {
		x -= s.Camera.X
		y -= s.Camera.Y
	}

	visible := e.Visible && e.hasSprite && !ref.IsZero()
	if visible && e.AutoVisible {
		w, h := e.drawSize()
		if w > 0 || h > 0 {
			visible = Rect{X: x, Y: y, Width: w, Height: h}.Intersects(s.viewRect())
		}
	}

	if e.placementDirty {
		e.prim.SetImage(ref)
		e.prim.SetColor(c)
		e.placementDirty = false
	}
	e.prim.SetPosition(x, y)
	e.prim.SetVisible(visible)
}

// dedupeTypes copies types, dropping empty and repeated tags.
func dedupeTypes(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t == "" {
			continue
		}
		dup := false
		for _, o := range out {
			if o == t {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// warn reports recoverable misuse on the package logger and returns err.
func warn(err error, e *Entity, s *Screen) error {
	fields := entityFields(e)
	if s != nil {
		fields = append(fields, zap.String("screen", s.Name))
	}
	logger.Warn(err.Error(), fields...)
	return err
}
