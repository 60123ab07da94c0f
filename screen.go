package bramble

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Screen is a scene container. It owns the live entity set, the deferred
// add/remove queues, a type index for collision queries, the render layers,
// the camera, and the frame-timer scheduler for one logical scene.
//
// Mutations requested mid-frame through Add and Remove are applied once,
// between the update and render phases, so hooks may spawn and kill
// entities freely while the live list is being iterated.
type Screen struct {
	Name string

	// Camera is the top-left offset applied to every layer that is not
	// camera-fixed, while CameraEnabled is true.
	Camera        *Camera
	CameraEnabled bool

	// Per-screen hooks (nil by default)
	OnBegin      func(s *Screen)
	OnEnd        func(s *Screen)
	OnUpdate     func(s *Screen)
	OnLateUpdate func(s *Screen)

	backend     Backend
	cameraFixed []bool
	width       float64
	height      float64
	frameDelay  int

	entities      []*Entity
	pendingAdds   []*Entity
	pendingRemove []*Entity
	addBuf        []*Entity
	removeBuf     []*Entity
	index         typeIndex

	timers   frameTimers
	tweens   []*TweenGroup
	tilemaps []*Tilemap

	frame  uint64
	engine *Engine
	sink   EventSink
}

// NewScreen creates a screen whose entities draw through backend. The layer
// count, dimensions, camera-fixed layers and default frame delay come from
// cfg. A nil backend is allowed; entities then update but never draw.
func NewScreen(name string, backend Backend, cfg Config) *Screen {
	layers := cfg.Layers
	if layers <= 0 {
		layers = 1
	}
	s := &Screen{
		Name:          name,
		Camera:        NewCamera(float64(cfg.Width), float64(cfg.Height)),
		CameraEnabled: true,
		backend:       backend,
		cameraFixed:   make([]bool, layers),
		width:         float64(cfg.Width),
		height:        float64(cfg.Height),
		frameDelay:    cfg.FrameDelay,
		index:         newTypeIndex(),
		timers:        newFrameTimers(),
	}
	for _, l := range cfg.CameraFixedLayers {
		s.SetCameraFixedForLayer(l, true)
	}
	return s
}

// Layers returns the number of render layers.
func (s *Screen) Layers() int {
	return len(s.cameraFixed)
}

// Size returns the screen dimensions in pixels.
func (s *Screen) Size() (w, h float64) {
	return s.width, s.height
}

// Frame returns the number of update phases this screen has run.
func (s *Screen) Frame() uint64 {
	return s.frame
}

// Engine returns the engine running this screen, or nil.
func (s *Screen) Engine() *Engine {
	return s.engine
}

// Backend returns the rendering backend.
func (s *Screen) Backend() Backend {
	return s.backend
}

// SetEventSink sets the optional ECS bridge.
func (s *Screen) SetEventSink(sink EventSink) {
	s.sink = sink
}

// SetCameraFixedForLayer exempts layer from the camera offset (HUD, UI).
// Panics if layer is out of range.
func (s *Screen) SetCameraFixedForLayer(layer int, fixed bool) {
	s.checkLayer(layer)
	s.cameraFixed[layer] = fixed
	for _, e := range s.entities {
		if e.layer == layer {
			e.placementDirty = true
		}
	}
}

func (s *Screen) isCameraFixed(layer int) bool {
	return layer >= 0 && layer < len(s.cameraFixed) && s.cameraFixed[layer]
}

// checkLayer panics if layer is not a valid render layer of s.
func (s *Screen) checkLayer(layer int) {
	if layer < 0 || layer >= len(s.cameraFixed) {
		panic(fmt.Sprintf("%v: %d (screen %q has %d layers)", ErrInvalidLayer, layer, s.Name, len(s.cameraFixed)))
	}
}

// viewRect is the camera-space rectangle that is on screen.
func (s *Screen) viewRect() Rect {
	return Rect{Width: s.width, Height: s.height}
}

// Entities returns the live entity list in attachment order. The returned
// slice MUST NOT be mutated.
func (s *Screen) Entities() []*Entity {
	return s.entities
}

// Len returns the number of live entities.
func (s *Screen) Len() int {
	return len(s.entities)
}

// --- Deferred mutation ---

// Add schedules e for attachment at the next housekeeping pass. The entity is
// owned by s and indexed by type immediately. If e is pending removal from s,
// the removal is cancelled instead. Misuse is logged and returned; the call
// is then a no-op.
func (s *Screen) Add(e *Entity) error {
	if e == nil {
		panic("bramble: cannot add nil entity")
	}
	switch {
	case e.destroyed:
		return warn(ErrDestroyed, e, s)
	case e.pending == pendingRemove:
		if e.removingFrom != s {
			return warn(ErrPendingRemoval, e, s)
		}
		s.pendingRemove = removeEntity(s.pendingRemove, e)
		e.pending = pendingNone
		e.removingFrom = nil
		e.screen = s
		s.index.add(e)
		return nil
	case e.pending == pendingAdd:
		return warn(ErrPendingAdd, e, s)
	case e.screen != nil:
		return warn(ErrAlreadyOwned, e, s)
	}
	e.screen = s
	e.pending = pendingAdd
	s.pendingAdds = append(s.pendingAdds, e)
	s.index.add(e)
	return nil
}

// Remove schedules e for detachment at the next housekeeping pass. Ownership
// and type-index membership are dropped immediately. If e is pending
// addition, the addition is cancelled instead.
func (s *Screen) Remove(e *Entity) error {
	if e == nil {
		panic("bramble: cannot remove nil entity")
	}
	if e.screen != s {
		if e.pending == pendingRemove && e.removingFrom == s {
			return warn(ErrPendingRemoval, e, s)
		}
		return warn(ErrNotOwned, e, s)
	}
	s.index.remove(e)
	e.screen = nil
	if e.pending == pendingAdd {
		s.pendingAdds = removeEntity(s.pendingAdds, e)
		e.pending = pendingNone
		return nil
	}
	e.pending = pendingRemove
	e.removingFrom = s
	s.pendingRemove = append(s.pendingRemove, e)
	return nil
}

// housekeep applies the queued adds and removes. The queues are swapped out
// first, so hooks that queue further mutations are deferred to the next
// frame. Ownership flags are settled for the whole batch before any hook
// runs.
func (s *Screen) housekeep() {
	adds := s.pendingAdds
	s.pendingAdds = s.addBuf[:0]
	removes := s.pendingRemove
	s.pendingRemove = s.removeBuf[:0]

	for _, e := range adds {
		e.pending = pendingNone
		s.entities = append(s.entities, e)
	}
	for _, e := range removes {
		e.pending = pendingNone
		e.removingFrom = nil
	}
	if len(removes) > 0 {
		s.entities = filterEntities(s.entities, removes)
	}

	for _, e := range adds {
		if e.destroyed {
			continue
		}
		e.attach(s)
		e.resolveFirstDelay()
		e.added = true
		if e.OnAdded != nil {
			e.OnAdded(e)
		}
		s.emit(EventAdded, e)
	}
	for _, e := range removes {
		e.detach()
		// Entities destroyed before their OnAdded ran get no OnRemoved.
		if !e.added {
			continue
		}
		e.added = false
		if e.OnRemoved != nil {
			e.OnRemoved(e)
		}
		s.emit(EventRemoved, e)
	}

	clear(adds)
	clear(removes)
	s.addBuf = adds[:0]
	s.removeBuf = removes[:0]
}

// --- Frame events ---

// RegisterFrameEvent schedules fn to run once, on the first update tick after
// limit ticks have elapsed.
func (s *Screen) RegisterFrameEvent(fn func(), limit int) FrameEventID {
	return s.timers.register(fn, limit, false)
}

// RegisterFrameEventInterval schedules fn to run every limit+1 update ticks
// until cancelled.
func (s *Screen) RegisterFrameEventInterval(fn func(), limit int) FrameEventID {
	return s.timers.register(fn, limit, true)
}

// CancelFrameEvent prevents the timer from firing again. It is swept at the
// end of the frame. Reports whether an unresolved timer was found.
func (s *Screen) CancelFrameEvent(id FrameEventID) bool {
	return s.timers.cancel(id)
}

// PendingFrameEvents returns the number of timers still in the timer list.
func (s *Screen) PendingFrameEvents() int {
	return len(s.timers.events)
}

// --- Tweens ---

// AddTween registers a tween group to be advanced once per update phase.
// Finished groups are dropped automatically, and so are groups whose target
// entity is destroyed or leaves the screen.
func (s *Screen) AddTween(g *TweenGroup) {
	g.screen = s
	s.tweens = append(s.tweens, g)
}

func (s *Screen) updateTweens(dt float32) {
	n := len(s.tweens)
	for i := 0; i < n; i++ {
		s.tweens[i].Update(dt)
	}
	kept := s.tweens[:0]
	for _, g := range s.tweens {
		if !g.Done {
			kept = append(kept, g)
		}
	}
	clear(s.tweens[len(kept):])
	s.tweens = kept
}

// --- Tilemaps ---

// AddTilemap attaches t; it is rendered every render phase after entities
// are placed.
func (s *Screen) AddTilemap(t *Tilemap) {
	if t.screen == s {
		return
	}
	if t.screen != nil {
		t.screen.RemoveTilemap(t)
	}
	s.checkLayer(t.layer)
	t.screen = s
	s.tilemaps = append(s.tilemaps, t)
}

// RemoveTilemap detaches t and releases its primitives.
func (s *Screen) RemoveTilemap(t *Tilemap) {
	for i, tm := range s.tilemaps {
		if tm == t {
			copy(s.tilemaps[i:], s.tilemaps[i+1:])
			s.tilemaps[len(s.tilemaps)-1] = nil
			s.tilemaps = s.tilemaps[:len(s.tilemaps)-1]
			t.releasePool()
			t.screen = nil
			return
		}
	}
}

// Tilemaps returns the attached tilemaps. The returned slice MUST NOT be mutated.
func (s *Screen) Tilemaps() []*Tilemap {
	return s.tilemaps
}

// --- Collision queries ---

// FirstCollision returns the first collidable entity carrying any of types
// that overlaps e placed at (x, y), or nil.
func (s *Screen) FirstCollision(e *Entity, x, y float64, types ...string) *Entity {
	var hit *Entity
	s.eachCollision(e, x, y, types, func(o *Entity) bool {
		hit = o
		return false
	})
	return hit
}

// Collisions returns every collidable entity carrying any of types that
// overlaps e placed at (x, y). An entity tagged with several requested types
// is reported once.
func (s *Screen) Collisions(e *Entity, x, y float64, types ...string) []*Entity {
	var hits []*Entity
	s.eachCollision(e, x, y, types, func(o *Entity) bool {
		for _, h := range hits {
			if h == o {
				return true
			}
		}
		hits = append(hits, o)
		return true
	})
	return hits
}

func (s *Screen) eachCollision(e *Entity, x, y float64, types []string, fn func(*Entity) bool) {
	if !e.Collidable {
		return
	}
	box := e.Bounds(x, y)
	for _, t := range types {
		for _, o := range s.index.get(t) {
			if o == e || !o.Collidable || o.destroyed {
				continue
			}
			if Overlaps(box, o.Bounds(o.X, o.Y)) {
				if !fn(o) {
					return
				}
			}
		}
	}
}

// --- Frame phases ---

// Update runs one update phase: the screen hook, timers and tweens, every
// live entity's animation and update hook, the late-update hook and camera,
// then housekeeping of queued adds and removes.
func (s *Screen) Update() {
	var t0 time.Time
	if DebugMode() {
		t0 = time.Now()
	}

	s.frame++
	if s.OnUpdate != nil {
		s.OnUpdate(s)
	}

	s.timers.advance()
	s.updateTweens(tickSeconds())

	for _, e := range s.entities {
		if !e.isLiveOn(s) {
			continue
		}
		e.advanceAnimation()
		if e.Active && e.OnUpdate != nil && e.isLiveOn(s) {
			e.OnUpdate(e)
		}
	}

	if s.OnLateUpdate != nil {
		s.OnLateUpdate(s)
	}
	s.Camera.update(tickSeconds())

	s.housekeep()
	s.timers.sweep()

	if DebugMode() {
		logger.Debug("update",
			zap.String("screen", s.Name),
			zap.Uint64("frame", s.frame),
			zap.Int("entities", len(s.entities)),
			zap.Int("timers", len(s.timers.events)),
			zap.Duration("took", time.Since(t0)))
	}
}

// Render runs the placement phase: every live entity's primitive is moved to
// its camera-relative position with its current animation frame, then its
// render hook runs; tilemaps are drawn last.
func (s *Screen) Render() {
	var t0 time.Time
	if DebugMode() {
		t0 = time.Now()
	}

	for _, e := range s.entities {
		if !e.isLiveOn(s) {
			continue
		}
		e.place(s)
		if e.OnRender != nil {
			e.OnRender(e)
		}
	}
	drawn := 0
	for _, t := range s.tilemaps {
		t.render(s)
		drawn += t.Claimed()
	}

	if DebugMode() {
		logger.Debug("render",
			zap.String("screen", s.Name),
			zap.Uint64("frame", s.frame),
			zap.Int("tiles", drawn),
			zap.Duration("took", time.Since(t0)))
	}
}

// begin and end are invoked by the engine on screen transitions.
func (s *Screen) begin(e *Engine) {
	s.engine = e
	if s.OnBegin != nil {
		s.OnBegin(s)
	}
	s.emitScreen(EventScreenBegin)
}

func (s *Screen) end() {
	if s.OnEnd != nil {
		s.OnEnd(s)
	}
	s.emitScreen(EventScreenEnd)
	s.engine = nil
}

func (s *Screen) emit(t EventType, e *Entity) {
	if s.sink == nil {
		return
	}
	s.sink.EmitEvent(LifecycleEvent{
		Type:     t,
		EntityID: e.ID,
		Name:     e.Name,
		Types:    e.types,
		Screen:   s.Name,
		Frame:    s.frame,
		X:        e.X,
		Y:        e.Y,
	})
}

func (s *Screen) emitScreen(t EventType) {
	if s.sink == nil {
		return
	}
	s.sink.EmitEvent(LifecycleEvent{Type: t, Screen: s.Name, Frame: s.frame})
}

// removeEntity deletes e from list, preserving order.
func removeEntity(list []*Entity, e *Entity) []*Entity {
	for i, o := range list {
		if o == e {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}

// filterEntities drops every entity in drop from list, preserving order.
func filterEntities(list, drop []*Entity) []*Entity {
	kept := list[:0]
	for _, e := range list {
		removed := false
		for _, d := range drop {
			if d == e {
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, e)
		}
	}
	clear(list[len(kept):])
	return kept
}
