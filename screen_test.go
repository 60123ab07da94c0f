package bramble

import (
	"errors"
	"testing"
)

// hookCounter counts lifecycle hook invocations on an entity.
type hookCounter struct {
	added, removed, updated int
}

func countedEntity(name string, types ...string) (*Entity, *hookCounter) {
	e := NewEntity(name, 0, 0, types...)
	c := &hookCounter{}
	e.OnAdded = func(*Entity) { c.added++ }
	e.OnRemoved = func(*Entity) { c.removed++ }
	e.OnUpdate = func(*Entity) { c.updated++ }
	return e, c
}

type recordingSink struct {
	events []LifecycleEvent
}

func (r *recordingSink) EmitEvent(ev LifecycleEvent) {
	r.events = append(r.events, ev)
}

func (r *recordingSink) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func TestScreenAddIsDeferred(t *testing.T) {
	s, b := newTestScreen()
	e, c := countedEntity("hero", "player")

	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}
	if e.Screen() != s {
		t.Error("Add should take ownership immediately")
	}
	if got := s.OfType("player"); len(got) != 1 || got[0] != e {
		t.Errorf("OfType(player) = %v, want [hero]", got)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d before housekeeping, want 0", s.Len())
	}
	if c.added != 0 {
		t.Error("OnAdded ran before housekeeping")
	}

	tick(s)
	if s.Len() != 1 || c.added != 1 {
		t.Errorf("after tick: Len = %d, added = %d, want 1 and 1", s.Len(), c.added)
	}
	if c.updated != 0 {
		t.Error("entity should not update in the frame it is attached")
	}
	if len(b.prims) != 1 {
		t.Errorf("primitives = %d, want 1", len(b.prims))
	}

	tick(s)
	if c.updated != 1 {
		t.Errorf("updated = %d, want 1", c.updated)
	}
}

func TestScreenRemoveIsDeferred(t *testing.T) {
	s, b := newTestScreen()
	e, c := countedEntity("hero", "player")
	_ = s.Add(e)
	tick(s)

	if err := s.Remove(e); err != nil {
		t.Fatal(err)
	}
	if e.Screen() != nil {
		t.Error("Remove should drop ownership immediately")
	}
	if len(s.OfType("player")) != 0 {
		t.Error("Remove should drop the type index entry immediately")
	}
	if s.Len() != 1 {
		t.Error("entity should stay in the live list until housekeeping")
	}

	tick(s)
	if s.Len() != 0 || c.removed != 1 {
		t.Errorf("after tick: Len = %d, removed = %d, want 0 and 1", s.Len(), c.removed)
	}
	if c.updated != 0 {
		t.Error("an entity removed before the update pass should not update")
	}
	if !b.prims[0].destroyed {
		t.Error("removed entity primitive should be destroyed")
	}
}

func TestScreenAddRemoveSameFrameCancels(t *testing.T) {
	s, b := newTestScreen()
	e, c := countedEntity("ghost", "enemy")
	_ = s.Add(e)
	if err := s.Remove(e); err != nil {
		t.Fatal(err)
	}
	tick(s)
	if s.Len() != 0 || c.added != 0 || c.removed != 0 {
		t.Errorf("Len = %d added = %d removed = %d, want all 0", s.Len(), c.added, c.removed)
	}
	if len(b.prims) != 0 {
		t.Error("cancelled add should never allocate a primitive")
	}
	if e.Screen() != nil {
		t.Error("cancelled add should leave the entity detached")
	}
	// The entity is free to be added again.
	if err := s.Add(e); err != nil {
		t.Errorf("re-add after cancel: %v", err)
	}
}

func TestScreenRemoveAddSameFrameCancels(t *testing.T) {
	s, _ := newTestScreen()
	e, c := countedEntity("hero", "player")
	_ = s.Add(e)
	tick(s)

	_ = s.Remove(e)
	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}
	tick(s)
	if s.Len() != 1 || c.added != 1 || c.removed != 0 {
		t.Errorf("Len = %d added = %d removed = %d, want 1, 1, 0", s.Len(), c.added, c.removed)
	}
	if e.Screen() != s || len(s.OfType("player")) != 1 {
		t.Error("cancelled removal should restore ownership and indexing")
	}
}

func TestScreenMisuse(t *testing.T) {
	logs := observeLogs(t)
	s, _ := newTestScreen()
	other := NewScreen("other", newFakeBackend(3), testConfig())

	live := NewEntity("live", 0, 0)
	_ = other.Add(live)

	leaving := NewEntity("leaving", 0, 0)
	_ = other.Add(leaving)
	tick(other)
	_ = other.Remove(leaving)

	pending := NewEntity("pending", 0, 0)
	_ = s.Add(pending)

	stranger := NewEntity("stranger", 0, 0)

	dead := NewEntity("dead", 0, 0)
	dead.Destroy()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"add twice", func() error { return s.Add(pending) }, ErrPendingAdd},
		{"add owned elsewhere", func() error { return s.Add(live) }, ErrAlreadyOwned},
		{"add pending removal elsewhere", func() error { return s.Add(leaving) }, ErrPendingRemoval},
		{"add destroyed", func() error { return s.Add(dead) }, ErrDestroyed},
		{"remove stranger", func() error { return s.Remove(stranger) }, ErrNotOwned},
		{"remove from wrong screen", func() error { return s.Remove(live) }, ErrNotOwned},
		{"remove twice", func() error { return other.Remove(leaving) }, ErrPendingRemoval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := logs.Len()
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if logs.Len() != before+1 {
				t.Errorf("warnings logged = %d, want 1", logs.Len()-before)
			}
		})
	}

	// None of the failed calls changed any state.
	if live.Screen() != other || leaving.Screen() != nil || stranger.Screen() != nil {
		t.Error("failed calls must be no-ops")
	}
	tick(s)
	if s.Len() != 1 {
		t.Errorf("s.Len = %d, want 1", s.Len())
	}
}

func TestScreenNilEntityPanics(t *testing.T) {
	s, _ := newTestScreen()
	mustPanic(t, "Add(nil)", func() { _ = s.Add(nil) })
	mustPanic(t, "Remove(nil)", func() { _ = s.Remove(nil) })
}

func TestScreenHookMutationsAreDeferred(t *testing.T) {
	s, _ := newTestScreen()
	child, childHooks := countedEntity("child")
	parent := NewEntity("parent", 0, 0)
	parent.OnAdded = func(*Entity) {
		if err := s.Add(child); err != nil {
			t.Errorf("add from OnAdded: %v", err)
		}
	}
	_ = s.Add(parent)

	tick(s)
	if s.Len() != 1 || childHooks.added != 0 {
		t.Fatalf("child attached in the same housekeeping pass")
	}
	tick(s)
	if s.Len() != 2 || childHooks.added != 1 {
		t.Errorf("Len = %d, child added = %d, want 2 and 1", s.Len(), childHooks.added)
	}
}

func TestScreenUpdateHookCanRemoveLaterEntity(t *testing.T) {
	s, _ := newTestScreen()
	victim, victimHooks := countedEntity("victim")
	killer := NewEntity("killer", 0, 0)
	spawned := 0
	killer.OnUpdate = func(*Entity) {
		if victim.Screen() == s {
			_ = s.Remove(victim)
			_ = s.Add(NewEntity("spawn", 0, 0))
			spawned++
		}
	}
	_ = s.Add(killer)
	_ = s.Add(victim)
	tick(s)

	tick(s)
	if victimHooks.updated != 0 {
		t.Error("entity removed earlier in the pass should not update")
	}
	if victimHooks.removed != 1 {
		t.Errorf("victim removed = %d, want 1", victimHooks.removed)
	}
	if s.Len() != 2 || spawned != 1 {
		t.Errorf("Len = %d spawned = %d, want 2 and 1", s.Len(), spawned)
	}
}

func TestScreenUpdateOrder(t *testing.T) {
	s, _ := newTestScreen()
	var order []string
	s.OnUpdate = func(*Screen) { order = append(order, "screen") }
	s.OnLateUpdate = func(*Screen) { order = append(order, "late") }
	for _, name := range []string{"a", "b"} {
		e := NewEntity(name, 0, 0)
		e.OnUpdate = func(e *Entity) { order = append(order, e.Name) }
		e.OnRender = func(e *Entity) { order = append(order, "render-"+e.Name) }
		_ = s.Add(e)
	}
	s.RegisterFrameEvent(func() { order = append(order, "timer") }, 1)
	tick(s)
	order = order[:0]
	tick(s)
	want := []string{"screen", "timer", "a", "b", "late", "render-a", "render-b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if s.Frame() != 2 {
		t.Errorf("Frame = %d, want 2", s.Frame())
	}
}

func TestScreenInactiveEntitySkipsUpdateButAnimates(t *testing.T) {
	s, _ := newTestScreen()
	e, c := countedEntity("sleeper")
	e.Active = false
	_ = s.Add(e)
	_ = e.ConfigureSprite(SpriteConfig{
		Animations: map[string]*Animation{"a": {Frames: Frames("s", 0, 1), Delay: -1}},
		Default:    "a",
	})
	tick(s)
	tick(s)
	if c.updated != 0 {
		t.Error("inactive entity should not run OnUpdate")
	}
	if _, f := e.CurrentAnimation(); f != 1 {
		t.Errorf("frame = %d, want 1", f)
	}
}

func TestScreenTypeIndexFirstHitIsDeterministic(t *testing.T) {
	s, _ := newTestScreen()
	probe := boxEntity(0, 0)
	probe.SetTypes("probe")
	first := boxEntity(1, 1)
	second := boxEntity(2, 2)
	_ = s.Add(probe)
	_ = s.Add(first)
	_ = s.Add(second)

	for i := 0; i < 3; i++ {
		if hit := probe.CollidesWithTypes("box"); hit != first {
			t.Fatalf("CollidesWithTypes = %v, want first", hit)
		}
	}
	if hit := probe.CollidesWithTypes("probe"); hit != nil {
		t.Error("an entity should never report itself")
	}
	if hit := probe.CollidesWithTypesAt(50, 50, "box"); hit != nil {
		t.Error("probe far away should not hit anything")
	}
	_ = s.Remove(first)
	if hit := probe.CollidesWithTypes("box"); hit != second {
		t.Errorf("after removal hit = %v, want second", hit)
	}
}

func TestScreenCollisionsDedupesMultiTypeEntities(t *testing.T) {
	s, _ := newTestScreen()
	probe := boxEntity(0, 0)
	both := boxEntity(1, 1)
	both.SetTypes("enemy", "solid")
	solid := boxEntity(2, 0)
	solid.SetTypes("solid")
	far := boxEntity(40, 40)
	far.SetTypes("enemy")
	for _, e := range []*Entity{probe, both, solid, far} {
		_ = s.Add(e)
	}
	hits := probe.AllCollisionsWithTypes(probe.X, probe.Y, "enemy", "solid")
	if len(hits) != 2 || hits[0] != both || hits[1] != solid {
		t.Errorf("hits = %v, want [both solid]", hits)
	}
	detached := boxEntity(0, 0)
	if detached.AllCollisionsWithTypes(0, 0, "enemy") != nil {
		t.Error("detached entity should not query any screen")
	}
}

func TestScreenSetTypesReindexes(t *testing.T) {
	s, _ := newTestScreen()
	e := NewEntity("e", 0, 0, "a")
	_ = s.Add(e)
	e.SetTypes("b", "b", "")
	if len(s.OfType("a")) != 0 || len(s.OfType("b")) != 1 {
		t.Error("SetTypes should move the entity between index buckets")
	}
	if len(e.Types()) != 1 {
		t.Errorf("Types = %v, want deduplicated [b]", e.Types())
	}
}

func TestScreenCameraOffsetAndFixedLayers(t *testing.T) {
	s, b := newTestScreen()
	world := NewEntity("world", 30, 40)
	hud := NewEntity("hud", 30, 40)
	hud.SetLayer(2)
	for _, e := range []*Entity{world, hud} {
		_ = e.ConfigureSprite(SpriteConfig{Image: spriteRef(1)})
		_ = s.Add(e)
	}
	s.Camera.X, s.Camera.Y = 10, 20
	tick(s)

	wp := b.prims[0]
	hp := b.prims[1]
	if wp.layer != 0 || hp.layer != 2 {
		t.Fatalf("layers = %d, %d, want 0 and 2", wp.layer, hp.layer)
	}
	if wp.x != 20 || wp.y != 20 {
		t.Errorf("world primitive at (%v, %v), want (20, 20)", wp.x, wp.y)
	}
	if hp.x != 30 || hp.y != 40 {
		t.Errorf("camera-fixed primitive at (%v, %v), want (30, 40)", hp.x, hp.y)
	}

	s.CameraEnabled = false
	tick(s)
	if wp.x != 30 || wp.y != 40 {
		t.Errorf("camera disabled: world primitive at (%v, %v), want (30, 40)", wp.x, wp.y)
	}

	s.CameraEnabled = true
	s.SetCameraFixedForLayer(2, false)
	tick(s)
	if hp.x != 20 || hp.y != 20 {
		t.Errorf("unfixed layer primitive at (%v, %v), want (20, 20)", hp.x, hp.y)
	}
}

func TestScreenAutoVisibility(t *testing.T) {
	s, b := newTestScreen()
	onScreen := NewEntity("on", 150, 10)
	offScreen := NewEntity("off", 200, 10)
	manual := NewEntity("manual", 200, 10)
	for _, e := range []*Entity{onScreen, offScreen, manual} {
		_ = e.ConfigureSprite(SpriteConfig{Image: spriteRef(1), Width: 8, Height: 8})
		_ = s.Add(e)
	}
	onScreen.AutoVisible = true
	offScreen.AutoVisible = true
	tick(s)

	if !b.prims[0].visible {
		t.Error("entity overlapping the view should be visible")
	}
	if b.prims[1].visible {
		t.Error("auto-visible entity outside the view should be hidden")
	}
	if !b.prims[2].visible {
		t.Error("entity without auto-visibility should stay visible")
	}

	s.Camera.X = 100
	tick(s)
	if !b.prims[1].visible {
		t.Error("scrolling the camera should reveal the entity")
	}

	manual.Visible = false
	tick(s)
	if b.prims[2].visible {
		t.Error("Visible=false should hide the primitive")
	}
}

func TestScreenEntityWithoutSpriteIsHidden(t *testing.T) {
	s, b := newTestScreen()
	_ = s.Add(NewEntity("logic", 0, 0))
	tick(s)
	if len(b.visible()) != 0 {
		t.Error("entity without a sprite should not be visible")
	}
}

func TestScreenInvalidLayerPanics(t *testing.T) {
	s, _ := newTestScreen()
	mustPanic(t, "SetCameraFixedForLayer", func() { s.SetCameraFixedForLayer(3, true) })
	mustPanic(t, "negative layer", func() { s.SetCameraFixedForLayer(-1, true) })

	e := NewEntity("e", 0, 0)
	_ = s.Add(e)
	mustPanic(t, "SetLayer", func() { e.SetLayer(7) })

	detached := NewEntity("detached", 0, 0)
	detached.SetLayer(7)
	mustPanic(t, "attach on bad layer", func() {
		_ = s.Add(detached)
		tick(s)
	})
}

func TestEntitySetLayerMovesPrimitive(t *testing.T) {
	s, b := newTestScreen()
	e := NewEntity("e", 0, 0)
	_ = e.ConfigureSprite(SpriteConfig{Image: spriteRef(1)})
	_ = s.Add(e)
	tick(s)
	e.SetLayer(1)
	tick(s)
	if len(b.prims) != 2 || !b.prims[0].destroyed || b.prims[1].layer != 1 {
		t.Errorf("SetLayer should replace the primitive on the new layer")
	}
	if !b.prims[1].visible {
		t.Error("replacement primitive should be placed and visible")
	}
}

func TestEntityDestroy(t *testing.T) {
	s, b := newTestScreen()
	sink := &recordingSink{}
	s.SetEventSink(sink)

	live, liveHooks := countedEntity("live")
	_ = live.ConfigureSprite(SpriteConfig{Image: spriteRef(1)})
	_ = s.Add(live)
	tick(s)

	pending, pendingHooks := countedEntity("pending")
	_ = s.Add(pending)

	live.Destroy()
	pending.Destroy()
	live.Destroy()

	if !live.IsDestroyed() || !pending.IsDestroyed() {
		t.Fatal("Destroy should mark entities destroyed")
	}
	if !b.prims[0].destroyed {
		t.Error("Destroy should release the primitive immediately")
	}

	tick(s)
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	if liveHooks.removed != 1 || liveHooks.updated != 0 {
		t.Errorf("live: removed = %d updated = %d, want 1 and 0", liveHooks.removed, liveHooks.updated)
	}
	if pendingHooks.added != 0 || pendingHooks.removed != 0 {
		t.Error("destroying a pending entity should run no hooks")
	}

	want := []EventType{EventAdded, EventDestroyed, EventDestroyed, EventRemoved}
	got := sink.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}

	logs := observeLogs(t)
	if err := s.Add(live); !errors.Is(err, ErrDestroyed) {
		t.Errorf("re-add destroyed: err = %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("warnings = %d, want 1", logs.Len())
	}
}

func TestScreenDestroyFromOnAddedSkipsRemovedHook(t *testing.T) {
	s, _ := newTestScreen()
	sink := &recordingSink{}
	s.SetEventSink(sink)

	victim, victimHooks := countedEntity("victim")
	killer := NewEntity("killer", 0, 0)
	killer.OnAdded = func(*Entity) { victim.Destroy() }
	_ = s.Add(killer)
	_ = s.Add(victim)

	tick(s)
	tick(s)
	if victimHooks.added != 0 || victimHooks.removed != 0 || victimHooks.updated != 0 {
		t.Errorf("victim hooks = %+v, want none", *victimHooks)
	}
	if s.Len() != 1 || s.Entities()[0] != killer {
		t.Errorf("live entities = %d, want only killer", s.Len())
	}
	for _, ev := range sink.events {
		if ev.EntityID == victim.ID && ev.Type != EventDestroyed {
			t.Errorf("victim event %v, want only %v", ev.Type, EventDestroyed)
		}
	}
}

func TestScreenEventPayload(t *testing.T) {
	s, _ := newTestScreen()
	sink := &recordingSink{}
	s.SetEventSink(sink)
	e := NewEntity("coin", 5, 6, "pickup")
	_ = s.Add(e)
	tick(s)

	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Type != EventAdded || ev.EntityID != e.ID || ev.Name != "coin" ||
		ev.Screen != "test" || ev.Frame != 1 || ev.X != 5 || ev.Y != 6 {
		t.Errorf("event = %+v", ev)
	}
	if len(ev.Types) != 1 || ev.Types[0] != "pickup" {
		t.Errorf("event types = %v", ev.Types)
	}
}

func TestNewScreenDefaults(t *testing.T) {
	s, _ := newTestScreen()
	if s.Layers() != 3 {
		t.Errorf("Layers = %d, want 3", s.Layers())
	}
	if w, h := s.Size(); w != 160 || h != 128 {
		t.Errorf("Size = %vx%v, want 160x128", w, h)
	}
	if !s.isCameraFixed(2) || s.isCameraFixed(0) {
		t.Error("camera-fixed layers not applied from config")
	}
	if !s.CameraEnabled || s.Camera == nil {
		t.Error("camera should be enabled by default")
	}

	headless := NewScreen("headless", nil, testConfig())
	e := NewEntity("e", 0, 0)
	_ = e.ConfigureSprite(SpriteConfig{Image: spriteRef(1)})
	_ = headless.Add(e)
	tick(headless)
	if headless.Len() != 1 {
		t.Error("headless screen should still attach entities")
	}
}
