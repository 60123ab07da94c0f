package ecs

import (
	"testing"

	"github.com/phanxgames/bramble"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// nopBackend draws nothing.
type nopBackend struct{}

func (nopBackend) NewPrimitive(int) bramble.Primitive { return &nopPrimitive{} }
func (nopBackend) Layers() int                        { return 1 }

type nopPrimitive struct{ visible bool }

func (p *nopPrimitive) SetImage(bramble.ImageRef)  {}
func (p *nopPrimitive) SetPosition(x, y float64)   {}
func (p *nopPrimitive) SetColor(bramble.Color)     {}
func (p *nopPrimitive) SetVisible(v bool)          { p.visible = v }
func (p *nopPrimitive) Visible() bool              { return p.visible }
func (p *nopPrimitive) Destroy()                   {}

func newScreen() *bramble.Screen {
	cfg := bramble.DefaultConfig()
	cfg.Layers = 1
	return bramble.NewScreen("level", nopBackend{}, cfg)
}

func tick(s *bramble.Screen) {
	s.Update()
	s.Render()
}

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []bramble.LifecycleEvent
	LifecycleEventType.Subscribe(world, func(w donburi.World, e bramble.LifecycleEvent) {
		received = append(received, e)
	})

	sink.EmitEvent(bramble.LifecycleEvent{
		Type:     bramble.EventAdded,
		EntityID: 42,
		Name:     "hero",
		X:        100,
		Y:        200,
	})
	sink.EmitEvent(bramble.LifecycleEvent{
		Type:   bramble.EventScreenBegin,
		Screen: "title",
	})

	// Events are queued until processed.
	LifecycleEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != bramble.EventAdded || e0.EntityID != 42 || e0.Name != "hero" {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.X != 100 || e0.Y != 200 {
		t.Errorf("event 0 position: (%v,%v)", e0.X, e0.Y)
	}
	if e1 := received[1]; e1.Type != bramble.EventScreenBegin || e1.Screen != "title" {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestDonburiSink_FromScreen(t *testing.T) {
	world := donburi.NewWorld()
	s := newScreen()
	s.SetEventSink(NewDonburiSink(world))

	var types []bramble.EventType
	LifecycleEventType.Subscribe(world, func(w donburi.World, e bramble.LifecycleEvent) {
		types = append(types, e.Type)
	})

	e := bramble.NewEntity("coin", 0, 0, "pickup")
	_ = s.Add(e)
	tick(s)
	_ = s.Remove(e)
	tick(s)
	LifecycleEventType.ProcessEvents(world)

	if len(types) != 2 || types[0] != bramble.EventAdded || types[1] != bramble.EventRemoved {
		t.Errorf("types = %v, want [added removed]", types)
	}
}

func TestMirrorTracksLiveEntities(t *testing.T) {
	world := donburi.NewWorld()
	s := newScreen()
	m := NewMirror(world, false)
	s.SetEventSink(m)

	hero := bramble.NewEntity("hero", 0, 0, "player")
	slime := bramble.NewEntity("slime", 0, 0, "enemy")
	_ = s.Add(hero)
	_ = s.Add(slime)
	tick(s)

	if m.Len() != 2 {
		t.Fatalf("mirrored = %d, want 2", m.Len())
	}
	ent, ok := m.Lookup(hero.ID)
	if !ok {
		t.Fatal("hero not mirrored")
	}
	data := Entity.Get(world.Entry(ent))
	if data.Name != "hero" || data.Screen != "level" || len(data.Types) != 1 || data.Types[0] != "player" {
		t.Errorf("mirrored data = %+v", data)
	}

	q := donburi.NewQuery(filter.Contains(Entity))
	if n := q.Count(world); n != 2 {
		t.Errorf("query count = %d, want 2", n)
	}

	slime.Destroy()
	tick(s)
	if m.Len() != 1 || q.Count(world) != 1 {
		t.Errorf("after destroy: mirrored = %d query = %d, want 1 and 1", m.Len(), q.Count(world))
	}
	if _, ok := m.Lookup(slime.ID); ok {
		t.Error("destroyed entity still mirrored")
	}
}

func TestMirrorPublishes(t *testing.T) {
	world := donburi.NewWorld()
	m := NewMirror(world, true)
	count := 0
	LifecycleEventType.Subscribe(world, func(w donburi.World, e bramble.LifecycleEvent) {
		count++
	})
	m.EmitEvent(bramble.LifecycleEvent{Type: bramble.EventAdded, EntityID: 1})
	m.EmitEvent(bramble.LifecycleEvent{Type: bramble.EventAdded, EntityID: 1})
	LifecycleEventType.ProcessEvents(world)
	if count != 2 {
		t.Errorf("published = %d, want 2", count)
	}
	if m.Len() != 1 {
		t.Errorf("duplicate add mirrored twice: %d", m.Len())
	}
}

func TestDonburiSink_ImplementsEventSink(t *testing.T) {
	world := donburi.NewWorld()
	var _ bramble.EventSink = NewDonburiSink(world)
	var _ bramble.EventSink = NewMirror(world, false)
}
