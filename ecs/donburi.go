// Package ecs provides ECS adapters for bramble.
package ecs

import (
	"github.com/phanxgames/bramble"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for bramble lifecycle events.
// Subscribe to this in your ECS systems to receive entity added, removed and
// destroyed events and screen transitions.
var LifecycleEventType = events.NewEventType[bramble.LifecycleEvent]()

// EntityData mirrors the identity of a live bramble entity.
type EntityData struct {
	ID     uint32
	Name   string
	Types  []string
	Screen string
}

// Entity is the component carried by mirrored entities.
var Entity = donburi.NewComponentType[EntityData]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Lifecycle
// events are published to LifecycleEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) bramble.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event bramble.LifecycleEvent) {
	LifecycleEventType.Publish(s.world, event)
}

// Mirror is an EventSink that keeps one Donburi entity per live bramble
// entity, created when the entity is attached and removed when it is
// detached. Events are also published to LifecycleEventType.
type Mirror struct {
	world  donburi.World
	byID   map[uint32]donburi.Entity
	events bool
}

// NewMirror creates a Mirror over world. When publish is true every event is
// also forwarded to LifecycleEventType.
func NewMirror(world donburi.World, publish bool) *Mirror {
	return &Mirror{
		world:  world,
		byID:   make(map[uint32]donburi.Entity),
		events: publish,
	}
}

// EmitEvent implements bramble.EventSink.
func (m *Mirror) EmitEvent(event bramble.LifecycleEvent) {
	switch event.Type {
	case bramble.EventAdded:
		if _, ok := m.byID[event.EntityID]; ok {
			break
		}
		ent := m.world.Create(Entity)
		Entity.SetValue(m.world.Entry(ent), EntityData{
			ID:     event.EntityID,
			Name:   event.Name,
			Types:  append([]string(nil), event.Types...),
			Screen: event.Screen,
		})
		m.byID[event.EntityID] = ent
	case bramble.EventRemoved, bramble.EventDestroyed:
		if ent, ok := m.byID[event.EntityID]; ok {
			m.world.Remove(ent)
			delete(m.byID, event.EntityID)
		}
	}
	if m.events {
		LifecycleEventType.Publish(m.world, event)
	}
}

// Lookup returns the Donburi entity mirroring the bramble entity id.
func (m *Mirror) Lookup(id uint32) (donburi.Entity, bool) {
	ent, ok := m.byID[id]
	return ent, ok
}

// Len returns the number of mirrored entities.
func (m *Mirror) Len() int {
	return len(m.byID)
}
