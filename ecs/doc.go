// Package ecs provides ECS adapters for bramble's lifecycle event system.
//
// [NewDonburiSink] bridges bramble lifecycle events (entity added, removed,
// destroyed and screen begin/end) into a [Donburi] world as typed events.
// Subscribe to [LifecycleEventType] in your ECS systems to receive them.
// [NewMirror] additionally keeps one Donburi entity, carrying the [Entity]
// component, per live bramble entity.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	screen.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
