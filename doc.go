// Package bramble is a frame-driven 2D scene engine for [Ebitengine].
//
// Bramble owns a collection of positioned, renderable, updatable entities,
// advances their animation and game logic once per display frame, resolves
// axis-aligned collisions between them, and draws large tile grids through
// a bounded pool of primitives.
//
// # Quick start
//
// An [Engine] runs one active [Screen] at a time and implements
// [ebiten.Game]:
//
//	cfg := bramble.DefaultConfig()
//	backend := bramble.NewEbitenBackend(cfg.Layers)
//	engine := bramble.NewEngine(cfg, backend, bramble.NewKeyboard())
//
//	level := engine.NewScreen("level")
//	hero := bramble.NewEntity("hero", 32, 32, "player")
//	hero.UpdateHitbox(bramble.HitboxSize(16, 16))
//	hero.OnUpdate = func(e *bramble.Entity) { e.X++ }
//	level.Add(hero)
//
//	engine.SetActiveScreen(level)
//	bramble.Run(engine)
//
// # Frame lifecycle
//
// Each tick the engine applies a pending screen swap, then runs the active
// screen's update phase (screen hook, frame timers and tweens, entity
// animations and update hooks, late-update hook and camera, housekeeping)
// and its render phase (entity placement, tilemaps). Screen swaps requested
// during a frame take effect at the start of the next one.
//
// # Deferred mutation
//
// [Screen.Add] and [Screen.Remove] never touch the live entity list
// directly. They queue the change and take ownership (or drop it)
// immediately; the live list is updated once per frame, between the update
// and render phases, and only then do the OnAdded and OnRemoved hooks run.
// Adding and removing the same entity within one frame cancels out.
//
// # Tilemaps
//
// A [Tilemap] of any size is drawn through at most [PoolSize] primitives:
// one per visible tile plus a one-tile margin. Primitives are rebound to
// the visible window each pass and hidden, never freed, when unused.
//
// # ECS integration
//
// Lifecycle events can be forwarded to a [Donburi] world through the
// bramble/ecs adapter and [Screen.SetEventSink].
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package bramble
