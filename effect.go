package bramble

import "github.com/pkg/errors"

// Effect is a pooled transient visual: an entity that plays one animation
// once and then returns itself to its EffectPool.
type Effect struct {
	entity   *Entity
	pool     *EffectPool
	finished bool
}

// Entity returns the effect's entity.
func (fx *Effect) Entity() *Entity {
	return fx.entity
}

// Done reports whether the effect finished playing.
func (fx *Effect) Done() bool {
	return fx.finished
}

// Reset prepares the effect for reuse.
func (fx *Effect) Reset() {
	fx.finished = false
}

// EffectPool spawns one-shot animated effects on a screen, recycling the
// entities once their animation completes.
type EffectPool struct {
	screen *Screen
	cfg    SpriteConfig
	anim   string
	layer  int
	pool   *Pool[*Effect]
}

// NewEffectPool creates a pool of effects that play animation anim from cfg
// on layer. hotSize effects are created up front.
func NewEffectPool(s *Screen, cfg SpriteConfig, anim string, layer int, hotSize int) (*EffectPool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if _, ok := cfg.Animations[anim]; !ok {
		return nil, errors.Wrapf(ErrUnknownAnimation, "effect %q", anim)
	}
	s.checkLayer(layer)
	ep := &EffectPool{screen: s, cfg: cfg, anim: anim, layer: layer}
	ep.pool = NewHotPool(ep.newEffect, hotSize)
	return ep, nil
}

func (ep *EffectPool) newEffect() *Effect {
	fx := &Effect{pool: ep}
	fx.entity = NewEntity("effect", 0, 0)
	fx.entity.UserData = fx
	fx.entity.layer = ep.layer
	fx.entity.Active = false
	fx.entity.OnRemoved = func(*Entity) {
		if ep.pool.Owns(fx) {
			_ = ep.pool.Put(fx)
		}
	}
	return fx
}

// Spawn places an effect at (x, y) and starts its animation. The effect is
// attached at the next housekeeping pass and released when it finishes.
func (ep *EffectPool) Spawn(x, y float64) (*Effect, error) {
	fx := ep.pool.Get()
	e := fx.entity
	e.X, e.Y = x, y
	if err := e.ConfigureSprite(ep.cfg); err != nil {
		return nil, err
	}
	err := e.PlayAnimationWith(Playback{
		Name:  ep.anim,
		Reset: true,
		Done: func(e *Entity) {
			fx.finished = true
			e.Visible = false
			_ = ep.screen.Remove(e)
		},
	})
	if err != nil {
		return nil, err
	}
	e.Visible = true
	if err := ep.screen.Add(e); err != nil {
		return nil, err
	}
	return fx, nil
}

// Release returns a finished effect to the pool without waiting for its
// removal. It fails with ErrPoolUnfinished while the effect is still playing.
func (ep *EffectPool) Release(fx *Effect) error {
	return ep.pool.Put(fx)
}

// Active returns the number of effects currently checked out.
func (ep *EffectPool) Active() int {
	return ep.pool.InUse()
}

// Free returns the number of effects ready for reuse.
func (ep *EffectPool) Free() int {
	return ep.pool.Free()
}
