package bramble

import (
	"go.uber.org/zap"
)

// Poolable is a reusable stateful instance. Done reports whether the
// instance has finished its work and may be recycled; Reset clears it for
// the next Get.
type Poolable interface {
	comparable
	Done() bool
	Reset()
}

// Pool is an explicit free list plus in-use set for reusable instances.
// Releasing an instance that is not finished is rejected, so two live owners
// can never share pooled state.
type Pool[T Poolable] struct {
	newFn func() T
	free  []T
	inUse map[T]struct{}
}

// NewPool creates an empty pool that constructs instances with newFn.
func NewPool[T Poolable](newFn func() T) *Pool[T] {
	return &Pool[T]{
		newFn: newFn,
		inUse: make(map[T]struct{}),
	}
}

// NewHotPool creates a pool pre-filled with hotSize instances.
func NewHotPool[T Poolable](newFn func() T, hotSize int) *Pool[T] {
	p := NewPool(newFn)
	for i := 0; i < hotSize; i++ {
		p.free = append(p.free, newFn())
	}
	return p
}

// Get returns a free instance, constructing one if the free list is empty.
func (p *Pool[T]) Get() T {
	var v T
	if n := len(p.free); n > 0 {
		v = p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
	} else {
		v = p.newFn()
	}
	p.inUse[v] = struct{}{}
	return v
}

// Put returns v to the free list. It fails with ErrNotFromPool if v is not
// checked out of p, and with ErrPoolUnfinished if v is not done; in both
// cases v stays out of the free list.
func (p *Pool[T]) Put(v T) error {
	if _, ok := p.inUse[v]; !ok {
		logger.Error(ErrNotFromPool.Error())
		return ErrNotFromPool
	}
	if !v.Done() {
		logger.Error(ErrPoolUnfinished.Error(), zap.Int("in_use", len(p.inUse)))
		return ErrPoolUnfinished
	}
	delete(p.inUse, v)
	v.Reset()
	p.free = append(p.free, v)
	return nil
}

// Owns reports whether v is currently checked out of p.
func (p *Pool[T]) Owns(v T) bool {
	_, ok := p.inUse[v]
	return ok
}

// InUse returns the number of checked-out instances.
func (p *Pool[T]) InUse() int {
	return len(p.inUse)
}

// Free returns the number of instances ready for reuse.
func (p *Pool[T]) Free() int {
	return len(p.free)
}
