package bramble

// FrameEventID identifies a registered frame timer. IDs increase
// monotonically and are never reused within a screen.
type FrameEventID uint64

// frameEvent is a scheduled callback counted in update ticks.
type frameEvent struct {
	id        FrameEventID
	fn        func()
	count     int
	limit     int
	repeating bool
	resolved  bool
}

// Done reports whether the event will never fire again.
func (ev *frameEvent) Done() bool { return ev.resolved }

// Reset clears the event for reuse.
func (ev *frameEvent) Reset() { *ev = frameEvent{} }

// frameTimers is a screen's timer list. Records are recycled through a pool.
type frameTimers struct {
	events []*frameEvent
	nextID FrameEventID
	pool   *Pool[*frameEvent]
}

func newFrameTimers() frameTimers {
	return frameTimers{
		pool: NewPool(func() *frameEvent { return &frameEvent{} }),
	}
}

func (ft *frameTimers) register(fn func(), limit int, repeating bool) FrameEventID {
	ft.nextID++
	ev := ft.pool.Get()
	ev.id = ft.nextID
	ev.fn = fn
	ev.limit = limit
	ev.repeating = repeating
	ft.events = append(ft.events, ev)
	return ev.id
}

func (ft *frameTimers) cancel(id FrameEventID) bool {
	for _, ev := range ft.events {
		if ev.id == id && !ev.resolved {
			ev.resolved = true
			return true
		}
	}
	return false
}

// advance ticks every timer once. Timers registered by a callback during
// this pass start counting on the next one.
func (ft *frameTimers) advance() {
	n := len(ft.events)
	for i := 0; i < n; i++ {
		ev := ft.events[i]
		if ev.resolved {
			continue
		}
		ev.count++
		if ev.count <= ev.limit {
			continue
		}
		if ev.repeating {
			ev.count = 0
		} else {
			ev.resolved = true
		}
		if ev.fn != nil {
			ev.fn()
		}
	}
}

// sweep drops resolved timers and returns their records to the pool.
func (ft *frameTimers) sweep() {
	kept := ft.events[:0]
	for _, ev := range ft.events {
		if !ev.resolved {
			kept = append(kept, ev)
			continue
		}
		_ = ft.pool.Put(ev)
	}
	clear(ft.events[len(kept):])
	ft.events = kept
}
