package bramble

import (
	"go.uber.org/zap"
)

// globalDebug enables per-phase timing stats and lifecycle tracing at debug
// level on the package logger. Plain variable (bramble is single-threaded).
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, update, render
// and draw stats are logged each frame at debug level, and the default
// logger's level is lowered to include them.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
	if enabled {
		logLevel.SetLevel(zap.DebugLevel)
	} else {
		logLevel.SetLevel(zap.WarnLevel)
	}
}

// DebugMode reports whether debug mode is enabled.
func DebugMode() bool {
	return globalDebug
}

// Stats is a snapshot of a screen's bookkeeping, for overlays and tests.
type Stats struct {
	Frame          uint64
	Entities       int
	PendingAdds    int
	PendingRemoves int
	Timers         int
	Tweens         int
	Tilemaps       int
	TilesDrawn     int
}

// Stats returns the screen's current bookkeeping counters.
func (s *Screen) Stats() Stats {
	st := Stats{
		Frame:          s.frame,
		Entities:       len(s.entities),
		PendingAdds:    len(s.pendingAdds),
		PendingRemoves: len(s.pendingRemove),
		Timers:         len(s.timers.events),
		Tweens:         len(s.tweens),
		Tilemaps:       len(s.tilemaps),
	}
	for _, t := range s.tilemaps {
		st.TilesDrawn += t.Claimed()
	}
	return st
}
