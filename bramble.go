package bramble

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// The right and bottom edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width &&
		y >= r.Y && y < r.Y+r.Height
}

// Intersects reports whether r and other overlap. Intervals are half-open, so
// rectangles that only share an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ImageRef names a sprite within a registered sheet. The zero value refers
// to nothing and is never drawn.
type ImageRef struct {
	Sheet string
	ID    int
}

// IsZero reports whether the reference names no sheet.
func (r ImageRef) IsZero() bool {
	return r.Sheet == ""
}

// EventType identifies a kind of lifecycle event forwarded to an EventSink.
type EventType uint8

const (
	EventAdded      EventType = iota // entity attached during housekeeping
	EventRemoved                     // entity detached during housekeeping
	EventDestroyed                   // entity destroyed
	EventScreenBegin                 // screen became active
	EventScreenEnd                   // screen was replaced
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventDestroyed:
		return "destroyed"
	case EventScreenBegin:
		return "screen-begin"
	case EventScreenEnd:
		return "screen-end"
	default:
		return "unknown"
	}
}

// LifecycleEvent carries lifecycle data for an optional ECS bridge.
type LifecycleEvent struct {
	Type     EventType
	EntityID uint32
	Name     string
	Types    []string
	Screen   string
	Frame    uint64
	X, Y     float64
}

// EventSink is the interface for optional ECS integration. When set on a
// Screen, lifecycle events are forwarded to it.
type EventSink interface {
	EmitEvent(event LifecycleEvent)
}
