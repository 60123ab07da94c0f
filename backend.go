package bramble

// Primitive is a single positioned, textured drawable owned by a rendering
// backend. Entities and tilemap pools hold primitives; they never draw
// directly.
type Primitive interface {
	SetImage(ref ImageRef)
	SetPosition(x, y float64)
	SetColor(c Color)
	SetVisible(visible bool)
	Visible() bool
	// Destroy releases the primitive. Further calls are no-ops.
	Destroy()
}

// Backend produces primitives on numbered render layers. Layer 0 is drawn
// first.
type Backend interface {
	NewPrimitive(layer int) Primitive
	Layers() int
}
