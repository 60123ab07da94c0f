package bramble

import "math"

// Collider is anything that can take part in a collision test: entities
// and tilemaps.
type Collider interface {
	collider()
}

func (*Entity) collider()  {}
func (*Tilemap) collider() {}

// Overlaps reports whether two rectangles overlap on both axes using
// half-open intervals. Rectangles that only touch do not overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

// Collide reports whether a and b overlap at their current positions.
func Collide(a, b Collider) bool {
	if e, ok := a.(*Entity); ok {
		return CollideAt(e, b, e.X, e.Y)
	}
	if e, ok := b.(*Entity); ok {
		return CollideAt(e, a, e.X, e.Y)
	}
	panic(ErrTilemapPair)
}

// CollideAt reports whether a, placed at (x, y), overlaps b. When a is a
// tilemap and b an entity, the roles swap and (x, y) positions the entity.
// Panics with ErrTilemapPair if both are tilemaps.
func CollideAt(a, b Collider, x, y float64) bool {
	switch av := a.(type) {
	case *Entity:
		switch bv := b.(type) {
		case *Entity:
			return entitiesOverlap(av, x, y, bv)
		case *Tilemap:
			return bv.blocksAt(av, x, y)
		}
	case *Tilemap:
		switch bv := b.(type) {
		case *Entity:
			return av.blocksAt(bv, x, y)
		case *Tilemap:
			panic(ErrTilemapPair)
		}
	}
	return false
}

func entitiesOverlap(a *Entity, x, y float64, b *Entity) bool {
	if a == b || !a.Collidable || !b.Collidable {
		return false
	}
	return Overlaps(a.Bounds(x, y), b.Bounds(b.X, b.Y))
}

// blocksAt projects the corners of e's hitbox, with e placed at (x, y), into
// tile units and reports whether any tile at the corner columns and rows
// blocks movement. Tiles outside the grid never block.
func (t *Tilemap) blocksAt(e *Entity, x, y float64) bool {
	if !e.Collidable || e.Hitbox.W <= 0 || e.Hitbox.H <= 0 {
		return false
	}
	box := e.Bounds(x, y)
	tw := float64(t.TileWidth)
	th := float64(t.TileHeight)

	left := int(math.Floor((box.X - t.X) / tw))
	top := int(math.Floor((box.Y - t.Y) / th))
	// Right and bottom edges are exclusive: a box ending on a tile boundary
	// does not reach the next tile.
	right := int(math.Ceil((box.X+box.Width-t.X)/tw)) - 1
	bottom := int(math.Ceil((box.Y+box.Height-t.Y)/th)) - 1

	return t.blocks(left, top) || t.blocks(right, top) ||
		t.blocks(left, bottom) || t.blocks(right, bottom)
}

// blocks reports whether the tile at (col, row) exists and blocks movement.
func (t *Tilemap) blocks(col, row int) bool {
	if col < 0 || col >= t.cols || row < 0 || row >= t.rows {
		return false
	}
	return t.at(col, row).Blocks
}
