package bramble

import (
	"math"
)

// TileEmpty is the tile id that draws nothing.
const TileEmpty = -1

// TileAnimation loops a tile through a sequence of sprite ids.
type TileAnimation struct {
	Frames []int
	// Delay is the number of extra passes each frame is held.
	Delay int
	// Synced tiles all derive their frame from the screen frame counter, so
	// every tile sharing the animation shows the same frame. Unsynced tiles
	// keep a private counter advanced each pass they are drawn.
	Synced bool
}

// cycle returns the number of passes in one full loop.
func (a *TileAnimation) cycle() int {
	return len(a.Frames) * (a.Delay + 1)
}

// frameAt returns the sprite id shown after tick passes.
func (a *TileAnimation) frameAt(tick uint64) int {
	c := a.cycle()
	if c == 0 {
		return TileEmpty
	}
	return a.Frames[int(tick%uint64(c))/(a.Delay+1)]
}

// Tile is a single grid cell.
type Tile struct {
	ID     int
	Blocks bool
	Anim   *TileAnimation
}

var emptyTile = Tile{ID: TileEmpty}

// chunkSize is the edge length, in tiles, of one storage chunk.
const chunkSize = 64

// tileChunk stores a chunkSize×chunkSize block of tiles, row-major.
type tileChunk [chunkSize * chunkSize]Tile

func newTileChunk() *tileChunk {
	c := new(tileChunk)
	for i := range c {
		c[i] = emptyTile
	}
	return c
}

// Tilemap is a large logical grid of tiles rendered through a small, fixed
// pool of primitives mapped only to the visible viewport window. The pool
// holds at most PoolSize(viewW, viewH, TileWidth, TileHeight) primitives
// regardless of grid size.
type Tilemap struct {
	Name  string
	Sheet string

	// X and Y are the world position of the grid's top-left corner.
	X, Y float64

	// Tile dimensions in pixels.
	TileWidth  int
	TileHeight int

	// Visible toggles the whole renderer.
	Visible bool

	cols, rows int
	layer      int

	// Tiles live in chunks allocated on first write. A nil chunk is all
	// empty tiles, so sparse grids cost memory only where they have content.
	chunks    []*tileChunk
	chunkCols int

	// Primitive pool. claimed counts the entries bound this pass; the rest
	// are hidden, never destroyed, until the tilemap is detached.
	pool    []Primitive
	poolCap int
	claimed int
	hidden  bool

	// Private animation counters for unsynced tiles, keyed by grid index.
	counters map[int]uint64

	screen *Screen
}

// NewTilemap creates a cols×rows grid filled with empty tiles. No tile
// storage is allocated until tiles are written.
func NewTilemap(name, sheet string, cols, rows, tileWidth, tileHeight int) *Tilemap {
	if cols < 0 || rows < 0 {
		panic("bramble: tilemap dimensions must be non-negative")
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		panic("bramble: tile size must be positive")
	}
	t := &Tilemap{
		Name:       name,
		Sheet:      sheet,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		Visible:    true,
		cols:       cols,
		rows:       rows,
		chunkCols:  (cols + chunkSize - 1) / chunkSize,
		counters:   make(map[int]uint64),
	}
	chunkRows := (rows + chunkSize - 1) / chunkSize
	t.chunks = make([]*tileChunk, t.chunkCols*chunkRows)
	return t
}

// PoolSize returns the primitive pool capacity for a viewport of viewW×viewH
// pixels: the visible tile count plus one tile of margin on every side.
func PoolSize(viewW, viewH float64, tileWidth, tileHeight int) int {
	cols := int(math.Ceil(viewW/float64(tileWidth))) + 2
	rows := int(math.Ceil(viewH/float64(tileHeight))) + 2
	return cols * rows
}

// Size returns the grid dimensions in tiles.
func (t *Tilemap) Size() (cols, rows int) {
	return t.cols, t.rows
}

// Layer returns the render layer the tiles draw on.
func (t *Tilemap) Layer() int {
	return t.layer
}

// SetLayer moves the tilemap to layer i. Already-allocated primitives are
// released and reallocated on the next pass.
func (t *Tilemap) SetLayer(i int) {
	if t.layer == i {
		return
	}
	if t.screen != nil {
		t.screen.checkLayer(i)
	}
	t.releasePool()
	t.layer = i
}

func (t *Tilemap) inBounds(col, row int) bool {
	return col >= 0 && col < t.cols && row >= 0 && row < t.rows
}

// at returns the tile at an in-bounds (col, row).
func (t *Tilemap) at(col, row int) Tile {
	c := t.chunks[(row/chunkSize)*t.chunkCols+col/chunkSize]
	if c == nil {
		return emptyTile
	}
	return c[(row%chunkSize)*chunkSize+col%chunkSize]
}

// put stores tile at an in-bounds (col, row), allocating its chunk unless
// the tile is empty and the chunk does not exist yet.
func (t *Tilemap) put(col, row int, tile Tile) {
	ci := (row/chunkSize)*t.chunkCols + col/chunkSize
	c := t.chunks[ci]
	if c == nil {
		if tile == emptyTile {
			return
		}
		c = newTileChunk()
		t.chunks[ci] = c
	}
	c[(row%chunkSize)*chunkSize+col%chunkSize] = tile
}

// Chunks returns the number of allocated storage chunks.
func (t *Tilemap) Chunks() int {
	n := 0
	for _, c := range t.chunks {
		if c != nil {
			n++
		}
	}
	return n
}

// Tile returns the tile at (col, row). ok is false outside the grid.
func (t *Tilemap) Tile(col, row int) (tile Tile, ok bool) {
	if !t.inBounds(col, row) {
		return Tile{ID: TileEmpty}, false
	}
	return t.at(col, row), true
}

// SetTile replaces the tile at (col, row). Out-of-range writes are ignored.
// The change is picked up on the next render pass.
func (t *Tilemap) SetTile(col, row int, tile Tile) {
	if !t.inBounds(col, row) {
		return
	}
	t.put(col, row, tile)
	delete(t.counters, row*t.cols+col)
}

// SetTileID changes only the sprite id of the tile at (col, row).
func (t *Tilemap) SetTileID(col, row, id int) {
	if !t.inBounds(col, row) {
		return
	}
	tile := t.at(col, row)
	tile.ID = id
	t.put(col, row, tile)
}

// SetBlocks changes only the blocking flag of the tile at (col, row).
func (t *Tilemap) SetBlocks(col, row int, blocks bool) {
	if !t.inBounds(col, row) {
		return
	}
	tile := t.at(col, row)
	tile.Blocks = blocks
	t.put(col, row, tile)
}

// Fill sets every tile to tile. Filling with an empty tile releases all
// tile storage.
func (t *Tilemap) Fill(tile Tile) {
	clear(t.counters)
	if tile == emptyTile {
		clear(t.chunks)
		return
	}
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			t.put(col, row, tile)
		}
	}
}

// SetData fills the grid row-major from ids; tiles whose id is in blocking
// are marked as blocking movement.
func (t *Tilemap) SetData(ids []int, blocking ...int) {
	clear(t.chunks)
	clear(t.counters)
	n := min(len(ids), t.cols*t.rows)
	for i := 0; i < n; i++ {
		id := ids[i]
		b := false
		for _, bid := range blocking {
			if bid == id {
				b = true
				break
			}
		}
		t.put(i%t.cols, i/t.cols, Tile{ID: id, Blocks: b})
	}
}

// Allocated returns the number of primitives allocated so far.
func (t *Tilemap) Allocated() int {
	return len(t.pool)
}

// Claimed returns the number of primitives bound during the last pass.
func (t *Tilemap) Claimed() int {
	if t.hidden {
		return 0
	}
	return t.claimed
}

// Hidden reports whether the last pass hid the whole renderer.
func (t *Tilemap) Hidden() bool {
	return t.hidden
}

// visibleRange returns the first and last visible column and row, clamped
// to the grid. ok is false when the window lies entirely outside the grid.
func (t *Tilemap) visibleRange(s *Screen) (c0, r0, c1, r1 int, ok bool) {
	camX, camY := 0.0, 0.0
	if s.CameraEnabled && !s.isCameraFixed(t.layer) {
		camX, camY = s.Camera.X, s.Camera.Y
	}
	tw := float64(t.TileWidth)
	th := float64(t.TileHeight)

	c0 = int(math.Floor((camX - t.X) / tw))
	r0 = int(math.Floor((camY - t.Y) / th))
	c1 = int(math.Ceil((camX+s.width-t.X)/tw)) - 1
	r1 = int(math.Ceil((camY+s.height-t.Y)/th)) - 1

	if c1 < 0 || r1 < 0 || c0 >= t.cols || r0 >= t.rows || c0 > c1 || r0 > r1 {
		return 0, 0, 0, 0, false
	}
	c0 = max(c0, 0)
	r0 = max(r0, 0)
	c1 = min(c1, t.cols-1)
	r1 = min(r1, t.rows-1)
	return c0, r0, c1, r1, true
}

// render binds pooled primitives to the visible tiles. Unclaimed primitives
// are hidden so the next pass can reclaim them without reallocating.
func (t *Tilemap) render(s *Screen) {
	if s.backend == nil {
		return
	}
	if t.poolCap == 0 {
		t.poolCap = PoolSize(s.width, s.height, t.TileWidth, t.TileHeight)
	}

	c0, r0, c1, r1, ok := t.visibleRange(s)
	if !t.Visible || !ok {
		t.hide()
		return
	}
	t.hidden = false

	offX, offY := t.X, t.Y
	if s.CameraEnabled && !s.isCameraFixed(t.layer) {
		offX -= s.Camera.X
		offY -= s.Camera.Y
	}
	tw := float64(t.TileWidth)
	th := float64(t.TileHeight)

	prev := t.claimed
	t.claimed = 0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			i := row*t.cols + col
			tile := t.at(col, row)
			id := tile.ID
			if id == TileEmpty {
				continue
			}
			if a := tile.Anim; a != nil && len(a.Frames) > 0 {
				if a.Synced {
					id = a.frameAt(s.frame)
				} else {
					id = a.frameAt(t.counters[i])
					t.counters[i]++
				}
				if id == TileEmpty {
					continue
				}
			}
			p := t.claim(s)
			if p == nil {
				continue
			}
			p.SetImage(ImageRef{Sheet: t.Sheet, ID: id})
			p.SetPosition(offX+float64(col)*tw, offY+float64(row)*th)
			p.SetVisible(true)
		}
	}
	for i := t.claimed; i < prev && i < len(t.pool); i++ {
		t.pool[i].SetVisible(false)
	}
}

// claim returns the next pooled primitive for this pass, allocating lazily
// up to the pool capacity.
func (t *Tilemap) claim(s *Screen) Primitive {
	if t.claimed < len(t.pool) {
		p := t.pool[t.claimed]
		t.claimed++
		return p
	}
	if len(t.pool) >= t.poolCap {
		return nil
	}
	p := s.backend.NewPrimitive(t.layer)
	t.pool = append(t.pool, p)
	t.claimed++
	return p
}

// hide hides every primitive bound during the last pass.
func (t *Tilemap) hide() {
	if t.hidden {
		return
	}
	for i := 0; i < t.claimed && i < len(t.pool); i++ {
		t.pool[i].SetVisible(false)
	}
	t.claimed = 0
	t.hidden = true
}

// releasePool destroys every pooled primitive.
func (t *Tilemap) releasePool() {
	for _, p := range t.pool {
		p.Destroy()
	}
	clear(t.pool)
	t.pool = t.pool[:0]
	t.claimed = 0
	t.poolCap = 0
	t.hidden = false
}
