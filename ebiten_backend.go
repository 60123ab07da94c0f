package bramble

import (
	"image"
	_ "image/png" // register PNG decoding for sheet images
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sheet is a spritesheet sliced into a uniform grid. Sprite ids count
// left-to-right, top-to-bottom from zero.
type Sheet struct {
	Name       string
	Image      *ebiten.Image
	TileWidth  int
	TileHeight int

	cols int
	subs map[int]*ebiten.Image
}

// NewSheet slices img into tileWidth×tileHeight sprites.
func NewSheet(name string, img *ebiten.Image, tileWidth, tileHeight int) *Sheet {
	if tileWidth <= 0 || tileHeight <= 0 {
		panic("bramble: sheet tile size must be positive")
	}
	cols := 0
	if img != nil {
		cols = img.Bounds().Dx() / tileWidth
	}
	return &Sheet{
		Name:       name,
		Image:      img,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		cols:       cols,
		subs:       make(map[int]*ebiten.Image),
	}
}

// Rect returns the source rectangle of sprite id within the sheet image.
// ok is false if id lies outside the sheet.
func (sh *Sheet) Rect(id int) (r image.Rectangle, ok bool) {
	if id < 0 || sh.cols == 0 || sh.Image == nil {
		return image.Rectangle{}, false
	}
	b := sh.Image.Bounds()
	x := b.Min.X + (id%sh.cols)*sh.TileWidth
	y := b.Min.Y + (id/sh.cols)*sh.TileHeight
	r = image.Rect(x, y, x+sh.TileWidth, y+sh.TileHeight)
	if !r.In(b) {
		return image.Rectangle{}, false
	}
	return r, true
}

// Sprite returns the sub-image for sprite id, or nil.
func (sh *Sheet) Sprite(id int) *ebiten.Image {
	if img, ok := sh.subs[id]; ok {
		return img
	}
	r, ok := sh.Rect(id)
	if !ok {
		return nil
	}
	img := sh.Image.SubImage(r).(*ebiten.Image)
	sh.subs[id] = img
	return img
}

// sprite is an EbitenBackend primitive.
type sprite struct {
	layer     int
	ref       ImageRef
	x, y      float64
	color     Color
	visible   bool
	destroyed bool
	backend   *EbitenBackend
}

func (p *sprite) SetImage(ref ImageRef)    { p.ref = ref }
func (p *sprite) SetPosition(x, y float64) { p.x, p.y = x, y }
func (p *sprite) SetColor(c Color)         { p.color = c }
func (p *sprite) SetVisible(v bool)        { p.visible = v && !p.destroyed }
func (p *sprite) Visible() bool            { return p.visible }

func (p *sprite) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.visible = false
	p.backend.dead++
}

// EbitenBackend is a Backend that keeps per-layer primitive lists and draws
// the visible ones with DrawImage, resolving images from registered sheets.
type EbitenBackend struct {
	layers [][]*sprite
	sheets map[string]*Sheet
	dead   int
	op     ebiten.DrawImageOptions

	// Stats from the last Draw.
	drawn int
}

var _ Backend = (*EbitenBackend)(nil)
var _ Drawer = (*EbitenBackend)(nil)

// NewEbitenBackend creates a backend with the given number of layers.
func NewEbitenBackend(layers int) *EbitenBackend {
	if layers <= 0 {
		layers = 1
	}
	return &EbitenBackend{
		layers: make([][]*sprite, layers),
		sheets: make(map[string]*Sheet),
	}
}

// Layers returns the number of render layers.
func (b *EbitenBackend) Layers() int {
	return len(b.layers)
}

// NewPrimitive creates a hidden primitive on layer. Panics on an invalid
// layer index.
func (b *EbitenBackend) NewPrimitive(layer int) Primitive {
	if layer < 0 || layer >= len(b.layers) {
		panic(errors.Wrapf(ErrInvalidLayer, "%d of %d", layer, len(b.layers)))
	}
	p := &sprite{layer: layer, color: ColorWhite, backend: b}
	b.layers[layer] = append(b.layers[layer], p)
	return p
}

// AddSheet registers a sheet, replacing any sheet with the same name.
func (b *EbitenBackend) AddSheet(sh *Sheet) {
	b.sheets[sh.Name] = sh
}

// Sheet returns the registered sheet name, or nil.
func (b *EbitenBackend) Sheet(name string) *Sheet {
	return b.sheets[name]
}

// LoadSheets decodes every sheet image from fsys and registers it.
func (b *EbitenBackend) LoadSheets(fsys fs.FS, specs []SheetConfig) error {
	for _, spec := range specs {
		img, _, err := ebitenutil.NewImageFromFileSystem(fsys, spec.Path)
		if err != nil {
			return errors.Wrapf(err, "bramble: load sheet %q", spec.Name)
		}
		b.AddSheet(NewSheet(spec.Name, img, spec.TileWidth, spec.TileHeight))
	}
	return nil
}

// Resolve returns the drawable image for ref. An unknown sheet or sprite
// yields nil. The tint is applied at draw time, not baked into the image.
func (b *EbitenBackend) Resolve(ref ImageRef) *ebiten.Image {
	sh, ok := b.sheets[ref.Sheet]
	if !ok {
		return nil
	}
	return sh.Sprite(ref.ID)
}

// Primitives returns the number of live primitives on all layers.
func (b *EbitenBackend) Primitives() int {
	n := 0
	for _, l := range b.layers {
		n += len(l)
	}
	return n - b.dead
}

// Drawn returns the number of primitives painted by the last Draw.
func (b *EbitenBackend) Drawn() int {
	return b.drawn
}

// Draw paints every visible primitive, layer by layer in creation order.
func (b *EbitenBackend) Draw(screen *ebiten.Image) {
	if b.dead > 0 {
		b.compact()
	}
	b.drawn = 0
	for _, layer := range b.layers {
		for _, p := range layer {
			if !p.visible {
				continue
			}
			img := b.Resolve(p.ref)
			if img == nil {
				continue
			}
			b.op.GeoM.Reset()
			b.op.GeoM.Translate(p.x, p.y)
			b.op.ColorScale.Reset()
			b.op.ColorScale.ScaleWithColor(p.color.toRGBA())
			screen.DrawImage(img, &b.op)
			b.drawn++
		}
	}
	if DebugMode() {
		logger.Debug("draw", zap.Int("primitives", b.Primitives()), zap.Int("drawn", b.drawn))
	}
}

// compact drops destroyed primitives from the layer lists.
func (b *EbitenBackend) compact() {
	for i, layer := range b.layers {
		kept := layer[:0]
		for _, p := range layer {
			if !p.destroyed {
				kept = append(kept, p)
			}
		}
		clear(layer[len(kept):])
		b.layers[i] = kept
	}
	b.dead = 0
}
