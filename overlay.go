package bramble

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// overlayRefresh is the number of frames between overlay text refreshes.
const overlayRefresh = 30

// statsOverlay draws FPS, TPS and screen bookkeeping in the top-left corner
// when Config.ShowStats is set. The text is rebuilt every overlayRefresh
// frames.
type statsOverlay struct {
	img   *ebiten.Image
	text  string
	frame uint64
}

func overlayText(fps, tps float64, st Stats) string {
	return fmt.Sprintf("FPS: %.1f TPS: %.1f\nentities: %d (+%d -%d)\ntimers: %d tiles: %d",
		fps, tps, st.Entities, st.PendingAdds, st.PendingRemoves, st.Timers, st.TilesDrawn)
}

func (o *statsOverlay) draw(screen *ebiten.Image, e *Engine) {
	if o.img == nil {
		o.img = ebiten.NewImage(160, 48)
	}
	if o.text == "" || e.frames-o.frame >= overlayRefresh {
		o.frame = e.frames
		var st Stats
		if s := e.active; s != nil {
			st = s.Stats()
		}
		o.text = overlayText(ebiten.ActualFPS(), ebiten.ActualTPS(), st)
		o.img.Clear()
		// Semi-transparent background for readability.
		o.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.img, o.text)
	}
	screen.DrawImage(o.img, nil)
}
