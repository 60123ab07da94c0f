package bramble

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultScreenshotDir is used when Config.ScreenshotDir is empty.
const DefaultScreenshotDir = "screenshots"

// Screenshot queues a labeled screenshot to be captured at the end of the
// next Draw call. The PNG is written to Config.ScreenshotDir with a
// timestamped filename. Safe to call from hooks.
func (e *Engine) Screenshot(label string) {
	e.shots = append(e.shots, label)
}

// PendingScreenshots returns the number of queued screenshot labels.
func (e *Engine) PendingScreenshots() int {
	return len(e.shots)
}

func (e *Engine) screenshotDir() string {
	if e.cfg.ScreenshotDir != "" {
		return e.cfg.ScreenshotDir
	}
	return DefaultScreenshotDir
}

// flushScreenshots captures the rendered frame once for every queued label.
// Failures are logged; the queue is always drained.
func (e *Engine) flushScreenshots(screen *ebiten.Image) {
	if len(e.shots) == 0 {
		return
	}
	defer func() { e.shots = e.shots[:0] }()

	dir := e.screenshotDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("screenshot", zap.String("dir", dir), zap.Error(err))
		return
	}

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, b.Dx(), b.Dy())

	stamp := e.now().Format("20060102_150405")
	for _, label := range e.shots {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			logger.Error("screenshot", zap.String("label", label), zap.Error(err))
			continue
		}
		if DebugMode() {
			logger.Debug("screenshot", zap.String("path", path))
		}
	}
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
