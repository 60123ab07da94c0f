package bramble

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakePrimitive records the last state set by the engine.
type fakePrimitive struct {
	layer     int
	ref       ImageRef
	x, y      float64
	color     Color
	visible   bool
	destroyed bool
}

func (p *fakePrimitive) SetImage(ref ImageRef)    { p.ref = ref }
func (p *fakePrimitive) SetPosition(x, y float64) { p.x, p.y = x, y }
func (p *fakePrimitive) SetColor(c Color)         { p.color = c }
func (p *fakePrimitive) SetVisible(v bool)        { p.visible = v }
func (p *fakePrimitive) Visible() bool            { return p.visible }
func (p *fakePrimitive) Destroy()                 { p.destroyed = true; p.visible = false }

// fakeBackend counts every primitive it hands out.
type fakeBackend struct {
	layers int
	prims  []*fakePrimitive
}

func newFakeBackend(layers int) *fakeBackend {
	return &fakeBackend{layers: layers}
}

func (b *fakeBackend) NewPrimitive(layer int) Primitive {
	p := &fakePrimitive{layer: layer, color: ColorWhite}
	b.prims = append(b.prims, p)
	return p
}

func (b *fakeBackend) Layers() int { return b.layers }

// visible returns the live, visible primitives.
func (b *fakeBackend) visible() []*fakePrimitive {
	var out []*fakePrimitive
	for _, p := range b.prims {
		if p.visible && !p.destroyed {
			out = append(out, p)
		}
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 160
	cfg.Height = 128
	cfg.Layers = 3
	cfg.CameraFixedLayers = []int{2}
	return cfg
}

func newTestScreen() (*Screen, *fakeBackend) {
	cfg := testConfig()
	b := newFakeBackend(cfg.Layers)
	return NewScreen("test", b, cfg), b
}

// tick runs one update and render phase.
func tick(s *Screen) {
	s.Update()
	s.Render()
}

// observeLogs swaps the package logger for an observer for the duration of
// the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

// mustPanic fails the test unless fn panics.
func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic, got none", name)
		}
	}()
	fn()
}

func spriteRef(id int) *ImageRef {
	return &ImageRef{Sheet: "sprites", ID: id}
}
