package bramble

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Drawer is implemented by backends that can paint their primitives onto
// an ebiten screen image.
type Drawer interface {
	Draw(screen *ebiten.Image)
}

// poller is implemented by inputs that refresh device state each frame.
type poller interface {
	Poll()
}

// Engine is the frame lifecycle scheduler. Once per tick it applies a
// requested screen swap, runs the active screen's update and render phases,
// and resets one-shot input state. It is strictly single-threaded; screen
// swaps requested during a frame take effect at the start of the next one.
//
// Engine implements ebiten.Game:
//
//	engine := bramble.NewEngine(cfg, backend, bramble.NewKeyboard())
//	engine.SetActiveScreen(title)
//	if err := bramble.Run(engine); err != nil {
//		log.Fatal(err)
//	}
type Engine struct {
	cfg     Config
	backend Backend
	input   Input

	active  *Screen
	next    *Screen
	hasNext bool

	frames uint64
	start  time.Time
	now    func() time.Time

	runner  *TestRunner
	shots   []string
	overlay statsOverlay
	err     error
}

// NewEngine creates an engine. backend and input may be nil for headless use.
func NewEngine(cfg Config, backend Backend, input Input) *Engine {
	return &Engine{
		cfg:     cfg,
		backend: backend,
		input:   input,
		now:     time.Now,
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Backend returns the rendering backend.
func (e *Engine) Backend() Backend {
	return e.backend
}

// Input returns the input provider.
func (e *Engine) Input() Input {
	return e.input
}

// NewScreen creates a screen using the engine's backend and config.
func (e *Engine) NewScreen(name string) *Screen {
	return NewScreen(name, e.backend, e.cfg)
}

// SetActiveScreen requests a screen swap. The current frame keeps running on
// the current screen; the previous screen is ended and s begun at the start
// of the next tick. A nil screen leaves the engine idle.
func (e *Engine) SetActiveScreen(s *Screen) {
	e.next = s
	e.hasNext = true
}

// ActiveScreen returns the screen receiving update and render phases.
func (e *Engine) ActiveScreen() *Screen {
	return e.active
}

// Frames returns the number of ticks run so far.
func (e *Engine) Frames() uint64 {
	return e.frames
}

// ElapsedTime returns the wall time since the first tick.
func (e *Engine) ElapsedTime() time.Duration {
	if e.start.IsZero() {
		return 0
	}
	return e.now().Sub(e.start)
}

// SetTestRunner attaches a scripted input runner. It requires the engine's
// input to be a *Keyboard.
func (e *Engine) SetTestRunner(r *TestRunner) {
	e.runner = r
}

// Stop makes the next ebiten Update return err, ending the game loop.
func (e *Engine) Stop(err error) {
	if err == nil {
		err = ebiten.Termination
	}
	e.err = err
}

// Tick runs one frame.
func (e *Engine) Tick() {
	if e.start.IsZero() {
		e.start = e.now()
	}
	e.frames++

	if e.hasNext {
		prev := e.active
		e.active = e.next
		e.next = nil
		e.hasNext = false
		if prev != nil {
			prev.end()
		}
		if e.active != nil {
			e.active.begin(e)
		}
		if DebugMode() {
			logger.Debug("screen swap",
				zap.Uint64("frame", e.frames),
				zap.String("screen", screenName(e.active)))
		}
	}

	if p, ok := e.input.(poller); ok {
		p.Poll()
	}
	if e.runner != nil {
		if k, ok := e.input.(*Keyboard); ok {
			e.runner.step(k, e.Screenshot)
		}
	}

	if s := e.active; s != nil {
		s.Update()
		s.Render()
	}

	if e.input != nil {
		e.input.EndFrame()
	}
}

// Update implements ebiten.Game.
func (e *Engine) Update() error {
	if e.err != nil {
		return e.err
	}
	e.Tick()
	return e.err
}

// Draw implements ebiten.Game. The stats overlay and queued screenshots
// are applied after the backend has painted.
func (e *Engine) Draw(screen *ebiten.Image) {
	if d, ok := e.backend.(Drawer); ok {
		d.Draw(screen)
	}
	if e.cfg.ShowStats {
		e.overlay.draw(screen, e)
	}
	e.flushScreenshots(screen)
}

// Layout implements ebiten.Game with a fixed logical resolution.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	return e.cfg.Width, e.cfg.Height
}

// Run opens a window sized from the engine config and runs the game loop
// until the window is closed or Stop is called.
func Run(e *Engine) error {
	ebiten.SetWindowTitle(e.cfg.Title)
	ebiten.SetWindowSize(e.cfg.Width*2, e.cfg.Height*2)
	err := ebiten.RunGame(e)
	if err == ebiten.Termination {
		return nil
	}
	return err
}

// tickSeconds is the fixed timestep of one update phase.
func tickSeconds() float32 {
	return float32(1.0 / float64(ebiten.TPS()))
}

func screenName(s *Screen) string {
	if s == nil {
		return ""
	}
	return s.Name
}
