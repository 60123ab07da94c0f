package bramble

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input is the keyboard contract polled from update hooks. Pressed is
// edge-triggered and cleared by EndFrame, which the engine calls once per
// frame after the render phase.
type Input interface {
	Down(key ebiten.Key) bool
	Pressed(key ebiten.Key) bool
	EndFrame()
}

// Keyboard implements Input on top of ebiten's keyboard state. Key events
// can also be injected for scripted runs; injected state is merged with
// real key state.
type Keyboard struct {
	down     map[ebiten.Key]bool
	pressed  map[ebiten.Key]bool
	injected map[ebiten.Key]bool
	polling  bool
	keyBuf   []ebiten.Key
}

// NewKeyboard creates a keyboard that polls ebiten each frame.
func NewKeyboard() *Keyboard {
	return &Keyboard{
		down:     make(map[ebiten.Key]bool),
		pressed:  make(map[ebiten.Key]bool),
		injected: make(map[ebiten.Key]bool),
		polling:  true,
	}
}

// NewScriptedKeyboard creates a keyboard that only sees injected events.
func NewScriptedKeyboard() *Keyboard {
	k := NewKeyboard()
	k.polling = false
	return k
}

// Poll refreshes key state from ebiten. The engine calls it at the start of
// every frame.
func (k *Keyboard) Poll() {
	if !k.polling {
		return
	}
	k.keyBuf = inpututil.AppendJustPressedKeys(k.keyBuf[:0])
	for _, key := range k.keyBuf {
		k.pressed[key] = true
	}
	clear(k.down)
	k.keyBuf = inpututil.AppendPressedKeys(k.keyBuf[:0])
	for _, key := range k.keyBuf {
		k.down[key] = true
	}
}

// Down reports whether key is held.
func (k *Keyboard) Down(key ebiten.Key) bool {
	return k.down[key] || k.injected[key]
}

// Pressed reports whether key went down this frame.
func (k *Keyboard) Pressed(key ebiten.Key) bool {
	return k.pressed[key]
}

// EndFrame clears edge-triggered state.
func (k *Keyboard) EndFrame() {
	clear(k.pressed)
}

// InjectPress marks key as held and pressed this frame.
func (k *Keyboard) InjectPress(key ebiten.Key) {
	if !k.injected[key] {
		k.pressed[key] = true
	}
	k.injected[key] = true
}

// InjectRelease releases an injected key.
func (k *Keyboard) InjectRelease(key ebiten.Key) {
	delete(k.injected, key)
}
