package bramble

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SheetConfig describes a spritesheet sliced into a uniform grid.
type SheetConfig struct {
	Name       string `json:"name" yaml:"name"`
	Path       string `json:"path" yaml:"path"`
	TileWidth  int    `json:"tile_width" yaml:"tile_width"`
	TileHeight int    `json:"tile_height" yaml:"tile_height"`
}

// Config is the in-memory engine configuration, resolved before the engine
// starts.
type Config struct {
	Title  string `json:"title" yaml:"title"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`

	// Layers is the number of render layers. Layer 0 is drawn first.
	Layers int `json:"layers" yaml:"layers"`
	// CameraFixedLayers lists layers exempt from the camera offset.
	CameraFixedLayers []int `json:"camera_fixed_layers" yaml:"camera_fixed_layers"`

	// FrameDelay is the default number of extra ticks an animation frame is
	// held when nothing more specific is configured.
	FrameDelay int `json:"frame_delay" yaml:"frame_delay"`

	Sheets []SheetConfig `json:"sheets" yaml:"sheets"`

	// ShowStats draws the FPS and bookkeeping overlay.
	ShowStats bool `json:"show_stats" yaml:"show_stats"`
	// ScreenshotDir receives PNGs queued with Engine.Screenshot.
	ScreenshotDir string `json:"screenshot_dir" yaml:"screenshot_dir"`
}

// DefaultConfig returns a 320×240, 4-layer configuration with no
// camera-fixed layers.
func DefaultConfig() Config {
	return Config{
		Title:      "bramble",
		Width:      320,
		Height:     240,
		Layers:     4,
		FrameDelay: DefaultFrameDelay,
	}
}

// LoadConfig decodes a YAML (or JSON) config from r. Fields missing from
// the document keep their DefaultConfig values.
func LoadConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, errors.Wrap(err, "bramble: read config")
	}
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "bramble: parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes the config at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "bramble: open config %s", path)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate reports the first inconsistency in c.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("bramble: invalid screen size %dx%d", c.Width, c.Height)
	}
	if c.Layers <= 0 {
		return errors.Errorf("bramble: layer count must be positive, got %d", c.Layers)
	}
	for _, l := range c.CameraFixedLayers {
		if l < 0 || l >= c.Layers {
			return errors.Wrapf(ErrInvalidLayer, "camera-fixed layer %d of %d", l, c.Layers)
		}
	}
	seen := make(map[string]bool, len(c.Sheets))
	for _, s := range c.Sheets {
		if s.Name == "" {
			return errors.New("bramble: sheet without a name")
		}
		if seen[s.Name] {
			return errors.Errorf("bramble: duplicate sheet %q", s.Name)
		}
		seen[s.Name] = true
		if s.TileWidth <= 0 || s.TileHeight <= 0 {
			return errors.Errorf("bramble: sheet %q has invalid tile size %dx%d", s.Name, s.TileWidth, s.TileHeight)
		}
	}
	return nil
}

// Sheet returns the sheet named name. An unknown name yields the zero
// SheetConfig and false; it is not an error.
func (c Config) Sheet(name string) (SheetConfig, bool) {
	for _, s := range c.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return SheetConfig{}, false
}
