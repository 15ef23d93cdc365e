package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// ErrInvalidConfig is returned when a loaded configuration fails
// validation.
var ErrInvalidConfig = errors.New("config: invalid")

// Config holds the merged display and debug-draw settings.
type Config struct {
	// Title is the window title.
	Title string

	// Width and Height are the initial window extent in pixels.
	Width  uint32
	Height uint32

	// VSync enables vertical synchronization.
	VSync bool

	// Device optionally pins a backend device by name ("wgpu",
	// "headless"). Empty selects the best available device.
	Device string

	// LineWidth is the debug-line width in logical pixels.
	LineWidth float32

	// ClearColor is the background clear color.
	ClearColor [4]float32

	// GridStep is the debug grid spacing in pixels. Zero disables the grid.
	GridStep float32
}

// Default returns the built-in settings: an 800x600 vsynced window with
// one-pixel lines on a black background and a 50-pixel grid.
func Default() *Config {
	return &Config{
		Title:      "debug lines",
		Width:      800,
		Height:     600,
		VSync:      true,
		LineWidth:  1,
		ClearColor: [4]float32{0, 0, 0, 1},
		GridStep:   50,
	}
}

// rootHCL mirrors the file structure for decoding. Pointer fields
// distinguish "absent" from "zero" so defaults survive partial files.
type rootHCL struct {
	Display *displayHCL `hcl:"display,block"`
	Debug   *debugHCL   `hcl:"debug,block"`
	Remain  hcl.Body    `hcl:",remain"`
}

type displayHCL struct {
	Title  *string `hcl:"title"`
	Width  *int    `hcl:"width"`
	Height *int    `hcl:"height"`
	VSync  *bool   `hcl:"vsync"`
	Device *string `hcl:"device"`
}

type debugHCL struct {
	LineWidth  *float64  `hcl:"line_width"`
	ClearColor []float64 `hcl:"clear_color,optional"`
	GridStep   *float64  `hcl:"grid_step"`
}

// Load reads and validates an HCL config file.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadBytes(path, src)
}

// LoadBytes parses and validates HCL source. The name is used in
// diagnostics only.
func LoadBytes(name string, src []byte) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", name, diags)
	}

	var root rootHCL
	diags = gohcl.DecodeBody(file.Body, evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", name, diags)
	}

	cfg := Default()
	if err := applyDisplay(cfg, root.Display); err != nil {
		return nil, err
	}
	if err := applyDebug(cfg, root.Debug); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// evalContext provides the named color constants usable in color
// attributes.
func evalContext() *hcl.EvalContext {
	rgba := func(r, g, b, a float64) cty.Value {
		return cty.TupleVal([]cty.Value{
			cty.NumberFloatVal(r), cty.NumberFloatVal(g),
			cty.NumberFloatVal(b), cty.NumberFloatVal(a),
		})
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"black":       rgba(0, 0, 0, 1),
			"white":       rgba(1, 1, 1, 1),
			"red":         rgba(1, 0, 0, 1),
			"green":       rgba(0, 1, 0, 1),
			"blue":        rgba(0, 0, 1, 1),
			"transparent": rgba(0, 0, 0, 0),
		},
	}
}

func applyDisplay(cfg *Config, d *displayHCL) error {
	if d == nil {
		return nil
	}
	if d.Title != nil {
		cfg.Title = *d.Title
	}
	if d.Width != nil {
		if *d.Width < 0 {
			return fmt.Errorf("%w: width %d", ErrInvalidConfig, *d.Width)
		}
		cfg.Width = uint32(*d.Width)
	}
	if d.Height != nil {
		if *d.Height < 0 {
			return fmt.Errorf("%w: height %d", ErrInvalidConfig, *d.Height)
		}
		cfg.Height = uint32(*d.Height)
	}
	if d.VSync != nil {
		cfg.VSync = *d.VSync
	}
	if d.Device != nil {
		cfg.Device = *d.Device
	}
	return nil
}

func applyDebug(cfg *Config, d *debugHCL) error {
	if d == nil {
		return nil
	}
	if d.LineWidth != nil {
		cfg.LineWidth = float32(*d.LineWidth)
	}
	if d.GridStep != nil {
		cfg.GridStep = float32(*d.GridStep)
	}
	if d.ClearColor != nil {
		if len(d.ClearColor) != 4 {
			return fmt.Errorf("%w: clear_color needs 4 components, got %d",
				ErrInvalidConfig, len(d.ClearColor))
		}
		for i, v := range d.ClearColor {
			cfg.ClearColor[i] = float32(v)
		}
	}
	return nil
}

// Validate checks the merged settings for internal consistency.
func (c *Config) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("%w: window extent %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.LineWidth <= 0 {
		return fmt.Errorf("%w: line_width %v", ErrInvalidConfig, c.LineWidth)
	}
	if c.GridStep < 0 {
		return fmt.Errorf("%w: grid_step %v", ErrInvalidConfig, c.GridStep)
	}
	return nil
}
